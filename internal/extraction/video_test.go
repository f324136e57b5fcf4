package extraction

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/mediatext-backend/internal/clients/gcp"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
)

func newVideoTestEngine(t *testing.T, videoAI *fakeVideoAI, bucket *fakeBucket, speech *fakeSpeech, tools *fakeTools) *VideoEngine {
	t.Helper()
	log := testLogger(t)
	policy := LanguagePolicy{Primary: "en-US", Alternatives: []string{"hi-IN"}}
	audio := NewAudioEngine(log, speech, tools, policy, 3, time.Minute)
	return NewVideoEngine(log, videoAI, bucket, audio, tools, policy, 5, time.Minute)
}

func TestVideoAssemblesLabeledSections(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "clip.mp4", "fake mp4 bytes")

	videoAI := &fakeVideoAI{ann: &gcp.VideoAnnotation{
		OnScreenText: []string{"SLIDE ONE", "SLIDE TWO"},
		Transcript:   "cloud transcript here",
	}}
	bucket := &fakeBucket{}
	e := newVideoTestEngine(t, videoAI, bucket, &fakeSpeech{text: "audio track words"}, &fakeTools{})

	text, _ := e.Extract(context.Background(), path, dir)

	idxText := strings.Index(text, sectionOnScreenText)
	idxSpeech := strings.Index(text, sectionSpeech)
	idxAudio := strings.Index(text, sectionAudioTrack)
	if idxText < 0 || idxSpeech < 0 || idxAudio < 0 {
		t.Fatalf("missing sections:\n%s", text)
	}
	if !(idxText < idxSpeech && idxSpeech < idxAudio) {
		t.Fatalf("sections out of order:\n%s", text)
	}
	if !strings.Contains(text, "SLIDE ONE\nSLIDE TWO") {
		t.Fatalf("on-screen text lines missing:\n%s", text)
	}
	if len(bucket.deletes) != len(bucket.uploads) {
		t.Fatalf("staged object not cleaned up: uploads=%v deletes=%v", bucket.uploads, bucket.deletes)
	}
}

func TestVideoOmitsEmptySections(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "clip.mp4", "fake mp4 bytes")

	videoAI := &fakeVideoAI{ann: &gcp.VideoAnnotation{Transcript: "only speech"}}
	e := newVideoTestEngine(t, videoAI, &fakeBucket{}, &fakeSpeech{text: ""}, &fakeTools{})

	text, _ := e.Extract(context.Background(), path, dir)
	if strings.Contains(text, sectionOnScreenText) {
		t.Fatalf("empty on-screen section present:\n%s", text)
	}
	if strings.Contains(text, sectionAudioTrack) {
		t.Fatalf("placeholder audio transcript included as section:\n%s", text)
	}
	if !strings.Contains(text, "only speech") {
		t.Fatalf("speech section missing:\n%s", text)
	}
}

func TestVideoWithoutAnnotationEqualsAudioOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "clip.mp4", "fake mp4 bytes")
	speech := &fakeSpeech{text: "the audio only transcript"}
	tools := &fakeTools{}

	e := newVideoTestEngine(t, &fakeVideoAI{err: apperrors.ErrNotConfigured}, &fakeBucket{err: apperrors.ErrNotConfigured}, speech, tools)
	text, _ := e.Extract(context.Background(), path, dir)

	if text != "the audio only transcript" {
		t.Fatalf("text = %q, want bare audio transcript", text)
	}
	if strings.Contains(text, sectionAudioTrack) {
		t.Fatalf("audio-only result should carry no section label:\n%s", text)
	}
}

func TestVideoNothingDetectedPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "clip.mp4", "fake mp4 bytes")

	videoAI := &fakeVideoAI{ann: &gcp.VideoAnnotation{}}
	e := newVideoTestEngine(t, videoAI, &fakeBucket{}, &fakeSpeech{text: ""}, &fakeTools{})

	text, _ := e.Extract(context.Background(), path, dir)
	if !isPlaceholder(text) {
		t.Fatalf("text = %q, want placeholder", text)
	}
}

func TestVideoDemuxAndAnnotationFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "clip.mp4", "fake mp4 bytes")
	tools := &fakeTools{demuxErr: fmt.Errorf("no audio stream")}

	e := newVideoTestEngine(t, &fakeVideoAI{err: fmt.Errorf("api down")}, &fakeBucket{}, &fakeSpeech{text: "x"}, tools)
	text, warnings := e.Extract(context.Background(), path, dir)

	if !strings.HasPrefix(text, "[Video processing error:") {
		t.Fatalf("text = %q, want video error placeholder", text)
	}
	if len(warnings) == 0 {
		t.Fatalf("failures produced no warnings")
	}
}
