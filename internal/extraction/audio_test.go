package extraction

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/mediatext-backend/internal/clients/localmedia"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
)

func newAudioTestEngine(t *testing.T, speech *fakeSpeech, tools *fakeTools) *AudioEngine {
	t.Helper()
	policy := LanguagePolicy{Primary: "en-US", Alternatives: []string{"hi-IN", "ta-IN"}}
	return NewAudioEngine(testLogger(t), speech, tools, policy, 3, time.Minute)
}

func TestAudioNativeFormatSkipsTranscode(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "talk.mp3", "fake mp3 bytes")
	speech := &fakeSpeech{text: "hello spoken world"}
	tools := &fakeTools{}

	e := newAudioTestEngine(t, speech, tools)
	text, _ := e.Extract(context.Background(), path, dir)

	if text != "hello spoken world" {
		t.Fatalf("text = %q", text)
	}
	if len(tools.transcodes) != 0 {
		t.Fatalf("native mp3 was transcoded: %v", tools.transcodes)
	}
	if len(speech.calls) != 1 || speech.calls[0] != path {
		t.Fatalf("speech called with %v, want original path", speech.calls)
	}
}

func TestAudioForeignFormatTranscodedFirst(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "talk.aac", "fake aac bytes")
	speech := &fakeSpeech{text: "transcoded speech"}
	tools := &fakeTools{}

	e := newAudioTestEngine(t, speech, tools)
	text, _ := e.Extract(context.Background(), path, dir)

	if text != "transcoded speech" {
		t.Fatalf("text = %q", text)
	}
	if len(tools.transcodes) != 1 {
		t.Fatalf("expected one transcode, got %v", tools.transcodes)
	}
	if len(speech.calls) != 1 || !strings.HasSuffix(speech.calls[0], "audio_16k.wav") {
		t.Fatalf("speech called with %v, want transcoded wav", speech.calls)
	}
}

func TestAudioTranscodeFailureDescribesProfile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "talk.aac", "fake aac bytes")
	tools := &fakeTools{
		transErr: fmt.Errorf("codec missing"),
		profile: &localmedia.MediaProfile{
			Container:       "aac",
			DurationSeconds: 192,
			Channels:        2,
			SampleRateHz:    44100,
			HasAudioStream:  true,
		},
	}

	e := newAudioTestEngine(t, &fakeSpeech{text: "unreachable"}, tools)
	text, warnings := e.Extract(context.Background(), path, dir)

	if !strings.Contains(text, "aac") || !strings.Contains(text, "3m12s") ||
		!strings.Contains(text, "2 channels") || !strings.Contains(text, "44100Hz") {
		t.Fatalf("descriptive placeholder missing profile details: %q", text)
	}
	if len(warnings) == 0 {
		t.Fatalf("transcode failure produced no warning")
	}
}

func TestAudioEngineNotConfiguredDescribes(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "talk.wav", "fake wav bytes")
	tools := &fakeTools{probeErr: fmt.Errorf("no ffprobe")}

	e := newAudioTestEngine(t, &fakeSpeech{err: apperrors.ErrNotConfigured}, tools)
	text, _ := e.Extract(context.Background(), path, dir)

	if text != "[Audio file detected, not transcribed]" {
		t.Fatalf("text = %q", text)
	}
}

func TestAudioNoSpeechPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "silence.wav", "fake wav bytes")

	e := newAudioTestEngine(t, &fakeSpeech{text: "   "}, &fakeTools{})
	text, _ := e.Extract(context.Background(), path, dir)

	if text != noSpeechInAudio {
		t.Fatalf("text = %q, want %q", text, noSpeechInAudio)
	}
}

func TestAudioTranscriptionErrorPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "talk.wav", "fake wav bytes")

	e := newAudioTestEngine(t, &fakeSpeech{err: fmt.Errorf("quota exhausted")}, &fakeTools{})
	text, _ := e.Extract(context.Background(), path, dir)

	if !strings.HasPrefix(text, "[Audio transcription error:") {
		t.Fatalf("text = %q, want transcription error placeholder", text)
	}
}
