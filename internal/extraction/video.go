package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/mediatext-backend/internal/clients/gcp"
	"github.com/yungbote/mediatext-backend/internal/clients/localmedia"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

const (
	sectionOnScreenText  = "TEXT DETECTED IN VIDEO:"
	sectionSpeech        = "SPEECH TRANSCRIPTION:"
	sectionAudioTrack    = "AUDIO TRACK TRANSCRIPTION:"
	noTextOrSpeechVideo  = "[No text or speech detected in video]"
	videoStagingPrefix   = "video-staging"
)

// VideoEngine combines two channels: the demuxed audio track run through
// the audio engine, and a cloud video annotation pass that reads on-screen
// text plus its own speech transcription. When the annotation pass cannot
// run, the audio-track transcript stands alone as the result.
type VideoEngine struct {
	log    *logger.Logger
	video  gcp.VideoIntelligence
	bucket gcp.Bucket
	audio  *AudioEngine
	tools  localmedia.Tools

	policy  LanguagePolicy
	maxAlts int
	timeout time.Duration
}

func NewVideoEngine(log *logger.Logger, video gcp.VideoIntelligence, bucket gcp.Bucket, audio *AudioEngine, tools localmedia.Tools, policy LanguagePolicy, maxAlts int, timeout time.Duration) *VideoEngine {
	return &VideoEngine{
		log:     log.With("engine", "video"),
		video:   video,
		bucket:  bucket,
		audio:   audio,
		tools:   tools,
		policy:  policy,
		maxAlts: maxAlts,
		timeout: timeout,
	}
}

func (e *VideoEngine) Extract(ctx context.Context, path string, scratchDir string) (string, []string) {
	warnings := []string{}

	audioText := ""
	wavPath, demuxErr := e.tools.DemuxAudio(ctx, path, filepath.Join(scratchDir, "video_audio.wav"))
	if demuxErr != nil {
		warnings = append(warnings, fmt.Sprintf("audio demux failed: %v", demuxErr))
		e.log.Warn("audio demux failed", "error", demuxErr)
	} else {
		t, w := e.audio.Extract(ctx, wavPath, scratchDir)
		warnings = append(warnings, w...)
		audioText = t
	}

	ann, annErr := e.annotate(ctx, path)
	if annErr != nil {
		if !errors.Is(annErr, apperrors.ErrNotConfigured) {
			warnings = append(warnings, fmt.Sprintf("video annotation failed: %v", annErr))
			e.log.Warn("video annotation failed, using audio track only", "error", annErr)
		}
		if audioText != "" {
			return audioText, warnings
		}
		if demuxErr != nil {
			return fmt.Sprintf("[Video processing error: %v]", demuxErr), warnings
		}
		return noTextOrSpeechVideo, warnings
	}

	sections := []string{}
	if len(ann.OnScreenText) > 0 {
		sections = append(sections, sectionOnScreenText+"\n"+strings.Join(ann.OnScreenText, "\n"))
	}
	if t := CleanText(ann.Transcript); t != "" {
		sections = append(sections, sectionSpeech+"\n"+t)
	}
	if audioText != "" && !isPlaceholder(audioText) {
		sections = append(sections, sectionAudioTrack+"\n"+audioText)
	}
	if len(sections) == 0 {
		if audioText != "" {
			return audioText, warnings
		}
		return noTextOrSpeechVideo, warnings
	}
	return CleanText(strings.Join(sections, "\n\n")), warnings
}

// annotate stages the video in GCS, runs the annotation pass and removes
// the staged object on every exit path.
func (e *VideoEngine) annotate(ctx context.Context, path string) (*gcp.VideoAnnotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s%s", videoStagingPrefix, uuid.NewString(), filepath.Ext(path))
	gcsURI, err := e.bucket.Upload(ctx, key, f)
	if err != nil {
		return nil, err
	}
	defer func() {
		if derr := e.bucket.Delete(context.Background(), key); derr != nil {
			e.log.Warn("staged video cleanup failed", "key", key, "error", derr)
		}
	}()

	return e.video.Annotate(ctx, gcsURI, gcp.AnnotateConfig{
		LanguageCode:             e.policy.PrimaryOrDefault(),
		AlternativeLanguageCodes: e.policy.AlternativesCapped(e.maxAlts),
		Timeout:                  e.timeout,
	})
}
