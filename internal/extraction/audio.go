package extraction

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yungbote/mediatext-backend/internal/clients/gcp"
	"github.com/yungbote/mediatext-backend/internal/clients/localmedia"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

const noSpeechInAudio = "[No speech detected in audio]"

// nativeAudioExts are containers the recognizer accepts without a
// transcode. Everything else is rewritten to 16kHz mono WAV first.
var nativeAudioExts = map[string]bool{
	".wav": true, ".flac": true, ".mp3": true, ".ogg": true, ".opus": true,
}

// AudioEngine transcribes an audio file. When transcription cannot run at
// all, it degrades to a descriptive placeholder built from the probed
// stream profile so the caller still gets usable text.
type AudioEngine struct {
	log    *logger.Logger
	speech gcp.Speech
	tools  localmedia.Tools

	policy  LanguagePolicy
	maxAlts int
	timeout time.Duration
}

func NewAudioEngine(log *logger.Logger, speech gcp.Speech, tools localmedia.Tools, policy LanguagePolicy, maxAlts int, timeout time.Duration) *AudioEngine {
	return &AudioEngine{
		log:     log.With("engine", "audio"),
		speech:  speech,
		tools:   tools,
		policy:  policy,
		maxAlts: maxAlts,
		timeout: timeout,
	}
}

func (e *AudioEngine) Extract(ctx context.Context, path string, scratchDir string) (string, []string) {
	warnings := []string{}

	profile, probeErr := e.tools.Probe(ctx, path)
	if probeErr != nil {
		warnings = append(warnings, fmt.Sprintf("probe failed: %v", probeErr))
		e.log.Debug("ffprobe failed, continuing without profile", "error", probeErr)
	}

	target := path
	if !nativeAudioExts[strings.ToLower(filepath.Ext(path))] {
		out := filepath.Join(scratchDir, "audio_16k.wav")
		converted, err := e.tools.TranscodeToWAV(ctx, path, out)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("transcode failed: %v", err))
			e.log.Warn("transcode failed, describing audio instead", "error", err)
			return describeAudio(profile), warnings
		}
		target = converted
	}

	text, err := e.speech.TranscribeFile(ctx, target, gcp.TranscribeConfig{
		LanguageCode:             e.policy.PrimaryOrDefault(),
		AlternativeLanguageCodes: e.policy.AlternativesCapped(e.maxAlts),
		Timeout:                  e.timeout,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConfigured) {
			return describeAudio(profile), warnings
		}
		warnings = append(warnings, fmt.Sprintf("transcription failed: %v", err))
		return fmt.Sprintf("[Audio transcription error: %v]", err), warnings
	}
	if t := CleanText(text); t != "" {
		return t, warnings
	}
	return noSpeechInAudio, warnings
}

// describeAudio synthesizes placeholder text from whatever the probe saw.
func describeAudio(p *localmedia.MediaProfile) string {
	if p == nil || p.Container == "" {
		return "[Audio file detected, not transcribed]"
	}
	d := int(p.DurationSeconds)
	parts := []string{p.Container}
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%dm%02ds", d/60, d%60))
	}
	if p.Channels == 1 {
		parts = append(parts, "1 channel")
	} else if p.Channels > 1 {
		parts = append(parts, fmt.Sprintf("%d channels", p.Channels))
	}
	if p.SampleRateHz > 0 {
		parts = append(parts, fmt.Sprintf("%dHz", p.SampleRateHz))
	}
	return fmt.Sprintf("[Audio file detected (%s), not transcribed]", strings.Join(parts, ", "))
}
