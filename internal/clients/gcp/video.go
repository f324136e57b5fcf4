package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	videopb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// VideoIntelligence annotates a staged video, returning the on-screen text
// and the speech transcript in one pass. The input must already live in GCS.
type VideoIntelligence interface {
	Annotate(ctx context.Context, gcsURI string, cfg AnnotateConfig) (*VideoAnnotation, error)
	Close() error
}

type AnnotateConfig struct {
	LanguageCode             string
	AlternativeLanguageCodes []string
	Timeout                  time.Duration
}

// VideoAnnotation holds the two text channels of a video. OnScreenText keeps
// first-appearance order with duplicates dropped.
type VideoAnnotation struct {
	OnScreenText []string
	Transcript   string
}

type videoService struct {
	log    *logger.Logger
	client *videointelligence.Client
}

func NewVideoIntelligence(log *logger.Logger) (VideoIntelligence, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.VideoIntelligence")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("videointelligence client: %w", err)
	}
	return &videoService{log: slog, client: c}, nil
}

func (s *videoService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *videoService) Annotate(ctx context.Context, gcsURI string, cfg AnnotateConfig) (*VideoAnnotation, error) {
	ctx = ctxutil.Default(ctx)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en-US"
	}

	req := &videopb.AnnotateVideoRequest{
		InputUri: gcsURI,
		Features: []videopb.Feature{
			videopb.Feature_TEXT_DETECTION,
			videopb.Feature_SPEECH_TRANSCRIPTION,
		},
		VideoContext: &videopb.VideoContext{
			SpeechTranscriptionConfig: &videopb.SpeechTranscriptionConfig{
				LanguageCode:               lang,
				AlternativeLanguageCodes:   cfg.AlternativeLanguageCodes,
				EnableAutomaticPunctuation: true,
			},
		},
	}

	op, err := s.client.AnnotateVideo(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("videointelligence AnnotateVideo: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("videointelligence wait: %w", err)
	}
	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		return &VideoAnnotation{}, nil
	}

	r0 := resp.AnnotationResults[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("videointelligence annotate error: %s", r0.Error.Message)
	}

	out := &VideoAnnotation{}
	seen := map[string]bool{}
	for _, ta := range r0.TextAnnotations {
		if ta == nil {
			continue
		}
		t := strings.TrimSpace(ta.Text)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out.OnScreenText = append(out.OnScreenText, t)
	}

	var full strings.Builder
	for _, st := range r0.SpeechTranscriptions {
		if st == nil || len(st.Alternatives) == 0 || st.Alternatives[0] == nil {
			continue
		}
		t := strings.TrimSpace(st.Alternatives[0].Transcript)
		if t == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString("\n")
		}
		full.WriteString(t)
	}
	out.Transcript = full.String()
	return out, nil
}

type disabledVideo struct{}

// NewDisabledVideoIntelligence returns a VideoIntelligence whose calls
// always report ErrNotConfigured.
func NewDisabledVideoIntelligence() VideoIntelligence { return disabledVideo{} }

func (disabledVideo) Annotate(ctx context.Context, gcsURI string, cfg AnnotateConfig) (*VideoAnnotation, error) {
	return nil, apperrors.ErrNotConfigured
}
func (disabledVideo) Close() error { return nil }
