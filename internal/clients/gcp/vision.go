package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// Vision runs OCR over a single raster image. An empty result with a nil
// error means the call succeeded but no text was found.
type Vision interface {
	DetectText(ctx context.Context, img []byte) (string, error)
	Close() error
}

type visionService struct {
	log     *logger.Logger
	client  *vision.ImageAnnotatorClient
	timeout time.Duration
}

func NewVision(log *logger.Logger) (Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Vision")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionService{
		log:     slog,
		client:  c,
		timeout: 60 * time.Second,
	}, nil
}

func (s *visionService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *visionService) DetectText(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", fmt.Errorf("empty image: %w", apperrors.ErrInvalidArgument)
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// One round trip carries both feature types so the dense-document path
	// and the sparse-scene path come back together.
	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			{Type: visionpb.Feature_TEXT_DETECTION},
		},
	}
	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}
	resp, err := s.client.BatchAnnotateImages(ctx, br)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	if fta := r0.FullTextAnnotation; fta != nil && strings.TrimSpace(fta.Text) != "" {
		return strings.TrimSpace(fta.Text), nil
	}
	// TextAnnotations[0] is the full-image aggregate; the rest are per-word.
	if len(r0.TextAnnotations) > 0 && r0.TextAnnotations[0] != nil {
		return strings.TrimSpace(r0.TextAnnotations[0].Description), nil
	}
	return "", nil
}

type disabledVision struct{}

// NewDisabledVision returns a Vision whose calls always report
// ErrNotConfigured, so callers fall through to their next engine.
func NewDisabledVision() Vision { return disabledVision{} }

func (disabledVision) DetectText(ctx context.Context, img []byte) (string, error) {
	return "", apperrors.ErrNotConfigured
}
func (disabledVision) Close() error { return nil }
