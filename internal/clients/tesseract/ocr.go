package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// OCR recognizes text in a raster image with the local tesseract engine.
// An empty result with a nil error means the image carried no readable text.
type OCR interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

type client struct {
	log       *logger.Logger
	languages []string
}

// New builds a local OCR client. languages is an ordered tesseract language
// pack list, e.g. ["eng", "hin", "tam"]; recognition first runs with the
// full set, then degrades to the first language, then to tesseract defaults.
func New(log *logger.Logger, languages []string) OCR {
	slog := log.With("service", "TesseractOCR")
	langs := make([]string, 0, len(languages))
	for _, l := range languages {
		l = strings.TrimSpace(l)
		if l != "" {
			langs = append(langs, l)
		}
	}
	return &client{log: slog, languages: langs}
}

func (c *client) Recognize(ctx context.Context, imagePath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if imagePath == "" {
		return "", fmt.Errorf("imagePath required: %w", apperrors.ErrInvalidArgument)
	}

	attempts := [][]string{}
	if len(c.languages) > 1 {
		attempts = append(attempts, c.languages)
	}
	if len(c.languages) > 0 {
		attempts = append(attempts, c.languages[:1])
	}
	attempts = append(attempts, nil)

	var last error
	for _, langs := range attempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := recognizeOnce(imagePath, langs)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		last = err
		c.log.Debug("tesseract attempt failed, degrading", "languages", strings.Join(langs, "+"), "error", err)
	}
	return "", fmt.Errorf("tesseract recognize: %w", last)
}

func recognizeOnce(imagePath string, langs []string) (string, error) {
	tc := gosseract.NewClient()
	defer tc.Close()

	if len(langs) > 0 {
		if err := tc.SetLanguage(langs...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := tc.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := tc.Text()
	if err != nil {
		return "", fmt.Errorf("ocr text: %w", err)
	}
	return text, nil
}

type disabled struct{}

// NewDisabled returns an OCR whose calls always report ErrNotConfigured.
func NewDisabled() OCR { return disabled{} }

func (disabled) Recognize(ctx context.Context, imagePath string) (string, error) {
	return "", apperrors.ErrNotConfigured
}
