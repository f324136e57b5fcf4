package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yungbote/mediatext-backend/internal/clients/gcp"
	"github.com/yungbote/mediatext-backend/internal/clients/tesseract"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

const noTextInImage = "[No text detected in image]"

// ImageEngine OCRs a raster image, cloud engine first, local engine as the
// fallback. The result is always non-empty.
type ImageEngine struct {
	log    *logger.Logger
	vision gcp.Vision
	ocr    tesseract.OCR
}

func NewImageEngine(log *logger.Logger, vision gcp.Vision, ocr tesseract.OCR) *ImageEngine {
	return &ImageEngine{
		log:    log.With("engine", "image"),
		vision: vision,
		ocr:    ocr,
	}
}

func (e *ImageEngine) Extract(ctx context.Context, path string) (string, []string) {
	warnings := []string{}

	img, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("[Image text extraction error: %v]", err), warnings
	}

	cloudText, cloudErr := e.vision.DetectText(ctx, img)
	if cloudErr == nil && cloudText != "" {
		return CleanText(cloudText), warnings
	}
	if cloudErr != nil && !errors.Is(cloudErr, apperrors.ErrNotConfigured) {
		warnings = append(warnings, fmt.Sprintf("cloud ocr failed: %v", cloudErr))
		e.log.Warn("cloud ocr failed, degrading to local engine", "error", cloudErr)
	}

	localText, localErr := e.ocr.Recognize(ctx, path)
	if localErr == nil {
		if t := CleanText(localText); t != "" {
			return t, warnings
		}
		return noTextInImage, warnings
	}
	if !errors.Is(localErr, apperrors.ErrNotConfigured) {
		warnings = append(warnings, fmt.Sprintf("local ocr failed: %v", localErr))
	}

	// Both engines gave nothing usable. A clean empty cloud result still
	// means the image simply had no text.
	if cloudErr == nil {
		return noTextInImage, warnings
	}
	return fmt.Sprintf("[Image text extraction error: %v]", cloudErr), warnings
}
