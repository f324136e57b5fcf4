package extraction

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/mediatext-backend/internal/clients/tesseract"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
)

func TestImageCloudResultPreferred(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "img.png", "fake png")

	e := NewImageEngine(testLogger(t), &fakeVision{text: "cloud text"}, &fakeOCR{text: "local text"})
	text, _ := e.Extract(context.Background(), path)
	if text != "cloud text" {
		t.Fatalf("text = %q, want cloud result", text)
	}
}

func TestImageFallsBackToLocalOCR(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "img.png", "fake png")

	e := NewImageEngine(testLogger(t), &fakeVision{err: fmt.Errorf("api down")}, &fakeOCR{text: "local text"})
	text, warnings := e.Extract(context.Background(), path)
	if text != "local text" {
		t.Fatalf("text = %q, want local fallback", text)
	}
	if len(warnings) == 0 {
		t.Fatalf("cloud failure produced no warning")
	}
}

func TestImageNoTextPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "img.png", "fake png")

	e := NewImageEngine(testLogger(t), &fakeVision{text: ""}, &fakeOCR{err: apperrors.ErrNotConfigured})
	text, _ := e.Extract(context.Background(), path)
	if text != noTextInImage {
		t.Fatalf("text = %q, want %q", text, noTextInImage)
	}
}

func TestImageAllEnginesFailedPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "img.png", "fake png")

	e := NewImageEngine(testLogger(t), &fakeVision{err: fmt.Errorf("api down")}, &fakeOCR{err: fmt.Errorf("no tessdata")})
	text, _ := e.Extract(context.Background(), path)
	if !strings.HasPrefix(text, "[Image text extraction error:") {
		t.Fatalf("text = %q, want image error placeholder", text)
	}
}

// Renders printed text onto a canvas and runs it through the real local
// engine. Needs the tesseract binary plus the eng language pack.
func TestImageLocalOCRRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse font: %v", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: 48})

	dc := gg.NewContext(600, 160)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(face)
	dc.DrawStringAnchored("HELLO WORLD", 300, 80, 0.5, 0.5)

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "render.png")
	if err := dc.SavePNG(imgPath); err != nil {
		t.Fatalf("save png: %v", err)
	}

	ocr := tesseract.New(testLogger(t), []string{"eng"})
	text, err := ocr.Recognize(context.Background(), imgPath)
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if !strings.Contains(strings.ToUpper(text), "HELLO") {
		t.Fatalf("ocr text = %q, want it to contain HELLO", text)
	}
}
