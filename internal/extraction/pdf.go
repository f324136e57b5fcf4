package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/encoding/charmap"

	"github.com/yungbote/mediatext-backend/internal/clients/gcp"
	"github.com/yungbote/mediatext-backend/internal/clients/localmedia"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// PDFEngine extracts PDF text through a chain of strategies: a structured
// Document AI parse when a processor is configured, then per-page
// rasterization + OCR, then the embedded text layer, then a raw decode of
// the bytes. Page-labeled output keeps one section per page so a single
// bad page never sinks the document.
type PDFEngine struct {
	log    *logger.Logger
	parser gcp.DocumentParser
	tools  localmedia.Tools
	image  *ImageEngine

	renderDPI int
	maxPages  int

	// pageCount is swappable so the pagewise path can be driven without a
	// real PDF on disk.
	pageCount func(path string) (int, error)
}

func NewPDFEngine(log *logger.Logger, parser gcp.DocumentParser, tools localmedia.Tools, image *ImageEngine, renderDPI, maxPages int) *PDFEngine {
	if renderDPI <= 0 {
		renderDPI = 200
	}
	if maxPages <= 0 {
		maxPages = 200
	}
	return &PDFEngine{
		log:       log.With("engine", "pdf"),
		parser:    parser,
		tools:     tools,
		image:     image,
		renderDPI: renderDPI,
		maxPages:  maxPages,
		pageCount: api.PageCountFile,
	}
}

func (e *PDFEngine) Extract(ctx context.Context, path string, scratchDir string) (string, []string) {
	warnings := []string{}

	if text, ok := e.tryStructuredParse(ctx, path, &warnings); ok {
		return text, warnings
	}

	text, ok := e.tryPagewiseOCR(ctx, path, scratchDir, &warnings)
	if ok {
		return text, warnings
	}
	return e.fallbackText(path, &warnings), warnings
}

func (e *PDFEngine) tryStructuredParse(ctx context.Context, path string, warnings *[]string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	parsed, err := e.parser.ParsePDF(ctx, data)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotConfigured) {
			*warnings = append(*warnings, fmt.Sprintf("structured parse failed: %v", err))
			e.log.Warn("structured parse failed, degrading to ocr", "error", err)
		}
		return "", false
	}
	if parsed == nil || strings.TrimSpace(parsed.Text) == "" {
		return "", false
	}
	if len(parsed.Pages) > 1 {
		sections := make([]string, 0, len(parsed.Pages))
		for i, pg := range parsed.Pages {
			if strings.TrimSpace(pg) == "" {
				continue
			}
			sections = append(sections, fmt.Sprintf("--- Page %d ---\n%s", i+1, pg))
		}
		if len(sections) > 0 {
			return CleanText(strings.Join(sections, "\n\n")), true
		}
	}
	return CleanText(parsed.Text), true
}

func (e *PDFEngine) tryPagewiseOCR(ctx context.Context, path string, scratchDir string, warnings *[]string) (string, bool) {
	pageCount, err := e.pageCount(path)
	if err != nil || pageCount <= 0 {
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("page count failed: %v", err))
		}
		return "", false
	}
	if pageCount > e.maxPages {
		*warnings = append(*warnings, fmt.Sprintf("pdf has %d pages, processing first %d", pageCount, e.maxPages))
		pageCount = e.maxPages
	}

	sections := make([]string, 0, pageCount)
	rendered := 0
	for page := 1; page <= pageCount; page++ {
		imgPath, err := e.tools.RenderPDFPage(ctx, path, scratchDir, page, e.renderDPI)
		if err != nil {
			sections = append(sections, fmt.Sprintf("[Page %d extraction error: %v]", page, err))
			e.log.Warn("page render failed", "page", page, "error", err)
			continue
		}
		rendered++
		pageText, pageWarns := e.image.Extract(ctx, imgPath)
		*warnings = append(*warnings, pageWarns...)
		sections = append(sections, fmt.Sprintf("--- Page %d ---\n%s", page, pageText))
	}
	if rendered == 0 {
		// Rasterization is wholesale broken; let the text-layer chain try.
		return "", false
	}
	return CleanText(strings.Join(sections, "\n\n")), true
}

// fallbackText is the last line of defense for PDFs the renderer cannot
// open: the embedded text layer, then a raw byte decode.
func (e *PDFEngine) fallbackText(path string, warnings *[]string) string {
	if text, err := extractTextLayer(path); err == nil && strings.TrimSpace(text) != "" {
		return CleanText(text)
	} else if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("text layer extraction failed: %v", err))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("[PDF text extraction error: %v]", err)
	}
	if text := decodeLoosely(data); isProbablyText(text) {
		return CleanText(text)
	}
	return "[PDF text extraction error: no readable text found]"
}

func extractTextLayer(path string) (string, error) {
	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	body, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}
	return buf.String(), nil
}

// decodeLoosely tries UTF-8 first and degrades to Latin-1, which accepts
// any byte sequence.
func decodeLoosely(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// isProbablyText accepts content where the overwhelming majority of runes
// are printable.
func isProbablyText(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	total := 0
	printable := 0
	for _, r := range s {
		total++
		if r == '\n' || r == '\r' || r == '\t' || (r >= 0x20 && r != 0xFFFD) {
			printable++
		}
	}
	if total == 0 {
		return false
	}
	return float64(printable)/float64(total) > 0.9
}
