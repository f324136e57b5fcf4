package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

var (
	htmlTagRe    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	anyTagRe     = regexp.MustCompile(`(?s)<[^>]+>`)
	htmlEntityRe = regexp.MustCompile(`&(nbsp|amp|lt|gt|quot|#39);`)
)

// DocumentEngine reads plain documents: text, markup, CSV and friends. PDFs
// that land here (by magic bytes) are handed to the PDF engine.
type DocumentEngine struct {
	log *logger.Logger
	pdf *PDFEngine
}

func NewDocumentEngine(log *logger.Logger, pdf *PDFEngine) *DocumentEngine {
	return &DocumentEngine{
		log: log.With("engine", "document"),
		pdf: pdf,
	}
}

func (e *DocumentEngine) Extract(ctx context.Context, path string, scratchDir string) (string, []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("[Document text extraction error: %v]", err), nil
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return e.pdf.Extract(ctx, path, scratchDir)
	}

	text := decodeLoosely(data)
	if looksLikeHTML(text) {
		text = stripHTML(text)
	}
	if !isProbablyText(text) {
		return "[Unable to extract text from file: unrecognized binary content]", nil
	}
	if t := CleanText(text); t != "" {
		return t, nil
	}
	return "[No text detected in document]", nil
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 2048 {
		head = head[:2048]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<body") || strings.Contains(head, "<div")
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = anyTagRe.ReplaceAllString(s, " ")
	s = htmlEntityRe.ReplaceAllStringFunc(s, func(m string) string {
		switch m {
		case "&nbsp;":
			return " "
		case "&amp;":
			return "&"
		case "&lt;":
			return "<"
		case "&gt;":
			return ">"
		case "&quot;":
			return `"`
		case "&#39;":
			return "'"
		}
		return m
	})
	return s
}
