package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/mediatext-backend/internal/clients/gcp"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
)

type fakeParser struct {
	doc *gcp.ParsedDocument
	err error
}

func (f *fakeParser) ParsePDF(ctx context.Context, pdf []byte) (*gcp.ParsedDocument, error) {
	return f.doc, f.err
}
func (f *fakeParser) Close() error { return nil }

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newPDFTestEngine(t *testing.T, parser gcp.DocumentParser, tools *fakeTools, pages int, countErr error) *PDFEngine {
	t.Helper()
	log := testLogger(t)
	image := NewImageEngine(log, &fakeVision{text: "ocr page text"}, &fakeOCR{err: apperrors.ErrNotConfigured})
	e := NewPDFEngine(log, parser, tools, image, 150, 50)
	e.pageCount = func(string) (int, error) { return pages, countErr }
	return e
}

func TestPDFStructuredParsePerPage(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "doc.pdf", "%PDF-1.4 fake")
	parser := &fakeParser{doc: &gcp.ParsedDocument{
		Text:  "first page second page",
		Pages: []string{"first page", "second page"},
	}}

	e := newPDFTestEngine(t, parser, &fakeTools{}, 0, fmt.Errorf("unused"))
	text, _ := e.Extract(context.Background(), path, dir)

	if !strings.Contains(text, "--- Page 1 ---\nfirst page") {
		t.Fatalf("missing page 1 section:\n%s", text)
	}
	if !strings.Contains(text, "--- Page 2 ---\nsecond page") {
		t.Fatalf("missing page 2 section:\n%s", text)
	}
}

func TestPDFPagewiseOCRLabelsEveryPage(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "doc.pdf", "%PDF-1.4 fake")

	e := newPDFTestEngine(t, gcp.NewDisabledDocumentParser(), &fakeTools{}, 3, nil)
	text, _ := e.Extract(context.Background(), path, dir)

	for page := 1; page <= 3; page++ {
		label := fmt.Sprintf("--- Page %d ---", page)
		if !strings.Contains(text, label) {
			t.Fatalf("missing %q in output:\n%s", label, text)
		}
	}
}

func TestPDFPerPageFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "doc.pdf", "%PDF-1.4 fake")
	tools := &fakeTools{renderErr: map[int]error{2: fmt.Errorf("render exploded")}}

	e := newPDFTestEngine(t, gcp.NewDisabledDocumentParser(), tools, 3, nil)
	text, _ := e.Extract(context.Background(), path, dir)

	if !strings.Contains(text, "--- Page 1 ---") || !strings.Contains(text, "--- Page 3 ---") {
		t.Fatalf("healthy pages missing:\n%s", text)
	}
	if !strings.Contains(text, "[Page 2 extraction error:") {
		t.Fatalf("failed page not reported in place:\n%s", text)
	}
}

func TestPDFFallbackToRawTextDecode(t *testing.T) {
	dir := t.TempDir()
	// Not a real PDF: page counting and the text layer both fail, leaving
	// the raw byte decode.
	path := writeTestFile(t, dir, "doc.pdf", "just some readable bytes pretending to be a pdf")

	log := testLogger(t)
	image := NewImageEngine(log, &fakeVision{err: apperrors.ErrNotConfigured}, &fakeOCR{err: apperrors.ErrNotConfigured})
	e := NewPDFEngine(log, gcp.NewDisabledDocumentParser(), &fakeTools{renderErr: map[int]error{}}, image, 0, 0)

	text, _ := e.Extract(context.Background(), path, dir)
	if text != "just some readable bytes pretending to be a pdf" {
		t.Fatalf("raw decode fallback = %q", text)
	}
}

func TestPDFUnreadableYieldsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	binary := string([]byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x03, 0x04, 0x05, 0x00, 0x01, 0x02, 0xFF})
	path := writeTestFile(t, dir, "doc.pdf", binary)

	log := testLogger(t)
	image := NewImageEngine(log, &fakeVision{err: apperrors.ErrNotConfigured}, &fakeOCR{err: apperrors.ErrNotConfigured})
	e := NewPDFEngine(log, gcp.NewDisabledDocumentParser(), &fakeTools{}, image, 0, 0)

	text, _ := e.Extract(context.Background(), path, dir)
	if !strings.HasPrefix(text, "[PDF text extraction error:") {
		t.Fatalf("text = %q, want pdf error placeholder", text)
	}
}

func TestPDFMaxPagesCapped(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "doc.pdf", "%PDF-1.4 fake")

	log := testLogger(t)
	image := NewImageEngine(log, &fakeVision{text: "x"}, &fakeOCR{err: apperrors.ErrNotConfigured})
	e := NewPDFEngine(log, gcp.NewDisabledDocumentParser(), &fakeTools{}, image, 150, 2)
	e.pageCount = func(string) (int, error) { return 10, nil }

	text, warnings := e.Extract(context.Background(), path, dir)
	if strings.Contains(text, "--- Page 3 ---") {
		t.Fatalf("pages beyond cap were processed:\n%s", text)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "processing first 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing cap warning, got %v", warnings)
	}
}
