package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	documentaipb "cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// DocumentParser runs a PDF through a Document AI processor and returns the
// extracted layout text, split per page when page anchors are present.
type DocumentParser interface {
	ParsePDF(ctx context.Context, pdf []byte) (*ParsedDocument, error)
	Close() error
}

type ParsedDocument struct {
	Text  string
	Pages []string
}

type docaiService struct {
	log           *logger.Logger
	client        *documentai.DocumentProcessorClient
	processorName string
}

func NewDocumentParser(log *logger.Logger, projectID, location, processorID string) (DocumentParser, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if projectID == "" || location == "" || processorID == "" {
		return nil, fmt.Errorf("documentai processor coordinates required: %w", apperrors.ErrInvalidArgument)
	}
	slog := log.With("service", "gcp.DocumentParser")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithEndpoint(location+"-documentai.googleapis.com:443"))

	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	return &docaiService{
		log:           slog,
		client:        c,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
	}, nil
}

func (s *docaiService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *docaiService) ParsePDF(ctx context.Context, pdf []byte) (*ParsedDocument, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty pdf: %w", apperrors.ErrInvalidArgument)
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: s.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdf,
				MimeType: "application/pdf",
			},
		},
	}
	resp, err := s.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	doc := resp.GetDocument()
	if doc == nil || strings.TrimSpace(doc.Text) == "" {
		return &ParsedDocument{}, nil
	}

	out := &ParsedDocument{Text: strings.TrimSpace(doc.Text)}
	for _, pg := range doc.Pages {
		out.Pages = append(out.Pages, anchorText(doc.Text, pg.GetLayout().GetTextAnchor()))
	}
	return out, nil
}

// anchorText slices the document text by the segment offsets of a layout
// anchor. Offsets outside the text are clamped rather than rejected.
func anchorText(full string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil || len(anchor.TextSegments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.TextSegments {
		if seg == nil {
			continue
		}
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > len(full) {
			end = len(full)
		}
		if start >= end {
			continue
		}
		b.WriteString(full[start:end])
	}
	return strings.TrimSpace(b.String())
}

type disabledDocumentParser struct{}

// NewDisabledDocumentParser returns a DocumentParser whose calls always
// report ErrNotConfigured.
func NewDisabledDocumentParser() DocumentParser { return disabledDocumentParser{} }

func (disabledDocumentParser) ParsePDF(ctx context.Context, pdf []byte) (*ParsedDocument, error) {
	return nil, apperrors.ErrNotConfigured
}
func (disabledDocumentParser) Close() error { return nil }
