package extraction

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

const sniffBytes = 3072

// Service is the full extraction pipeline: fetch, classify, route to the
// right engine. Extract never returns an error and never returns empty
// text; every failure mode degrades to a bracketed placeholder.
type Service struct {
	log      *logger.Logger
	fetcher  *Fetcher
	document *DocumentEngine
	image    *ImageEngine
	audio    *AudioEngine
	video    *VideoEngine
}

func NewService(log *logger.Logger, fetcher *Fetcher, document *DocumentEngine, image *ImageEngine, audio *AudioEngine, video *VideoEngine) *Service {
	return &Service{
		log:      log.With("service", "Extraction"),
		fetcher:  fetcher,
		document: document,
		image:    image,
		audio:    audio,
		video:    video,
	}
}

func (s *Service) Extract(ctx context.Context, assetURL string, declared Format) (res Result) {
	ctx = ctxutil.Default(ctx)
	start := time.Now()
	res = Result{URL: assetURL, Format: declared}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("extraction panicked", "url", assetURL, "panic", r)
			res.Text = fmt.Sprintf("[Extraction error: %v]", r)
		}
		if res.Text == "" {
			res.Text = "[No text detected in file]"
		}
		s.log.Info("extraction finished",
			"url", assetURL,
			"format", res.Format,
			"chars", len(res.Text),
			"warnings", len(res.Warnings),
			"took", time.Since(start).String(),
		)
	}()

	dl, err := s.fetcher.Fetch(ctx, assetURL)
	if err != nil {
		res.Text = fmt.Sprintf("[Download error: %v]", err)
		return res
	}
	defer dl.Cleanup()

	format := DetectFormat(readHead(dl.Path, sniffBytes), assetURL, declared)
	res.Format = format

	var text string
	var warnings []string
	switch format {
	case FormatImage:
		text, warnings = s.image.Extract(ctx, dl.Path)
	case FormatAudio:
		text, warnings = s.audio.Extract(ctx, dl.Path, dl.Dir)
	case FormatVideo:
		text, warnings = s.video.Extract(ctx, dl.Path, dl.Dir)
	default:
		text, warnings = s.document.Extract(ctx, dl.Path, dl.Dir)
	}
	res.Text = text
	res.Warnings = warnings
	return res
}

// ExtractText is the string-only convenience wrapper.
func (s *Service) ExtractText(ctx context.Context, assetURL string, declared Format) string {
	return s.Extract(ctx, assetURL, declared).Text
}

// ExtractBatch runs requests concurrently with at most limit in flight.
// Results come back in request order; individual failures stay inside
// their own Result.
func (s *Service) ExtractBatch(ctx context.Context, reqs []Request, limit int) []Result {
	ctx = ctxutil.Default(ctx)
	if limit <= 0 {
		limit = 4
	}
	results := make([]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = s.Extract(gctx, req.URL, req.Declared)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
