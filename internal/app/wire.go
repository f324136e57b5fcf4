package app

import (
	"github.com/yungbote/mediatext-backend/internal/clients/gcp"
	"github.com/yungbote/mediatext-backend/internal/clients/localmedia"
	"github.com/yungbote/mediatext-backend/internal/clients/tesseract"
	"github.com/yungbote/mediatext-backend/internal/extraction"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// BuildExtractionService wires every engine from config. Engines whose
// credentials or binaries are absent come up disabled rather than failing
// the boot; the pipeline degrades through its fallback chains instead.
func BuildExtractionService(log *logger.Logger, cfg Config) (*extraction.Service, func()) {
	closers := []func() error{}

	visionClient := gcp.NewDisabledVision()
	speechClient := gcp.NewDisabledSpeech()
	videoClient := gcp.NewDisabledVideoIntelligence()
	bucketClient := gcp.NewDisabledBucket()
	parserClient := gcp.NewDisabledDocumentParser()

	if gcp.HasCredentials() {
		if v, err := gcp.NewVision(log); err != nil {
			log.Warn("vision init failed, running without cloud ocr", "error", err)
		} else {
			visionClient = v
			closers = append(closers, v.Close)
		}
		if s, err := gcp.NewSpeech(log); err != nil {
			log.Warn("speech init failed, running without transcription", "error", err)
		} else {
			speechClient = s
			closers = append(closers, s.Close)
		}
		if cfg.GCP.StagingBucket != "" {
			if v, err := gcp.NewVideoIntelligence(log); err != nil {
				log.Warn("videointelligence init failed, running audio-only video path", "error", err)
			} else if b, err := gcp.NewBucket(log, cfg.GCP.StagingBucket); err != nil {
				log.Warn("staging bucket init failed, running audio-only video path", "error", err)
				_ = v.Close()
			} else {
				videoClient = v
				bucketClient = b
				closers = append(closers, v.Close, b.Close)
			}
		} else {
			log.Info("no staging bucket configured, video annotation disabled")
		}
		if cfg.GCP.DocAIProcessorID != "" {
			if p, err := gcp.NewDocumentParser(log, cfg.GCP.DocAIProjectID, cfg.GCP.DocAILocation, cfg.GCP.DocAIProcessorID); err != nil {
				log.Warn("documentai init failed, running without structured pdf parse", "error", err)
			} else {
				parserClient = p
				closers = append(closers, p.Close)
			}
		}
	} else {
		log.Info("no GCP credentials found, cloud engines disabled")
	}

	ocrClient := tesseract.NewDisabled()
	if cfg.OCR.Enabled {
		ocrClient = tesseract.New(log, cfg.OCR.Languages)
	}

	tools := localmedia.New(log, localmedia.Config{
		FFmpegPath:   cfg.Media.FFmpegPath,
		FFprobePath:  cfg.Media.FFprobePath,
		PdftoppmPath: cfg.Media.PdftoppmPath,
		Timeout:      cfg.Media.Timeout,
	})

	policy := extraction.LanguagePolicy{
		Primary:      cfg.Speech.PrimaryLanguage,
		Alternatives: cfg.Speech.AlternativeLanguages,
	}

	fetcher := extraction.NewFetcher(log, cfg.Fetch.Timeout, cfg.Fetch.WorkRoot, cfg.Fetch.MaxBytes)
	imageEngine := extraction.NewImageEngine(log, visionClient, ocrClient)
	pdfEngine := extraction.NewPDFEngine(log, parserClient, tools, imageEngine, cfg.PDF.RenderDPI, cfg.PDF.MaxPages)
	documentEngine := extraction.NewDocumentEngine(log, pdfEngine)
	audioEngine := extraction.NewAudioEngine(log, speechClient, tools, policy, cfg.Speech.MaxAudioAlternatives, cfg.Speech.TranscriptionTimeout)
	videoEngine := extraction.NewVideoEngine(log, videoClient, bucketClient, audioEngine, tools, policy, cfg.Speech.MaxVideoAlternatives, cfg.Speech.TranscriptionTimeout)

	svc := extraction.NewService(log, fetcher, documentEngine, imageEngine, audioEngine, videoEngine)
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}
	return svc, closeAll
}
