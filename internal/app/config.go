package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
	"github.com/yungbote/mediatext-backend/internal/utils"
)

type Config struct {
	Port    string
	Env     string
	Version string

	Fetch  FetchConfig
	Media  MediaConfig
	GCP    GCPConfig
	OCR    OCRConfig
	PDF    PDFConfig
	Speech SpeechConfig
}

// FetchConfig bounds asset downloads.
type FetchConfig struct {
	Timeout  time.Duration
	MaxBytes int64
	WorkRoot string
}

// MediaConfig holds paths to the local media binaries. Empty paths fall back
// to a $PATH lookup at startup.
type MediaConfig struct {
	FFmpegPath   string
	FFprobePath  string
	PdftoppmPath string
	Timeout      time.Duration
}

type GCPConfig struct {
	CredentialsPath string
	StagingBucket   string

	DocAIProjectID   string
	DocAILocation    string
	DocAIProcessorID string
}

type OCRConfig struct {
	Enabled   bool
	Languages []string
}

type PDFConfig struct {
	RenderDPI int
	MaxPages  int
}

// SpeechConfig names the language policy shared by the audio and video
// engines. Alternatives beyond the per-engine cap are dropped, most
// preferred first.
type SpeechConfig struct {
	PrimaryLanguage      string
	AlternativeLanguages []string
	MaxAudioAlternatives int
	MaxVideoAlternatives int
	TranscriptionTimeout time.Duration
}

type fileConfig struct {
	Port      string   `yaml:"port"`
	Bucket    string   `yaml:"staging_bucket"`
	Languages []string `yaml:"ocr_languages"`
	Primary   string   `yaml:"primary_language"`
	Alts      []string `yaml:"alternative_languages"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    utils.GetEnv("PORT", "8080", log),
		Env:     utils.GetEnv("APP_ENV", "development", log),
		Version: utils.GetEnv("APP_VERSION", "dev", log),
		Fetch: FetchConfig{
			Timeout:  time.Duration(utils.GetEnvAsInt("FETCH_TIMEOUT_SECONDS", 60, log)) * time.Second,
			MaxBytes: int64(utils.GetEnvAsInt("FETCH_MAX_MB", 512, log)) * 1024 * 1024,
			WorkRoot: utils.GetEnv("WORK_ROOT", os.TempDir(), log),
		},
		Media: MediaConfig{
			FFmpegPath:   utils.GetEnv("FFMPEG_PATH", "ffmpeg", log),
			FFprobePath:  utils.GetEnv("FFPROBE_PATH", "ffprobe", log),
			PdftoppmPath: utils.GetEnv("PDFTOPPM_PATH", "pdftoppm", log),
			Timeout:      time.Duration(utils.GetEnvAsInt("MEDIA_TIMEOUT_SECONDS", 300, log)) * time.Second,
		},
		GCP: GCPConfig{
			CredentialsPath:  utils.GetEnv("GOOGLE_APPLICATION_CREDENTIALS", "", log),
			StagingBucket:    utils.GetEnv("GCS_STAGING_BUCKET", "", log),
			DocAIProjectID:   utils.GetEnv("DOCAI_PROJECT_ID", "", log),
			DocAILocation:    utils.GetEnv("DOCAI_LOCATION", "us", log),
			DocAIProcessorID: utils.GetEnv("DOCAI_PROCESSOR_ID", "", log),
		},
		OCR: OCRConfig{
			Enabled:   utils.GetEnvAsBool("LOCAL_OCR_ENABLED", true, log),
			Languages: utils.GetEnvAsList("OCR_LANGUAGES", []string{"eng"}, log),
		},
		PDF: PDFConfig{
			RenderDPI: utils.GetEnvAsInt("PDF_RENDER_DPI", 200, log),
			MaxPages:  utils.GetEnvAsInt("PDF_MAX_PAGES", 200, log),
		},
		Speech: SpeechConfig{
			PrimaryLanguage:      utils.GetEnv("SPEECH_PRIMARY_LANGUAGE", "en-US", log),
			AlternativeLanguages: utils.GetEnvAsList("SPEECH_ALT_LANGUAGES", []string{"hi-IN", "ta-IN", "te-IN", "kn-IN", "ml-IN"}, log),
			MaxAudioAlternatives: utils.GetEnvAsInt("SPEECH_MAX_AUDIO_ALTS", 3, log),
			MaxVideoAlternatives: utils.GetEnvAsInt("SPEECH_MAX_VIDEO_ALTS", 5, log),
			TranscriptionTimeout: time.Duration(utils.GetEnvAsInt("SPEECH_TIMEOUT_SECONDS", 600, log)) * time.Second,
		},
	}
	if path := strings.TrimSpace(utils.GetEnv("CONFIG_FILE", "", log)); path != "" {
		if err := cfg.applyFile(path); err != nil && log != nil {
			log.Warn("Config file could not be applied, continuing with env values", "path", path, "error", err)
		}
	}
	return cfg
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.Bucket != "" {
		c.GCP.StagingBucket = fc.Bucket
	}
	if len(fc.Languages) > 0 {
		c.OCR.Languages = fc.Languages
	}
	if fc.Primary != "" {
		c.Speech.PrimaryLanguage = fc.Primary
	}
	if len(fc.Alts) > 0 {
		c.Speech.AlternativeLanguages = fc.Alts
	}
	return nil
}
