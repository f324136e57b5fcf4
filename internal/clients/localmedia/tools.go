package localmedia

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// Tools is the glue around system binaries.
//
// REQUIRED BINARIES in the extraction runtime:
// - ffmpeg / ffprobe for audio transcode, demux and stream probing
// - pdftoppm (poppler-utils) for PDF -> page images
//
// All binary paths are injected through Config so tests and alternate
// deployments can point at their own builds.
type Tools interface {
	AssertReady(ctx context.Context) error

	// Probe inspects a media file with ffprobe and reports its container,
	// duration and audio stream shape.
	Probe(ctx context.Context, path string) (*MediaProfile, error)

	// TranscodeToWAV rewrites any audio input as 16kHz mono pcm_s16le WAV,
	// the shape the speech recognizer accepts without an encoding hint.
	TranscodeToWAV(ctx context.Context, inputPath string, outPath string) (string, error)

	// DemuxAudio strips the video stream and writes the audio track as
	// 16kHz mono WAV.
	DemuxAudio(ctx context.Context, videoPath string, outPath string) (string, error)

	// RenderPDFPage rasterizes a single 1-based page to a PNG.
	RenderPDFPage(ctx context.Context, pdfPath string, outDir string, page int, dpi int) (string, error)
}

type MediaProfile struct {
	Container       string
	DurationSeconds float64
	SampleRateHz    int
	Channels        int
	HasAudioStream  bool
}

type Config struct {
	FFmpegPath   string
	FFprobePath  string
	PdftoppmPath string
	Timeout      time.Duration
}

type tools struct {
	log *logger.Logger

	ffmpegPath   string
	ffprobePath  string
	pdftoppmPath string

	defaultTimeout time.Duration
}

func New(log *logger.Logger, cfg Config) Tools {
	slog := log.With("service", "MediaTools")
	t := &tools{
		log:            slog,
		ffmpegPath:     cfg.FFmpegPath,
		ffprobePath:    cfg.FFprobePath,
		pdftoppmPath:   cfg.PdftoppmPath,
		defaultTimeout: cfg.Timeout,
	}
	if t.ffmpegPath == "" {
		t.ffmpegPath = "ffmpeg"
	}
	if t.ffprobePath == "" {
		t.ffprobePath = "ffprobe"
	}
	if t.pdftoppmPath == "" {
		t.pdftoppmPath = "pdftoppm"
	}
	if t.defaultTimeout <= 0 {
		t.defaultTimeout = 10 * time.Minute
	}
	return t
}

func (m *tools) AssertReady(ctx context.Context) error {
	for _, bin := range []string{m.ffmpegPath, m.ffprobePath, m.pdftoppmPath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	return nil
}

type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

func (m *tools) Probe(ctx context.Context, path string) (*MediaProfile, error) {
	ctx = ctxutil.Default(ctx)
	if path == "" {
		return nil, fmt.Errorf("path required")
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(out []byte) (*MediaProfile, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	p := &MediaProfile{Container: firstToken(raw.Format.FormatName)}
	if raw.Format.Duration != "" {
		if d, err := strconv.ParseFloat(raw.Format.Duration, 64); err == nil {
			p.DurationSeconds = d
		}
	}
	for _, st := range raw.Streams {
		if st.CodecType != "audio" {
			continue
		}
		p.HasAudioStream = true
		p.Channels = st.Channels
		if st.SampleRate != "" {
			if sr, err := strconv.Atoi(st.SampleRate); err == nil {
				p.SampleRateHz = sr
			}
		}
		break
	}
	return p, nil
}

// firstToken picks the first name from ffprobe's comma list, e.g.
// "mov,mp4,m4a,3gp,3g2,mj2" -> "mov".
func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

func (m *tools) TranscodeToWAV(ctx context.Context, inputPath string, outPath string) (string, error) {
	return m.runFFmpegToWAV(ctx, inputPath, outPath, false)
}

func (m *tools) DemuxAudio(ctx context.Context, videoPath string, outPath string) (string, error) {
	return m.runFFmpegToWAV(ctx, videoPath, outPath, true)
}

func (m *tools) runFFmpegToWAV(ctx context.Context, inputPath string, outPath string, dropVideo bool) (string, error) {
	ctx = ctxutil.Default(ctx)
	if inputPath == "" {
		return "", fmt.Errorf("inputPath required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir outPath dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	args := []string{"-y", "-i", inputPath}
	if dropVideo {
		args = append(args, "-vn")
	}
	args = append(args,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outPath,
	)

	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w; out=%s", err, string(out))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio output missing at %s", outPath)
	}
	return outPath, nil
}

func (m *tools) RenderPDFPage(ctx context.Context, pdfPath string, outDir string, page int, dpi int) (string, error) {
	ctx = ctxutil.Default(ctx)
	if pdfPath == "" {
		return "", fmt.Errorf("pdfPath required")
	}
	if outDir == "" {
		return "", fmt.Errorf("outDir required")
	}
	if page <= 0 {
		return "", fmt.Errorf("page must be >= 1")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir outDir: %w", err)
	}
	if dpi <= 0 {
		dpi = 200
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	prefix := filepath.Join(outDir, fmt.Sprintf("page_%04d", page))
	args := []string{
		"-r", strconv.Itoa(dpi),
		"-png",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		pdfPath, prefix,
	}
	cmd := exec.CommandContext(ctx, m.pdftoppmPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w; out=%s", err, string(out))
	}

	pattern := fmt.Sprintf("^page_%04d-\\d+\\.png$", page)
	paths, err := globSorted(outDir, pattern)
	if err != nil || len(paths) == 0 {
		return "", fmt.Errorf("no image produced by pdftoppm; out=%s", string(out))
	}
	return paths[0], nil
}

func globSorted(dir string, pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if re.MatchString(strings.ToLower(e.Name())) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
