package extraction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// Download is a fetched asset staged in its own scratch directory. Cleanup
// removes the whole directory, including anything an engine wrote next to
// the asset.
type Download struct {
	Path string
	Dir  string
	Size int64
}

func (d *Download) Cleanup() {
	if d == nil || d.Dir == "" {
		return
	}
	_ = os.RemoveAll(d.Dir)
}

type Fetcher struct {
	log      *logger.Logger
	client   *http.Client
	workRoot string
	maxBytes int64
}

func NewFetcher(log *logger.Logger, timeout time.Duration, workRoot string, maxBytes int64) *Fetcher {
	slog := log.With("service", "Fetcher")
	if timeout <= 0 {
		timeout = time.Minute
	}
	if workRoot == "" {
		workRoot = os.TempDir()
	}
	return &Fetcher{
		log:      slog,
		client:   &http.Client{Timeout: timeout},
		workRoot: workRoot,
		maxBytes: maxBytes,
	}
}

// Fetch downloads the asset into a fresh scratch directory. Every call gets
// its own directory so concurrent extractions never share files.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Download, error) {
	ctx = ctxutil.Default(ctx)
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("url required")
	}

	dir := filepath.Join(f.workRoot, "mediatext", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	dl := &Download{Dir: dir}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		dl.Cleanup()
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		dl.Cleanup()
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		dl.Cleanup()
		return nil, fmt.Errorf("fetch asset: unexpected status %d", resp.StatusCode)
	}

	dl.Path = filepath.Join(dir, assetFileName(rawURL))
	out, err := os.Create(dl.Path)
	if err != nil {
		dl.Cleanup()
		return nil, fmt.Errorf("create asset file: %w", err)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	n, err := io.Copy(out, body)
	closeErr := out.Close()
	if err != nil {
		dl.Cleanup()
		return nil, fmt.Errorf("write asset: %w", err)
	}
	if closeErr != nil {
		dl.Cleanup()
		return nil, fmt.Errorf("close asset file: %w", closeErr)
	}
	if f.maxBytes > 0 && n > f.maxBytes {
		dl.Cleanup()
		return nil, fmt.Errorf("asset exceeds size limit of %d bytes", f.maxBytes)
	}
	dl.Size = n
	f.log.Debug("asset fetched", "url", rawURL, "bytes", n, "path", dl.Path)
	return dl, nil
}

// assetFileName keeps the URL's base name so downstream tools see a real
// extension; anything unusable degrades to "asset".
func assetFileName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "/" {
		return "asset"
	}
	return base
}

// readHead returns up to n leading bytes of a file for sniffing.
func readHead(path string, n int) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	buf := make([]byte, n)
	m, _ := io.ReadFull(f, buf)
	return buf[:m]
}
