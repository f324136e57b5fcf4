package extraction

import (
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var documentExts = map[string]bool{
	".pdf": true, ".txt": true, ".csv": true, ".md": true,
	".json": true, ".xml": true, ".html": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true,
	".aac": true, ".m4a": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".webm": true, ".flv": true,
}

// DetectFormat classifies an asset. Signals are consulted in a fixed order:
// content sniffing, storage-path segments, the URL extension, then the
// caller's declared hint. Anything still unresolved is treated as a
// document since the plain-text reader is the cheapest engine to be wrong
// with.
func DetectFormat(head []byte, sourceURL string, declared Format) Format {
	if f, ok := sniffFormat(head); ok {
		return f
	}

	lowerPath, ext := urlPathAndExt(sourceURL)

	// CDN-style delivery paths name the bucket the asset was uploaded to.
	// PDFs ride the image bucket and audio rides the video bucket, so the
	// extension overrides inside those segments.
	switch {
	case strings.Contains(lowerPath, "/image/upload/"):
		if ext == ".pdf" {
			return FormatDocument
		}
		return FormatImage
	case strings.Contains(lowerPath, "/video/upload/"):
		if audioExts[ext] {
			return FormatAudio
		}
		return FormatVideo
	case strings.Contains(lowerPath, "/raw/upload/"):
		return FormatDocument
	}

	switch {
	case documentExts[ext]:
		return FormatDocument
	case imageExts[ext]:
		return FormatImage
	case audioExts[ext]:
		return FormatAudio
	case videoExts[ext]:
		return FormatVideo
	}

	if declared != "" {
		return declared
	}
	return FormatDocument
}

// sniffFormat inspects the leading bytes. Only the major media classes are
// conclusive; text-ish content falls through so the URL can refine it.
func sniffFormat(head []byte) (Format, bool) {
	if len(head) == 0 {
		return "", false
	}
	mt := mimetype.Detect(head)
	m := mt.String()
	switch {
	case m == "application/pdf":
		return FormatDocument, true
	case strings.HasPrefix(m, "image/"):
		return FormatImage, true
	case strings.HasPrefix(m, "audio/"):
		return FormatAudio, true
	case strings.HasPrefix(m, "video/"):
		return FormatVideo, true
	}
	return "", false
}

func urlPathAndExt(sourceURL string) (lowerPath string, ext string) {
	raw := strings.TrimSpace(sourceURL)
	if raw == "" {
		return "", ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	lowerPath = strings.ToLower(p)
	ext = strings.ToLower(path.Ext(lowerPath))
	return lowerPath, ext
}
