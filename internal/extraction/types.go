package extraction

import "strings"

// Format is the top-level media class an asset is routed by.
type Format string

const (
	FormatDocument Format = "document"
	FormatImage    Format = "image"
	FormatAudio    Format = "audio"
	FormatVideo    Format = "video"
)

// ParseFormat normalizes a caller-declared format hint. Unknown values map
// to the empty Format, which the detector treats as "no hint".
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "doc", "pdf", "text", "raw":
		return FormatDocument
	case "image", "img", "photo":
		return FormatImage
	case "audio", "sound":
		return FormatAudio
	case "video":
		return FormatVideo
	default:
		return ""
	}
}

// Request is one asset to extract.
type Request struct {
	URL      string
	Declared Format
}

// Result always carries non-empty Text; failures surface as bracketed
// placeholder text, never as errors.
type Result struct {
	URL      string
	Format   Format
	Text     string
	Warnings []string
}
