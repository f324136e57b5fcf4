package gcp

import (
	"testing"

	documentaipb "cloud.google.com/go/documentai/apiv1/documentaipb"
)

func TestAnchorText(t *testing.T) {
	full := "page one text page two text"
	anchor := &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
			{StartIndex: 0, EndIndex: 13},
		},
	}
	if got := anchorText(full, anchor); got != "page one text" {
		t.Fatalf("anchorText = %q", got)
	}
}

func TestAnchorTextClampsOutOfRange(t *testing.T) {
	full := "short"
	anchor := &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
			{StartIndex: 2, EndIndex: 99},
		},
	}
	if got := anchorText(full, anchor); got != "ort" {
		t.Fatalf("anchorText = %q", got)
	}
}

func TestAnchorTextNil(t *testing.T) {
	if got := anchorText("anything", nil); got != "" {
		t.Fatalf("anchorText(nil) = %q", got)
	}
}
