package extraction

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trim edges", "  hello  \n", "hello"},
		{"collapse triple", "a\n\n\nb", "a\n\nb"},
		{"collapse many", "a\n\n\n\n\n\n\nb", "a\n\nb"},
		{"keep double", "a\n\nb", "a\n\nb"},
		{"keep single", "a\nb", "a\nb"},
		{"crlf normalized", "a\r\n\r\n\r\nb", "a\n\nb"},
		{"bare cr normalized", "a\r\r\r\rb", "a\n\nb"},
		{"empty", "   \n\n  ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanText(tc.in); got != tc.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	if !isPlaceholder("[No text detected in image]") {
		t.Fatalf("placeholder not recognized")
	}
	if isPlaceholder("real [bracketed] content") {
		t.Fatalf("content misread as placeholder")
	}
	if isPlaceholder("") {
		t.Fatalf("empty string misread as placeholder")
	}
}

func TestIsProbablyText(t *testing.T) {
	if !isProbablyText("ordinary prose with\nnewlines and\ttabs") {
		t.Fatalf("prose rejected")
	}
	if isProbablyText(string([]byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x03, 0x04, 0x05, 0x06, 0x07})) {
		t.Fatalf("binary accepted")
	}
	if isProbablyText("   ") {
		t.Fatalf("whitespace-only accepted")
	}
}
