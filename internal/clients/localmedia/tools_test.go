package localmedia

import "testing"

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
		"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "192.480000"},
		"streams": [
			{"codec_type": "video", "width": 1920},
			{"codec_type": "audio", "sample_rate": "44100", "channels": 2}
		]
	}`)
	p, err := parseProbeOutput(raw)
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if p.Container != "mov" {
		t.Fatalf("container = %q, want mov", p.Container)
	}
	if p.DurationSeconds < 192.4 || p.DurationSeconds > 192.5 {
		t.Fatalf("duration = %v", p.DurationSeconds)
	}
	if !p.HasAudioStream || p.Channels != 2 || p.SampleRateHz != 44100 {
		t.Fatalf("audio stream = %+v", p)
	}
}

func TestParseProbeOutputNoAudio(t *testing.T) {
	raw := []byte(`{"format": {"format_name": "png_pipe"}, "streams": [{"codec_type": "video"}]}`)
	p, err := parseProbeOutput(raw)
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if p.HasAudioStream {
		t.Fatalf("audio stream reported for video-only input")
	}
	if p.Container != "png_pipe" {
		t.Fatalf("container = %q", p.Container)
	}
}

func TestParseProbeOutputGarbage(t *testing.T) {
	if _, err := parseProbeOutput([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed probe output")
	}
}

func TestFirstToken(t *testing.T) {
	if got := firstToken("mov,mp4,m4a"); got != "mov" {
		t.Fatalf("firstToken = %q", got)
	}
	if got := firstToken(" wav "); got != "wav" {
		t.Fatalf("firstToken = %q", got)
	}
}
