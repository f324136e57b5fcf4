package extraction

import (
	"reflect"
	"testing"
)

func TestLanguagePolicyDefaults(t *testing.T) {
	var p LanguagePolicy
	if got := p.PrimaryOrDefault(); got != "en-US" {
		t.Fatalf("PrimaryOrDefault = %q, want en-US", got)
	}
	if got := p.AlternativesCapped(3); len(got) != 0 {
		t.Fatalf("AlternativesCapped on empty policy = %v, want none", got)
	}
}

func TestLanguagePolicyCapKeepsPreferenceOrder(t *testing.T) {
	p := LanguagePolicy{
		Primary:      "en-US",
		Alternatives: []string{"hi-IN", "ta-IN", "te-IN", "kn-IN", "ml-IN"},
	}
	got := p.AlternativesCapped(3)
	want := []string{"hi-IN", "ta-IN", "te-IN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AlternativesCapped = %v, want %v", got, want)
	}
}

func TestLanguagePolicyFiltersPrimary(t *testing.T) {
	p := LanguagePolicy{
		Primary:      "hi-IN",
		Alternatives: []string{"hi-IN", "ta-IN", "", "en-US"},
	}
	got := p.AlternativesCapped(10)
	want := []string{"ta-IN", "en-US"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AlternativesCapped = %v, want %v", got, want)
	}
}

func TestLanguagePolicyZeroCap(t *testing.T) {
	p := LanguagePolicy{Primary: "en-US", Alternatives: []string{"hi-IN"}}
	if got := p.AlternativesCapped(0); got != nil {
		t.Fatalf("AlternativesCapped(0) = %v, want nil", got)
	}
}
