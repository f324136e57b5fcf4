package extraction

import "strings"

// LanguagePolicy names the primary recognition language and an ordered
// preference list of alternatives. Recognizers cap how many alternatives a
// request may carry, and the caps differ per API, so each engine asks for
// its own bounded prefix.
type LanguagePolicy struct {
	Primary      string
	Alternatives []string
}

func (p LanguagePolicy) PrimaryOrDefault() string {
	if s := strings.TrimSpace(p.Primary); s != "" {
		return s
	}
	return "en-US"
}

// AlternativesCapped returns at most max alternatives, most preferred
// first, with the primary language filtered out of the list.
func (p LanguagePolicy) AlternativesCapped(max int) []string {
	if max <= 0 {
		return nil
	}
	primary := strings.ToLower(p.PrimaryOrDefault())
	out := make([]string, 0, max)
	for _, alt := range p.Alternatives {
		alt = strings.TrimSpace(alt)
		if alt == "" || strings.ToLower(alt) == primary {
			continue
		}
		out = append(out, alt)
		if len(out) == max {
			break
		}
	}
	return out
}
