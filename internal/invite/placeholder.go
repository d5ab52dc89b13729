package invite

import (
	"sort"
	"strings"
)

// placeholderRules maps path keywords to the fallback text shown when a
// configuration leaf is absent. Order matters: the first matching keyword
// wins, so more specific keywords sit above generic ones.
var placeholderRules = []struct {
	keyword string
	text    string
}{
	{"email", "hello@example.com"},
	{"phone", "+1 (555) 000-0000"},
	{"tel", "+1 (555) 000-0000"},
	{"deadline", "Date to be announced"},
	{"date", "Date to be announced"},
	{"time", "Time to be announced"},
	{"address", "Address to be announced"},
	{"location", "Location to be announced"},
	{"src", "/static/img/placeholder.svg"},
	{"image", "/static/img/placeholder.svg"},
	{"photo", "/static/img/placeholder.svg"},
	{"icon", "circle"},
	{"url", "#"},
	{"link", "#"},
	{"name", "To be announced"},
	{"title", "Coming soon"},
	{"label", "Coming soon"},
	{"description", "Details coming soon"},
	{"caption", "Details coming soon"},
	{"theme", "classic"},
}

// genericPlaceholder is used when no keyword matches. It is never empty:
// the rendered page must not show blank or "undefined" text.
const genericPlaceholder = "Coming soon"

// Placeholders resolves fallback text for configuration paths. Developer
// overrides are consulted before the built-in rule table; an override key
// is either a full dotted path ("event.tagline") or a keyword matched
// anywhere in the path ("deadline"). The zero value resolves through the
// built-in rules only.
type Placeholders struct {
	overrides map[string]string
	keywords  []string // override keys, longest first, for deterministic matching
}

// NewPlaceholders builds a resolver with developer overrides layered over
// the built-in rules. Empty override values are dropped so an override can
// never reintroduce blank text.
func NewPlaceholders(overrides map[string]string) Placeholders {
	if len(overrides) == 0 {
		return Placeholders{}
	}

	m := make(map[string]string, len(overrides))
	for key, text := range overrides {
		if text == "" {
			continue
		}
		m[strings.ToLower(key)] = text
	}
	if len(m) == 0 {
		return Placeholders{}
	}

	keywords := make([]string, 0, len(m))
	for key := range m {
		keywords = append(keywords, key)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})

	return Placeholders{overrides: m, keywords: keywords}
}

// For derives context-sensitive fallback text for a dotted configuration
// path. The result is never empty.
func (p Placeholders) For(path string) string {
	lower := strings.ToLower(path)

	if text, ok := p.overrides[lower]; ok {
		return text
	}
	for _, keyword := range p.keywords {
		if strings.Contains(lower, keyword) {
			return p.overrides[keyword]
		}
	}

	for _, rule := range placeholderRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.text
		}
	}
	return genericPlaceholder
}

// PlaceholderFor resolves a path through the built-in rules alone.
func PlaceholderFor(path string) string {
	return Placeholders{}.For(path)
}
