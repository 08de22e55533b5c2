package detection

import (
	"strings"
	"unicode"
)

// TeamProfile describes one club as stored in the team database.
type TeamProfile struct {
	League      string   `json:"league"`
	Key         string   `json:"key"`
	DisplayName string   `json:"display_name"`
	Variations  []string `json:"variations"`
}

// TeamMatcher decides whether an OCR'd team fragment refers to one team.
//
// Matching is exact on the normalized text, or token-subset: the fragment
// matches when every word of some variation appears among its words, in any
// order. There is no fuzzy matching, so "United" does not match
// "Man United".
type TeamMatcher struct {
	profile    TeamProfile
	variations []teamVariation
}

type teamVariation struct {
	normalized string
	tokens     []string
}

// NewTeamMatcher precomputes the normalized variations of profile. The
// display name always counts as a variation.
func NewTeamMatcher(profile TeamProfile) *TeamMatcher {
	m := &TeamMatcher{profile: profile}
	seen := make(map[string]bool)
	for _, v := range append([]string{profile.DisplayName}, profile.Variations...) {
		n := NormalizeTeamName(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		m.variations = append(m.variations, teamVariation{normalized: n, tokens: strings.Fields(n)})
	}
	return m
}

// Profile returns the team the matcher was built from.
func (m *TeamMatcher) Profile() TeamProfile { return m.profile }

// Matches reports whether detected names this team.
func (m *TeamMatcher) Matches(detected string) bool {
	n := NormalizeTeamName(detected)
	if n == "" {
		return false
	}
	for _, v := range m.variations {
		if v.normalized == n {
			return true
		}
	}

	words := make(map[string]bool)
	for _, w := range strings.Fields(n) {
		words[w] = true
	}
	for _, v := range m.variations {
		if subset(v.tokens, words) {
			return true
		}
	}
	return false
}

func subset(tokens []string, words map[string]bool) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !words[t] {
			return false
		}
	}
	return true
}

// NormalizeTeamName lowercases s, drops everything except ASCII letters,
// digits and whitespace, and collapses whitespace runs to single spaces.
func NormalizeTeamName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
