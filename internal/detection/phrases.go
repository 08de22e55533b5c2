package detection

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Language identifies one of the shipped phrase sets.
type Language int

const (
	English Language = iota
	Spanish
	Portuguese
	French
	German
	Italian
)

var languageNames = map[Language]string{
	English:    "english",
	Spanish:    "spanish",
	Portuguese: "portuguese",
	French:     "french",
	German:     "german",
	Italian:    "italian",
}

// Languages returns every supported language in declaration order.
func Languages() []Language {
	return []Language{English, Spanish, Portuguese, French, German, Italian}
}

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLanguage accepts a language name ("english") or its ISO 639-1 code
// ("en"), case-insensitively.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en":
		return English, nil
	case "spanish", "es":
		return Spanish, nil
	case "portuguese", "pt":
		return Portuguese, nil
	case "french", "fr":
		return French, nil
	case "german", "de":
		return German, nil
	case "italian", "it":
		return Italian, nil
	}
	return 0, fmt.Errorf("unknown language %q", s)
}

// PhraseSet holds the overlay phrases of one language, uppercased.
type PhraseSet struct {
	Goal     []string `json:"goal"`
	Kickoff  []string `json:"kickoff"`
	MatchEnd []string `json:"match_end"`
}

// Catalog maps languages to their phrase sets. A Catalog is read-only once
// built.
type Catalog struct {
	sets map[Language]PhraseSet
}

// NewCatalog builds a catalog from sets. Phrases are uppercased and trimmed;
// empty phrases are dropped.
func NewCatalog(sets map[Language]PhraseSet) *Catalog {
	c := &Catalog{sets: make(map[Language]PhraseSet, len(sets))}
	for lang, set := range sets {
		c.sets[lang] = PhraseSet{
			Goal:     cleanPhrases(set.Goal),
			Kickoff:  cleanPhrases(set.Kickoff),
			MatchEnd: cleanPhrases(set.MatchEnd),
		}
	}
	return c
}

// Set returns the phrases for lang.
func (c *Catalog) Set(lang Language) (PhraseSet, bool) {
	set, ok := c.sets[lang]
	return set, ok
}

// Merge unions the phrase sets of langs, dropping duplicates. No languages
// means every language in the catalog.
func (c *Catalog) Merge(langs ...Language) PhraseSet {
	if len(langs) == 0 {
		langs = Languages()
	}
	var out PhraseSet
	for _, lang := range langs {
		set, ok := c.sets[lang]
		if !ok {
			continue
		}
		out.Goal = append(out.Goal, set.Goal...)
		out.Kickoff = append(out.Kickoff, set.Kickoff...)
		out.MatchEnd = append(out.MatchEnd, set.MatchEnd...)
	}
	out.Goal = dedupe(out.Goal)
	out.Kickoff = dedupe(out.Kickoff)
	out.MatchEnd = dedupe(out.MatchEnd)
	return out
}

func cleanPhrases(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, p := range in {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

var defaultCatalog = NewCatalog(map[Language]PhraseSet{
	English: {
		Goal:     []string{"GOAL FOR", "GOAL BY", "GOAL!", "IT'S A GOAL"},
		Kickoff:  []string{"KICK OFF", "KICK-OFF", "KICKOFF"},
		MatchEnd: []string{"FULL TIME", "FULL-TIME", "FINAL WHISTLE", "MATCH OVER", "FINAL SCORE"},
	},
	Spanish: {
		Goal:     []string{"GOL DE", "GOLAZO", "GOL!", "GOL"},
		Kickoff:  []string{"SAQUE INICIAL", "SAQUE DE CENTRO", "COMIENZA EL PARTIDO"},
		MatchEnd: []string{"FINAL DEL PARTIDO", "FIN DEL PARTIDO", "TIEMPO COMPLETO", "PARTIDO TERMINADO"},
	},
	Portuguese: {
		Goal:     []string{"GOL DO", "GOL DE", "GOLO", "GOL"},
		Kickoff:  []string{"PONTAPÉ INICIAL", "INÍCIO DE JOGO", "COMEÇA O JOGO"},
		MatchEnd: []string{"FIM DE JOGO", "FINAL DO JOGO", "APITO FINAL"},
	},
	French: {
		Goal:     []string{"BUT POUR", "BUT DE", "BUT!"},
		Kickoff:  []string{"COUP D'ENVOI", "COUP D’ENVOI"},
		MatchEnd: []string{"FIN DU MATCH", "COUP DE SIFFLET FINAL", "TEMPS RÉGLEMENTAIRE TERMINÉ"},
	},
	German: {
		Goal:     []string{"TOR FÜR", "TOOOR", "TOR!"},
		Kickoff:  []string{"ANSTOSS", "ANSTOß", "SPIELBEGINN"},
		MatchEnd: []string{"ABPFIFF", "SPIELENDE", "ENDSTAND"},
	},
	Italian: {
		Goal:     []string{"GOL PER", "GOL DI", "RETE DI"},
		Kickoff:  []string{"CALCIO D'INIZIO", "FISCHIO D'INIZIO"},
		MatchEnd: []string{"FISCHIO FINALE", "FINE PARTITA", "TRIPLICE FISCHIO"},
	},
})

// DefaultCatalog returns the built-in phrase catalog. Bare abbreviations
// such as "FT" are left out: they occur inside too many unrelated words.
func DefaultCatalog() *Catalog { return defaultCatalog }

// phrase is a catalog entry prepared for matching.
type phrase struct {
	text  string
	runes int
}

// minLooseLength is the shortest phrase allowed to match without word
// boundaries. Shorter ones ("GOL", "TOR!") occur inside unrelated words.
const minLooseLength = 5

// phraseMatcher finds catalog phrases in recognized text.
type phraseMatcher struct {
	phrases []phrase
}

// phraseMatch describes where a phrase was found. Start and End are byte
// offsets into the uppercased text and are only set for exact matches.
type phraseMatch struct {
	Phrase string
	Exact  bool
	Start  int
	End    int
}

func newPhraseMatcher(list []string) phraseMatcher {
	m := phraseMatcher{phrases: make([]phrase, 0, len(list))}
	for _, p := range cleanPhrases(list) {
		m.phrases = append(m.phrases, phrase{text: p, runes: utf8.RuneCountInString(p)})
	}
	sort.SliceStable(m.phrases, func(i, j int) bool {
		return len(m.phrases[i].text) > len(m.phrases[j].text)
	})
	return m
}

// find reports the first phrase occurring in text. Whole-word occurrences
// win over loose ones; among whole-word hits the earliest, then the longest,
// is returned. A loose hit is the phrase appearing verbatim but glued to
// other letters or digits ("XGOAL FOR"). It is only tried for phrases long
// enough to be unambiguous, and spacing or punctuation must match exactly:
// "KICK-OFF" and "KICKOFF" are separate catalog entries.
func (m phraseMatcher) find(text string) (phraseMatch, bool) {
	upper := strings.ToUpper(text)

	best := phraseMatch{Start: -1}
	for _, p := range m.phrases {
		start, ok := indexWord(upper, p.text)
		if !ok {
			continue
		}
		if best.Start < 0 || start < best.Start {
			best = phraseMatch{Phrase: p.text, Exact: true, Start: start, End: start + len(p.text)}
		}
	}
	if best.Start >= 0 {
		return best, true
	}

	for _, p := range m.phrases {
		if p.runes >= minLooseLength && strings.Contains(upper, p.text) {
			return phraseMatch{Phrase: p.text, Start: -1, End: -1}, true
		}
	}
	return phraseMatch{}, false
}
