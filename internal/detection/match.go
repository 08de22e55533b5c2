package detection

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var allGoalPhrases = newPhraseMatcher(DefaultCatalog().Merge().Goal)

// ContainsGoalText reports whether text contains a goal phrase from any
// language of the default catalog.
//
//	ContainsGoalText("GOAL FOR Arsenal") // true
//	ContainsGoalText("GOALKEEPER")       // false
func ContainsGoalText(text string) bool {
	_, ok := allGoalPhrases.find(text)
	return ok
}

// ExtractTeamName returns the text following the earliest whole-word goal
// phrase, uppercased and trimmed, using every language of the default
// catalog. The second result is false when no phrase is present or nothing
// follows it.
//
//	ExtractTeamName("GOL Barcelona") // "BARCELONA", true
//	ExtractTeamName("GOAL FOR")      // "", false
func ExtractTeamName(text string) (string, bool) {
	return extractTeamName(allGoalPhrases, text)
}

func extractTeamName(m phraseMatcher, text string) (string, bool) {
	upper := strings.ToUpper(text)
	match, ok := m.find(upper)
	if !ok || !match.Exact {
		return "", false
	}
	rest := strings.TrimLeftFunc(upper[match.End:], func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	rest = strings.Join(strings.Fields(rest), " ")
	if rest == "" {
		return "", false
	}
	return rest, true
}

// indexWord returns the byte offset of the first occurrence of word in s
// whose alphanumeric edges are not glued to other letters or digits.
func indexWord(s, word string) (int, bool) {
	if word == "" {
		return 0, false
	}
	first, _ := utf8.DecodeRuneInString(word)
	last, _ := utf8.DecodeLastRuneInString(word)

	for offset := 0; offset <= len(s)-len(word); {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			return 0, false
		}
		start := offset + i
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		leftOK := start == 0 || !isWordRune(first) || !isWordRune(before)
		rightOK := end == len(s) || !isWordRune(last) || !isWordRune(after)
		if leftOK && rightOK {
			return start, true
		}

		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
	return 0, false
}

// containsWord reports whether word occurs in s as a whole word.
func containsWord(s, word string) bool {
	_, ok := indexWord(s, word)
	return ok
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
