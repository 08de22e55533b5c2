package detection

import (
	"regexp"
	"strconv"
	"strings"
)

// Classifier names, as used in configuration and logs.
const (
	NameGoal     = "goal"
	NameKickoff  = "kickoff"
	NameMatchEnd = "match_end"
)

// Confidence scoring.
const (
	goalBase        = 0.70
	goalTokenBonus  = 0.15
	goalExactBonus  = 0.15
	kickoffBase     = 0.80
	kickoffExact    = 0.95
	matchEndBase    = 0.70
	matchEndScore   = 0.20
	matchEndExact   = 0.10
	homeToken       = "HOME"
	awayToken       = "AWAY"
)

// Classifier turns recognized text into a Result.
//
// The set of implementations is closed: GoalClassifier, KickoffClassifier
// and MatchEndClassifier. A disabled classifier returns NoMatch without
// looking at the text. Detect is pure and never fails.
type Classifier interface {
	Name() string
	Enabled() bool
	Detect(ctx DetectionContext) Result

	classifier()
}

type toggle struct {
	disabled bool
}

// Enabled reports whether the classifier evaluates text.
func (t *toggle) Enabled() bool { return !t.disabled }

// SetEnabled turns the classifier on or off. Not safe to call while Detect
// runs on another goroutine.
func (t *toggle) SetEnabled(enabled bool) { t.disabled = !enabled }

// GoalClassifier detects "GOAL FOR X" style overlays.
type GoalClassifier struct {
	toggle
	phrases phraseMatcher
}

// NewGoalClassifier creates an enabled goal classifier matching phrases.
func NewGoalClassifier(phrases []string) *GoalClassifier {
	return &GoalClassifier{phrases: newPhraseMatcher(phrases)}
}

func (c *GoalClassifier) Name() string { return NameGoal }
func (c *GoalClassifier) classifier() {}

// Detect identifies the scoring team in this order: the configured home
// team name, the configured away team name, a HOME/AWAY token, and finally
// whatever follows the goal phrase.
func (c *GoalClassifier) Detect(ctx DetectionContext) Result {
	if !c.Enabled() {
		return NoMatch()
	}
	text := strings.ToUpper(ctx.Text)
	match, ok := c.phrases.find(text)
	if !ok {
		return NoMatch()
	}

	hasHome := containsWord(text, homeToken)
	hasAway := containsWord(text, awayToken)

	var team string
	switch {
	case ctx.HomeTeam != "" && strings.Contains(text, strings.ToUpper(ctx.HomeTeam)):
		team = ctx.HomeTeam
	case ctx.AwayTeam != "" && strings.Contains(text, strings.ToUpper(ctx.AwayTeam)):
		team = ctx.AwayTeam
	case hasHome:
		team = orDefault(ctx.HomeTeam, homeToken)
	case hasAway:
		team = orDefault(ctx.AwayTeam, awayToken)
	default:
		team, _ = extractTeamName(c.phrases, text)
	}

	confidence := goalBase
	if hasHome || hasAway {
		confidence += goalTokenBonus
	}
	if match.Exact {
		confidence += goalExactBonus
	}
	return Goal(team, confidence)
}

// KickoffClassifier detects the start of a match.
type KickoffClassifier struct {
	toggle
	phrases phraseMatcher
}

// NewKickoffClassifier creates an enabled kickoff classifier.
func NewKickoffClassifier(phrases []string) *KickoffClassifier {
	return &KickoffClassifier{phrases: newPhraseMatcher(phrases)}
}

func (c *KickoffClassifier) Name() string { return NameKickoff }
func (c *KickoffClassifier) classifier() {}

func (c *KickoffClassifier) Detect(ctx DetectionContext) Result {
	if !c.Enabled() {
		return NoMatch()
	}
	match, ok := c.phrases.find(ctx.Text)
	if !ok {
		return NoMatch()
	}
	if match.Exact {
		return Kickoff(kickoffExact)
	}
	return Kickoff(kickoffBase)
}

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*-\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*:\s*(\d+)`),
}

// MatchEndClassifier detects the final whistle and parses the score.
type MatchEndClassifier struct {
	toggle
	phrases phraseMatcher
}

// NewMatchEndClassifier creates an enabled match-end classifier.
func NewMatchEndClassifier(phrases []string) *MatchEndClassifier {
	return &MatchEndClassifier{phrases: newPhraseMatcher(phrases)}
}

func (c *MatchEndClassifier) Name() string { return NameMatchEnd }
func (c *MatchEndClassifier) classifier() {}

func (c *MatchEndClassifier) Detect(ctx DetectionContext) Result {
	if !c.Enabled() {
		return NoMatch()
	}
	match, ok := c.phrases.find(ctx.Text)
	if !ok {
		return NoMatch()
	}

	home, away, parsed := ParseScore(ctx.Text)
	confidence := matchEndBase
	if parsed {
		confidence += matchEndScore
	}
	if match.Exact {
		confidence += matchEndExact
	}
	return MatchEnd(home, away, confidence)
}

// ParseScore extracts the first "H-A" score, falling back to "H:A". It
// returns (0, 0, false) when neither pattern matches or a number overflows
// uint32.
func ParseScore(text string) (home, away uint32, ok bool) {
	for _, re := range scorePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		h, err1 := strconv.ParseUint(m[1], 10, 32)
		a, err2 := strconv.ParseUint(m[2], 10, 32)
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return uint32(h), uint32(a), true
	}
	return 0, 0, false
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

// ClassifierSet runs the match-end, goal and kickoff classifiers in that
// order and returns the first positive result. Match-end phrases are the
// most specific, so they are tried first.
type ClassifierSet struct {
	MatchEnd *MatchEndClassifier
	Goal     *GoalClassifier
	Kickoff  *KickoffClassifier
}

// NewClassifierSet builds all three classifiers from the union of the given
// languages' phrases in cat. No languages means every language.
func NewClassifierSet(cat *Catalog, langs ...Language) *ClassifierSet {
	set := cat.Merge(langs...)
	return &ClassifierSet{
		MatchEnd: NewMatchEndClassifier(set.MatchEnd),
		Goal:     NewGoalClassifier(set.Goal),
		Kickoff:  NewKickoffClassifier(set.Kickoff),
	}
}

// Classifiers returns the classifiers in evaluation order.
func (s *ClassifierSet) Classifiers() []Classifier {
	return []Classifier{s.MatchEnd, s.Goal, s.Kickoff}
}

// Detect returns the first non-NoMatch result and the name of the
// classifier that produced it. The name is empty for NoMatch.
func (s *ClassifierSet) Detect(ctx DetectionContext) (Result, string) {
	for _, c := range s.Classifiers() {
		if r := c.Detect(ctx); r.IsMatch() {
			return r, c.Name()
		}
	}
	return NoMatch(), ""
}

// SetEnabled enables exactly the named classifiers and disables the rest.
// Unknown names are returned so the caller can report them.
func (s *ClassifierSet) SetEnabled(names []string) (unknown []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	s.MatchEnd.SetEnabled(want[NameMatchEnd])
	s.Goal.SetEnabled(want[NameGoal])
	s.Kickoff.SetEnabled(want[NameKickoff])

	for _, n := range names {
		switch n {
		case NameGoal, NameKickoff, NameMatchEnd:
		default:
			unknown = append(unknown, n)
		}
	}
	return unknown
}
