package detection

import (
	"fmt"
	"math"
	"time"
)

// Kind tags the variant held by a Result.
type Kind int

const (
	KindNoMatch Kind = iota
	KindGoal
	KindKickoff
	KindMatchEnd
)

func (k Kind) String() string {
	switch k {
	case KindGoal:
		return "goal"
	case KindKickoff:
		return "kickoff"
	case KindMatchEnd:
		return "match_end"
	default:
		return "no_match"
	}
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "goal":
		*k = KindGoal
	case "kickoff":
		*k = KindKickoff
	case "match_end":
		*k = KindMatchEnd
	case "no_match":
		*k = KindNoMatch
	default:
		return fmt.Errorf("unknown result kind %q", b)
	}
	return nil
}

// Result is the outcome of classifying one piece of recognized text.
//
// Only the fields of the variant named by Kind are meaningful: Team for
// goals (empty when no team was identified), HomeScore and AwayScore for
// match ends. Confidence is in [0, 1] and zero for NoMatch.
type Result struct {
	Kind       Kind    `json:"kind"`
	Team       string  `json:"team,omitempty"`
	HomeScore  uint32  `json:"home_score"`
	AwayScore  uint32  `json:"away_score"`
	Confidence float64 `json:"confidence"`
}

// NoMatch is the result for text that is not an overlay event.
func NoMatch() Result { return Result{Kind: KindNoMatch} }

// Goal returns a goal result. team may be empty.
func Goal(team string, confidence float64) Result {
	return Result{Kind: KindGoal, Team: team, Confidence: roundConfidence(confidence)}
}

// Kickoff returns a kickoff result.
func Kickoff(confidence float64) Result {
	return Result{Kind: KindKickoff, Confidence: roundConfidence(confidence)}
}

// MatchEnd returns a final-whistle result with the parsed score.
func MatchEnd(home, away uint32, confidence float64) Result {
	return Result{Kind: KindMatchEnd, HomeScore: home, AwayScore: away, Confidence: roundConfidence(confidence)}
}

// IsMatch reports whether r is anything other than NoMatch.
func (r Result) IsMatch() bool { return r.Kind != KindNoMatch }

func (r Result) String() string {
	switch r.Kind {
	case KindGoal:
		if r.Team == "" {
			return fmt.Sprintf("goal (%.2f)", r.Confidence)
		}
		return fmt.Sprintf("goal %s (%.2f)", r.Team, r.Confidence)
	case KindKickoff:
		return fmt.Sprintf("kickoff (%.2f)", r.Confidence)
	case KindMatchEnd:
		return fmt.Sprintf("match end %d-%d (%.2f)", r.HomeScore, r.AwayScore, r.Confidence)
	default:
		return "no match"
	}
}

// roundConfidence caps c to [0, 1] and rounds it to three decimals.
func roundConfidence(c float64) float64 {
	c = math.Max(0, math.Min(1, c))
	return math.Round(c*1000) / 1000
}

// DetectionContext is the input to a classifier: normalized recognized text
// plus the configured team names. Empty team names mean "not configured".
type DetectionContext struct {
	Text      string
	Timestamp time.Time
	HomeTeam  string
	AwayTeam  string
}
