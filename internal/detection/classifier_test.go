package detection

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func ctxFor(text string) DetectionContext {
	return DetectionContext{Text: text}
}

func TestGoalClassifier(t *testing.T) {
	set := NewClassifierSet(DefaultCatalog(), English)

	tests := []struct {
		name     string
		ctx      DetectionContext
		wantTeam string
		wantConf float64
	}{
		{"home team named", DetectionContext{Text: "GOAL FOR ARSENAL", HomeTeam: "Arsenal", AwayTeam: "Chelsea"}, "Arsenal", 0.85},
		{"away team named", DetectionContext{Text: "GOAL FOR CHELSEA", HomeTeam: "Arsenal", AwayTeam: "Chelsea"}, "Chelsea", 0.85},
		{"home token without names", ctxFor("HOME GOAL!"), "HOME", 1.0},
		{"away token uses configured name", DetectionContext{Text: "AWAY GOAL!", AwayTeam: "Spurs"}, "Spurs", 1.0},
		{"name after phrase", ctxFor("GOAL FOR LIVERPOOL"), "LIVERPOOL", 0.85},
		{"phrase without name", ctxFor("GOAL FOR"), "", 0.85},
		{"phrase glued to a word", ctxFor("XGOAL FOR ARSENAL"), "", 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := set.Goal.Detect(tt.ctx)
			if r.Kind != KindGoal {
				t.Fatalf("Kind: got %v, want goal", r.Kind)
			}
			if r.Team != tt.wantTeam {
				t.Errorf("Team: got %q, want %q", r.Team, tt.wantTeam)
			}
			if !approx(r.Confidence, tt.wantConf) {
				t.Errorf("Confidence: got %v, want %v", r.Confidence, tt.wantConf)
			}
		})
	}
}

func TestGoalClassifier_NoMatch(t *testing.T) {
	c := NewClassifierSet(DefaultCatalog(), English).Goal

	for _, text := range []string{"", "GOALKEEPER SAVES", "RANDOM NOISE", "KICK OFF", "GOL BARCELONA", "GOALFOR LEEDS", "GOAL-FOR LEEDS"} {
		if r := c.Detect(ctxFor(text)); r.IsMatch() {
			t.Errorf("Detect(%q): got %v, want no match", text, r)
		}
	}
}

func TestGoalClassifier_Spanish(t *testing.T) {
	c := NewClassifierSet(DefaultCatalog(), English, Spanish).Goal

	r := c.Detect(ctxFor("GOL BARCELONA"))
	if r.Kind != KindGoal || r.Team != "BARCELONA" {
		t.Errorf("got %+v, want goal for BARCELONA", r)
	}
}

func TestGoalClassifier_ShortPhrasesNeedWordBoundaries(t *testing.T) {
	set := NewClassifierSet(DefaultCatalog(), English, Spanish)

	for _, text := range []string{"GOLDEN BOOT WINNER", "GOLDEN GOAL RULE", "MONGOLIA"} {
		if r, name := set.Detect(ctxFor(text)); r.IsMatch() {
			t.Errorf("Detect(%q): got %v from %q, want no match", text, r, name)
		}
	}

	r := set.Goal.Detect(ctxFor("GOLAZOS"))
	if r.Kind != KindGoal || !approx(r.Confidence, 0.70) {
		t.Errorf("long phrase inside a word: got %v, want goal 0.70", r)
	}
}

func TestKickoffClassifier(t *testing.T) {
	c := NewClassifierSet(DefaultCatalog(), English).Kickoff

	tests := []struct {
		text string
		want float64
	}{
		{"KICK OFF", 0.95},
		{"KICK-OFF!", 0.95},
		{"KICKOFF", 0.95},
		{"KICKOFFS", 0.80},
		{"KICK OF F", 0},
		{"KICK_OFF", 0},
		{"RANDOM NOISE", 0},
	}
	for _, tt := range tests {
		r := c.Detect(ctxFor(tt.text))
		if tt.want == 0 {
			if r.IsMatch() {
				t.Errorf("Detect(%q): got %v, want no match", tt.text, r)
			}
			continue
		}
		if r.Kind != KindKickoff || !approx(r.Confidence, tt.want) {
			t.Errorf("Detect(%q): got %v, want kickoff %.2f", tt.text, r, tt.want)
		}
	}
}

func TestMatchEndClassifier(t *testing.T) {
	c := NewClassifierSet(DefaultCatalog(), English).MatchEnd

	tests := []struct {
		text       string
		home, away uint32
		conf       float64
	}{
		{"FULL TIME 3-1", 3, 1, 1.0},
		{"FULL TIME 2 : 2", 2, 2, 1.0},
		{"FULL TIME 0 - 4", 0, 4, 1.0},
		{"FULL TIME", 0, 0, 0.80},
		{"FULL TIME1-0", 1, 0, 0.90},
		{"FULL TIME 99999999999-1", 0, 0, 0.80},
	}
	for _, tt := range tests {
		r := c.Detect(ctxFor(tt.text))
		if r.Kind != KindMatchEnd {
			t.Errorf("Detect(%q): got %v, want match end", tt.text, r)
			continue
		}
		if r.HomeScore != tt.home || r.AwayScore != tt.away || !approx(r.Confidence, tt.conf) {
			t.Errorf("Detect(%q): got %d-%d (%v), want %d-%d (%v)",
				tt.text, r.HomeScore, r.AwayScore, r.Confidence, tt.home, tt.away, tt.conf)
		}
	}
}

func TestMatchEndClassifier_SpacingMustMatch(t *testing.T) {
	c := NewClassifierSet(DefaultCatalog(), English).MatchEnd

	for _, text := range []string{"FULLTIME 1-0", "FULL  TIME", "FULL.TIME"} {
		if r := c.Detect(ctxFor(text)); r.IsMatch() {
			t.Errorf("Detect(%q): got %v, want no match", text, r)
		}
	}
}

func TestParseScore_DashBeforeColon(t *testing.T) {
	home, away, ok := ParseScore("12:00 FULL TIME 2-1")
	if !ok || home != 2 || away != 1 {
		t.Errorf("ParseScore: got %d-%d ok=%v, want 2-1", home, away, ok)
	}
	if _, _, ok := ParseScore("no digits"); ok {
		t.Error("ParseScore should fail without digits")
	}
}

func TestDisabledClassifierReturnsNoMatch(t *testing.T) {
	set := NewClassifierSet(DefaultCatalog(), English)
	for _, c := range []interface {
		Classifier
		SetEnabled(bool)
	}{set.Goal, set.Kickoff, set.MatchEnd} {
		c.SetEnabled(false)
		if c.Enabled() {
			t.Errorf("%s still enabled", c.Name())
		}
	}

	for _, text := range []string{"GOAL FOR ARSENAL", "KICK OFF", "FULL TIME 3-1"} {
		if r, _ := set.Detect(ctxFor(text)); r.IsMatch() {
			t.Errorf("Detect(%q) with everything disabled: got %v", text, r)
		}
	}
}

func TestClassifierSet_EndToEnd(t *testing.T) {
	set := NewClassifierSet(DefaultCatalog(), English)

	r, name := set.Detect(ctxFor(strings.ToUpper("Full Time 3-1")))
	if r.Kind != KindMatchEnd || name != NameMatchEnd {
		t.Fatalf("got %v from %q, want match end", r, name)
	}
	if r.HomeScore != 3 || r.AwayScore != 1 || r.Confidence <= 0.8 {
		t.Errorf("got %v, want 3-1 with confidence > 0.8", r)
	}

	r, name = set.Detect(ctxFor("RANDOM NOISE"))
	if r.IsMatch() || name != "" {
		t.Errorf("Random noise: got %v from %q, want no match", r, name)
	}
	for _, c := range set.Classifiers() {
		if c.Detect(ctxFor("RANDOM NOISE")).IsMatch() {
			t.Errorf("%s matched random noise", c.Name())
		}
	}
}

func TestClassifierSet_MatchEndFirst(t *testing.T) {
	set := NewClassifierSet(DefaultCatalog(), English)

	r, name := set.Detect(ctxFor("FULL TIME GOAL FOR ARSENAL 1-0"))
	if name != NameMatchEnd || r.Kind != KindMatchEnd {
		t.Errorf("got %v from %q, want match end first", r, name)
	}
}

func TestClassifierSet_SetEnabled(t *testing.T) {
	set := NewClassifierSet(DefaultCatalog(), English)

	unknown := set.SetEnabled([]string{NameGoal, "penalty"})
	if len(unknown) != 1 || unknown[0] != "penalty" {
		t.Errorf("unknown: got %v, want [penalty]", unknown)
	}
	if set.MatchEnd.Enabled() || set.Kickoff.Enabled() || !set.Goal.Enabled() {
		t.Error("only the goal classifier should be enabled")
	}
	if r, _ := set.Detect(ctxFor("FULL TIME 3-1")); r.IsMatch() {
		t.Errorf("disabled match end still matched: %v", r)
	}
}

func TestResult_JSON(t *testing.T) {
	data, err := json.Marshal(MatchEnd(3, 1, 1.2))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"kind":"match_end"`) || !strings.Contains(got, `"confidence":1`) {
		t.Errorf("unexpected JSON %s", got)
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Kind != KindMatchEnd || back.HomeScore != 3 {
		t.Errorf("decoded %+v", back)
	}
	if err := json.Unmarshal([]byte(`{"kind":"penalty"}`), &back); err == nil {
		t.Error("expected error for unknown kind")
	}
}
