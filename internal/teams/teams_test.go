package teams

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ironsheep/goalhorn/internal/detection"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "teams.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_UpsertAndFind(t *testing.T) {
	s := newTestStore(t)

	in := detection.TeamProfile{
		League:      "EPL",
		Key:         "Man-Utd",
		DisplayName: "Manchester United",
		Variations:  []string{"Man United", "Man Utd", "Manchester United"},
	}
	if err := s.Upsert(in); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, ok, err := s.FindTeam(" epl ", "MAN-UTD")
	if err != nil || !ok {
		t.Fatalf("FindTeam: ok=%v err=%v", ok, err)
	}
	if got.League != "epl" || got.Key != "man-utd" || got.DisplayName != "Manchester United" {
		t.Errorf("unexpected profile %+v", got)
	}
	if !reflect.DeepEqual(got.Variations, in.Variations) {
		t.Errorf("variations: got %v, want %v", got.Variations, in.Variations)
	}
}

func TestStore_FindMissing(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.FindTeam("epl", "arsenal")
	if err != nil {
		t.Fatalf("FindTeam failed: %v", err)
	}
	if ok {
		t.Error("missing team reported as found")
	}
}

func TestStore_UpsertReplaces(t *testing.T) {
	s := newTestStore(t)

	first := detection.TeamProfile{League: "epl", Key: "ars", DisplayName: "Arsenal", Variations: []string{"Arsenal FC", "Gunners"}}
	second := detection.TeamProfile{League: "epl", Key: "ars", DisplayName: "Arsenal London", Variations: []string{"AFC"}}
	if err := s.Upsert(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(second); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.FindTeam("epl", "ars")
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "Arsenal London" || !reflect.DeepEqual(got.Variations, []string{"AFC"}) {
		t.Errorf("got %+v, want replaced profile", got)
	}

	all, err := s.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("List: got %d teams, want 1", len(all))
	}
}

func TestStore_UpsertValidation(t *testing.T) {
	s := newTestStore(t)

	for _, p := range []detection.TeamProfile{
		{Key: "ars", DisplayName: "Arsenal"},
		{League: "epl", DisplayName: "Arsenal"},
		{League: "epl", Key: "ars", DisplayName: "  "},
	} {
		if err := s.Upsert(p); err == nil {
			t.Errorf("Upsert(%+v): expected error", p)
		}
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	s := newTestStore(t)

	for _, p := range []detection.TeamProfile{
		{League: "laliga", Key: "rma", DisplayName: "Real Madrid"},
		{League: "epl", Key: "liv", DisplayName: "Liverpool"},
		{League: "epl", Key: "ars", DisplayName: "Arsenal"},
	} {
		if err := s.Upsert(p); err != nil {
			t.Fatal(err)
		}
	}

	epl, err := s.List("EPL")
	if err != nil {
		t.Fatal(err)
	}
	if len(epl) != 2 || epl[0].Key != "ars" || epl[1].Key != "liv" {
		t.Errorf("List(epl): got %+v", epl)
	}
	if epl[0].Variations == nil {
		t.Error("variations should be an empty slice, not nil")
	}

	if err := s.Delete("epl", "ars"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("epl", "nobody"); err != nil {
		t.Errorf("deleting a missing team: %v", err)
	}
	all, _ := s.List("")
	if len(all) != 2 || all[0].League != "epl" || all[1].League != "laliga" {
		t.Errorf("List(all) after delete: got %+v", all)
	}
}

func TestStore_SeedJSON(t *testing.T) {
	s := newTestStore(t)

	data := `[
		{"league": "epl", "key": "ars", "display_name": "Arsenal", "variations": ["Arsenal FC"]},
		{"league": "seriea", "key": "int", "display_name": "Inter", "variations": ["FC Internazionale"]}
	]`
	n, err := s.SeedJSON(strings.NewReader(data))
	if err != nil {
		t.Fatalf("SeedJSON failed: %v", err)
	}
	if n != 2 {
		t.Errorf("seeded %d teams, want 2", n)
	}

	inter, ok, err := s.FindTeam("seriea", "int")
	if err != nil || !ok {
		t.Fatalf("FindTeam: ok=%v err=%v", ok, err)
	}
	if !detection.NewTeamMatcher(inter).Matches("fc internazionale milano") {
		t.Error("seeded profile should drive the team matcher")
	}

	if _, err := s.SeedJSON(strings.NewReader("{not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if err := s.Upsert(detection.TeamProfile{League: "epl", Key: "ars", DisplayName: "Arsenal"}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.FindTeam("epl", "ars"); !ok {
		t.Error("in-memory database lost the team")
	}
}

func TestStore_ImplementsLookup(t *testing.T) {
	var _ Lookup = newTestStore(t)
}
