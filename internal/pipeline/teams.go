package pipeline

import (
	"fmt"

	"github.com/ironsheep/goalhorn/internal/detection"
	"github.com/ironsheep/goalhorn/internal/teams"
)

// ResolveTeams looks up the configured home and away teams. An empty key or
// a team missing from the database yields a nil profile, which disables
// attribution for that side.
func ResolveTeams(lookup teams.Lookup, league, homeKey, awayKey string) (home, away *detection.TeamProfile, err error) {
	if lookup == nil {
		return nil, nil, nil
	}
	if home, err = resolve(lookup, league, homeKey); err != nil {
		return nil, nil, err
	}
	if away, err = resolve(lookup, league, awayKey); err != nil {
		return nil, nil, err
	}
	return home, away, nil
}

func resolve(lookup teams.Lookup, league, key string) (*detection.TeamProfile, error) {
	if key == "" {
		return nil, nil
	}
	p, ok, err := lookup.FindTeam(league, key)
	if err != nil {
		return nil, fmt.Errorf("look up team %s/%s: %w", league, key, err)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}
