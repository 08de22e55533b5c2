package teams

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ironsheep/goalhorn/internal/detection"
)

// Lookup finds a team by league and key. A missing team is reported as
// ok == false with a nil error.
type Lookup interface {
	FindTeam(league, key string) (profile detection.TeamProfile, ok bool, err error)
}

// normalizeKey folds league and team keys so lookups ignore case and
// surrounding whitespace.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindTeam returns the profile stored for league and key.
func (s *Store) FindTeam(league, key string) (detection.TeamProfile, bool, error) {
	var (
		id      int64
		profile detection.TeamProfile
	)
	err := s.db.QueryRow(
		`SELECT id, league, key, display_name FROM teams WHERE league = ? AND key = ?`,
		normalizeKey(league), normalizeKey(key),
	).Scan(&id, &profile.League, &profile.Key, &profile.DisplayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return detection.TeamProfile{}, false, nil
		}
		return detection.TeamProfile{}, false, fmt.Errorf("failed to find team %s/%s: %w", league, key, err)
	}

	profile.Variations, err = s.variations(id)
	if err != nil {
		return detection.TeamProfile{}, false, err
	}
	return profile, true, nil
}

func (s *Store) variations(teamID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT variation FROM team_variations WHERE team_id = ? ORDER BY position`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load variations: %w", err)
	}
	defer rows.Close()

	vars := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

// Upsert inserts or replaces a team. Its variations replace any stored
// ones, keeping their order.
func (s *Store) Upsert(p detection.TeamProfile) error {
	league, key := normalizeKey(p.League), normalizeKey(p.Key)
	if league == "" || key == "" {
		return fmt.Errorf("team needs a league and a key, got %q/%q", p.League, p.Key)
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return fmt.Errorf("team %s/%s needs a display name", league, key)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO teams (league, key, display_name, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(league, key) DO UPDATE SET display_name = excluded.display_name, updated_at = excluded.updated_at`,
		league, key, strings.TrimSpace(p.DisplayName), time.Now(),
	); err != nil {
		return fmt.Errorf("failed to upsert team %s/%s: %w", league, key, err)
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM teams WHERE league = ? AND key = ?`, league, key).Scan(&id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM team_variations WHERE team_id = ?`, id); err != nil {
		return err
	}
	for i, v := range p.Variations {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO team_variations (team_id, position, variation) VALUES (?, ?, ?)`,
			id, i, v,
		); err != nil {
			return fmt.Errorf("failed to store variation %q: %w", v, err)
		}
	}
	return tx.Commit()
}

// Delete removes a team and its variations. Deleting a missing team is not
// an error.
func (s *Store) Delete(league, key string) error {
	_, err := s.db.Exec(`DELETE FROM teams WHERE league = ? AND key = ?`, normalizeKey(league), normalizeKey(key))
	return err
}

// List returns every team in league ordered by key. An empty league lists
// all teams ordered by league, then key.
func (s *Store) List(league string) ([]detection.TeamProfile, error) {
	query := `SELECT id, league, key, display_name FROM teams ORDER BY league, key`
	var args []any
	if league != "" {
		query = `SELECT id, league, key, display_name FROM teams WHERE league = ? ORDER BY key`
		args = append(args, normalizeKey(league))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	type row struct {
		id      int64
		profile detection.TeamProfile
	}
	var found []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.profile.League, &r.profile.Key, &r.profile.DisplayName); err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	profiles := make([]detection.TeamProfile, 0, len(found))
	for _, r := range found {
		vars, err := s.variations(r.id)
		if err != nil {
			return nil, err
		}
		r.profile.Variations = vars
		profiles = append(profiles, r.profile)
	}
	return profiles, nil
}

// SeedJSON imports a JSON array of team profiles, upserting each one, and
// returns how many were stored.
//
//	[{"league": "epl", "key": "arsenal", "display_name": "Arsenal",
//	  "variations": ["Arsenal FC", "The Gunners"]}]
func (s *Store) SeedJSON(r io.Reader) (int, error) {
	var profiles []detection.TeamProfile
	if err := json.NewDecoder(r).Decode(&profiles); err != nil {
		return 0, fmt.Errorf("failed to parse team list: %w", err)
	}
	for i, p := range profiles {
		if err := s.Upsert(p); err != nil {
			return i, err
		}
	}
	return len(profiles), nil
}
