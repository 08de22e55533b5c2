package teams

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Teams table - one row per club per league
		`CREATE TABLE IF NOT EXISTS teams (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			league TEXT NOT NULL,
			key TEXT NOT NULL,
			display_name TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(league, key)
		)`,

		// Team variations table - ordered alternative names shown by overlays
		`CREATE TABLE IF NOT EXISTS team_variations (
			team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			variation TEXT NOT NULL,
			PRIMARY KEY (team_id, position)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_teams_league ON teams(league)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
