package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// ProfileRow represents a profile record in the database
type ProfileRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// RunRecord is one finished run
type RunRecord struct {
	ProfileID  int64 // 0 for guests
	SessionID  string
	Seconds    float64
	Score      int
	Level      int
	Kills      int
	BossKills  int
	Upgrades   int
	Difficulty string
	Weapon     string
}

// ProfileStats aggregates every recorded run of a profile
type ProfileStats struct {
	Runs      int     `json:"runs"`
	BestScore int     `json:"best_score"`
	BestLevel int     `json:"best_level"`
	Longest   float64 `json:"longest"`
	Kills     int     `json:"kills"`
	BossKills int     `json:"boss_kills"`
	Playtime  float64 `json:"playtime"` // seconds
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	Username  string  `json:"username"`
	BestScore int     `json:"score"`
	BestLevel int     `json:"level"`
	Longest   float64 `json:"seconds"`
	Kills     int     `json:"kills"`
	Runs      int     `json:"runs"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	// per-connection pragmas go in the DSN so every pooled connection gets them
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// WAL lets the analytics writer and the session runners share the file
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (profile_id, key)
	);

	CREATE TABLE IF NOT EXISTS server_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id INTEGER REFERENCES profiles(id),
		session_id TEXT NOT NULL DEFAULT '',
		seconds REAL NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		kills INTEGER NOT NULL DEFAULT 0,
		boss_kills INTEGER NOT NULL DEFAULT 0,
		upgrades INTEGER NOT NULL DEFAULT 0,
		difficulty TEXT NOT NULL DEFAULT 'normal',
		weapon TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS achievements (
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		profile_id INTEGER,
		session_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile_id);
	CREATE INDEX IF NOT EXISTS idx_analytics_created ON analytics_events(created_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		Log.WithError(err).Error("db migration failed")
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreateProfile creates a new profile (returns profile ID)
func (db *DB) CreateProfile(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO profiles (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, fmt.Errorf("create profile: %w", err)
	}
	return res.LastInsertId()
}

// GetProfileByUsername returns a profile by username, nil when absent
func (db *DB) GetProfileByUsername(username string) (*ProfileRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM profiles WHERE username = ?",
		username,
	)
	p := &ProfileRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM profiles WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetSetting reads a server-wide setting, "" when unset
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM server_settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting writes a server-wide setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO server_settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// LoadSettings returns the stored settings of a profile over the defaults
func (db *DB) LoadSettings(profileID int64) (Settings, error) {
	rows, err := db.conn.Query("SELECT key, value FROM settings WHERE profile_id = ?", profileID)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return DefaultSettings(), fmt.Errorf("load settings: %w", err)
		}
		pairs[k] = v
	}
	if err := rows.Err(); err != nil {
		return DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	return SettingsFromPairs(pairs), nil
}

// SaveSettings upserts every settings key of a profile in one transaction
func (db *DB) SaveSettings(profileID int64, s Settings) error {
	pairs, err := s.Pairs()
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO settings (profile_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(profile_id, key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer stmt.Close()

	for k, v := range pairs {
		if _, err := stmt.Exec(profileID, k, v); err != nil {
			return fmt.Errorf("save settings %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// RecordRun stores a finished run and returns its ID
func (db *DB) RecordRun(r RunRecord) (int64, error) {
	pid := sql.NullInt64{Int64: r.ProfileID, Valid: r.ProfileID > 0}
	res, err := db.conn.Exec(
		`INSERT INTO runs (profile_id, session_id, seconds, score, level, kills, boss_kills, upgrades, difficulty, weapon)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pid, r.SessionID, r.Seconds, r.Score, r.Level, r.Kills, r.BossKills, r.Upgrades, r.Difficulty, r.Weapon,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// GetProfileStats aggregates the runs of a profile
func (db *DB) GetProfileStats(profileID int64) (*ProfileStats, error) {
	s := &ProfileStats{}
	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(MAX(level), 0), COALESCE(MAX(seconds), 0),
			COALESCE(SUM(kills), 0), COALESCE(SUM(boss_kills), 0), COALESCE(SUM(seconds), 0)
		FROM runs WHERE profile_id = ?`,
		profileID,
	).Scan(&s.Runs, &s.BestScore, &s.BestLevel, &s.Longest, &s.Kills, &s.BossKills, &s.Playtime)
	if err != nil {
		return nil, fmt.Errorf("profile stats: %w", err)
	}
	return s, nil
}

// GetLeaderboard returns the best run per profile sorted by the given field
func (db *DB) GetLeaderboard(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist valid order columns
	validCols := map[string]string{
		"score": "best_score", "level": "best_level", "seconds": "longest", "kills": "kills",
	}
	col, ok := validCols[orderBy]
	if !ok {
		col = "best_score"
	}

	query := `SELECT p.username, MAX(r.score) AS best_score, MAX(r.level) AS best_level,
			MAX(r.seconds) AS longest, SUM(r.kills) AS kills, COUNT(*) AS runs
		FROM runs r JOIN profiles p ON p.id = r.profile_id
		WHERE p.is_guest = 0
		GROUP BY p.id
		ORDER BY ` + col + ` DESC LIMIT ?`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	result := make([]LeaderboardEntry, 0, limit)
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.BestScore, &e.BestLevel, &e.Longest, &e.Kills, &e.Runs); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetAchievements returns the unlocked achievement IDs of a profile
func (db *DB) GetAchievements(profileID int64) ([]string, error) {
	rows, err := db.conn.Query("SELECT achievement_id FROM achievements WHERE profile_id = ?", profileID)
	if err != nil {
		return nil, fmt.Errorf("achievements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UnlockAchievement records an achievement. Returns false when it was already unlocked.
func (db *DB) UnlockAchievement(profileID int64, id string) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT OR IGNORE INTO achievements (profile_id, achievement_id) VALUES (?, ?)",
		profileID, id,
	)
	if err != nil {
		return false, fmt.Errorf("unlock %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
