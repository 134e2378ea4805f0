// Package store persists matches, teams, players, and goal events in a local
// SQLite database, keeping repeated crawls idempotent.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// GameStore wraps the SQLite database holding crawled match data.
type GameStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*GameStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writes; concurrent pipeline workers
	// queue here rather than trip over sqlite's writer lock.
	db.SetMaxOpenConns(1)

	s := &GameStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *GameStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		team_id TEXT PRIMARY KEY,
		name    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS players (
		player_id TEXT PRIMARY KEY,
		name      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS matches (
		facr_game_id   TEXT PRIMARY KEY,
		competition_id TEXT NOT NULL,
		date           TEXT,
		round          TEXT,
		home_team_id   TEXT NOT NULL REFERENCES teams(team_id),
		away_team_id   TEXT NOT NULL REFERENCES teams(team_id),
		home_score     INTEGER,
		away_score     INTEGER,
		halftime_score TEXT,
		venue          TEXT,
		spectators     INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS goals (
		game_id      TEXT NOT NULL REFERENCES matches(facr_game_id),
		player_id    TEXT NOT NULL REFERENCES players(player_id),
		team_id      TEXT NOT NULL REFERENCES teams(team_id),
		goals_scored INTEGER NOT NULL CHECK (goals_scored >= 0),
		UNIQUE (game_id, player_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *GameStore) Close() error {
	return s.db.Close()
}

// TeamRow is one row of the teams table.
type TeamRow struct {
	ID   string
	Name string
}

// PlayerRow is one row of the players table.
type PlayerRow struct {
	ID   string
	Name string
}

// MatchRow is one row of the matches table. Scores are nil when the page
// carried no usable final score.
type MatchRow struct {
	FacrGameID    string
	CompetitionID string
	Date          string
	Round         string
	HomeTeamID    string
	AwayTeamID    string
	HomeScore     *int
	AwayScore     *int
	HalftimeScore string
	Venue         string
	Spectators    int
}

// GoalRow is one player's goal count within one match.
type GoalRow struct {
	GameID   string
	PlayerID string
	TeamID   string
	Goals    int
}

// MatchUpsert bundles everything committed for one match in one transaction.
type MatchUpsert struct {
	Match   MatchRow
	Teams   []TeamRow
	Players []PlayerRow
	Goals   []GoalRow
}

// CommitResult summarizes the rows written for one match.
type CommitResult struct {
	TeamsInserted   int64
	PlayersInserted int64
	GoalsWritten    int64
}

// SaveMatch commits one match atomically: teams and players are upserted
// first so every goal row references existing entities, the match row is
// replaced by its federation game ID, and the match's goal rows are deleted
// and reinserted so a re-crawl never duplicates or strands goals. On error
// the transaction is rolled back and the store is left as it was.
func (s *GameStore) SaveMatch(ctx context.Context, up MatchUpsert) (CommitResult, error) {
	var res CommitResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, team := range up.Teams {
		r, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO teams (team_id, name) VALUES (?, ?)`,
			team.ID, team.Name)
		if err != nil {
			return CommitResult{}, fmt.Errorf("upsert team %s: %w", team.ID, err)
		}
		n, _ := r.RowsAffected()
		res.TeamsInserted += n
	}

	for _, player := range up.Players {
		r, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO players (player_id, name) VALUES (?, ?)`,
			player.ID, player.Name)
		if err != nil {
			return CommitResult{}, fmt.Errorf("upsert player %s: %w", player.ID, err)
		}
		n, _ := r.RowsAffected()
		res.PlayersInserted += n
	}

	m := up.Match
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO matches
			(facr_game_id, competition_id, date, round, home_team_id, away_team_id,
			 home_score, away_score, halftime_score, venue, spectators)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.FacrGameID, m.CompetitionID, m.Date, m.Round, m.HomeTeamID, m.AwayTeamID,
		nullableInt(m.HomeScore), nullableInt(m.AwayScore), m.HalftimeScore, m.Venue, m.Spectators)
	if err != nil {
		return CommitResult{}, fmt.Errorf("upsert match %s: %w", m.FacrGameID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM goals WHERE game_id = ?`, m.FacrGameID); err != nil {
		return CommitResult{}, fmt.Errorf("clear goals for %s: %w", m.FacrGameID, err)
	}
	for _, goal := range up.Goals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO goals (game_id, player_id, team_id, goals_scored)
			VALUES (?, ?, ?, ?)`,
			goal.GameID, goal.PlayerID, goal.TeamID, goal.Goals); err != nil {
			return CommitResult{}, fmt.Errorf("insert goal row for %s: %w", goal.PlayerID, err)
		}
		res.GoalsWritten++
	}

	if err := tx.Commit(); err != nil {
		return CommitResult{}, fmt.Errorf("commit match %s: %w", m.FacrGameID, err)
	}
	return res, nil
}

// TeamName returns the stored display name for a team ID, or "" when the
// team has not been seen yet. The first-seen spelling wins and stays.
func (s *GameStore) TeamName(ctx context.Context, teamID string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM teams WHERE team_id = ?`, teamID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("look up team %s: %w", teamID, err)
	}
	return name, nil
}

// CountRows reports the row count of one of the four tables; used by the
// run summary and by idempotence checks.
func (s *GameStore) CountRows(ctx context.Context, table string) (int64, error) {
	switch table {
	case "matches", "teams", "players", "goals":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
