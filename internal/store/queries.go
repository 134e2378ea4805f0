package store

import (
	"context"
	"fmt"
)

// ScorerTotal is one row of the top-scorers aggregate.
type ScorerTotal struct {
	PlayerName string
	TeamName   string
	TeamID     string
	TotalGoals int
	TotalGames int
}

// TopScorers aggregates goals per player across every match whose federation
// game ID starts with competition, optionally restricted to one team.
// limit <= 0 returns all scorers.
func (s *GameStore) TopScorers(ctx context.Context, competition, teamID string, limit int) ([]ScorerTotal, error) {
	query := `
	SELECT
		p.name,
		t.name,
		g.team_id,
		SUM(g.goals_scored) AS total_goals,
		COUNT(DISTINCT g.game_id) AS total_games
	FROM goals g
	INNER JOIN players p ON g.player_id = p.player_id
	INNER JOIN teams t ON g.team_id = t.team_id
	WHERE g.game_id LIKE ?`
	args := []any{competition + "%"}
	if teamID != "" {
		query += ` AND g.team_id = ?`
		args = append(args, teamID)
	}
	query += `
	GROUP BY g.player_id, g.team_id
	ORDER BY total_goals DESC, p.name`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top scorers: %w", err)
	}
	defer rows.Close()

	var out []ScorerTotal
	for rows.Next() {
		var sc ScorerTotal
		if err := rows.Scan(&sc.PlayerName, &sc.TeamName, &sc.TeamID, &sc.TotalGoals, &sc.TotalGames); err != nil {
			return nil, fmt.Errorf("scan scorer row: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// TeamStanding is one row of the computed points table.
type TeamStanding struct {
	TeamID   string
	TeamName string
	Played   int
	Points   int
}

// Standings computes a 3/1/0 points table for every team that played a match
// whose federation game ID starts with competition. Matches without a final
// score are excluded.
func (s *GameStore) Standings(ctx context.Context, competition string) ([]TeamStanding, error) {
	query := `
	SELECT
		t.team_id,
		t.name,
		COUNT(*) AS played,
		SUM(r.points) AS points
	FROM (
		SELECT
			home_team_id AS team_id,
			CASE
				WHEN home_score > away_score THEN 3
				WHEN home_score = away_score THEN 1
				ELSE 0
			END AS points
		FROM matches
		WHERE home_score IS NOT NULL AND facr_game_id LIKE ?

		UNION ALL

		SELECT
			away_team_id AS team_id,
			CASE
				WHEN away_score > home_score THEN 3
				WHEN away_score = home_score THEN 1
				ELSE 0
			END AS points
		FROM matches
		WHERE away_score IS NOT NULL AND facr_game_id LIKE ?
	) AS r
	JOIN teams t ON t.team_id = r.team_id
	GROUP BY t.team_id, t.name
	ORDER BY points DESC, t.name`

	like := competition + "%"
	rows, err := s.db.QueryContext(ctx, query, like, like)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	var out []TeamStanding
	for rows.Next() {
		var ts TeamStanding
		if err := rows.Scan(&ts.TeamID, &ts.TeamName, &ts.Played, &ts.Points); err != nil {
			return nil, fmt.Errorf("scan standings row: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}
