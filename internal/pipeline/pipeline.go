// Package pipeline runs the crawl: match references fan out to a bounded
// worker pool, each worker fetching, parsing, and committing one match at a
// time. Per-match failures are logged and counted; only the seed list and
// the database connection can abort a run.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mhrabal/facrcrawl/internal/linkstore"
	"github.com/mhrabal/facrcrawl/internal/normalize"
	"github.com/mhrabal/facrcrawl/internal/parser"
	"github.com/mhrabal/facrcrawl/internal/store"
)

// Fetcher retrieves a match page's raw HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Saver commits one parsed match atomically.
type Saver interface {
	SaveMatch(ctx context.Context, up store.MatchUpsert) (store.CommitResult, error)
}

// Summary is the user-visible result of one crawl run.
type Summary struct {
	RunID        string
	Total        int
	Committed    int
	Warned       int
	FetchFailed  int
	ParseFailed  int
	CommitFailed int
}

// Failed returns the number of references that produced no committed match.
func (s Summary) Failed() int {
	return s.FetchFailed + s.ParseFailed + s.CommitFailed
}

// Pipeline wires the crawl stages together.
type Pipeline struct {
	fetcher Fetcher
	saver   Saver
	workers int
	logger  *zap.Logger
}

// New constructs a Pipeline with the given worker count.
func New(f Fetcher, s Saver, workers int, logger *zap.Logger) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{fetcher: f, saver: s, workers: workers, logger: logger}
}

// Run processes every reference and returns the run summary. Matches are
// independent, so no cross-match ordering is guaranteed; per match the
// stages always run fetch, parse, normalize, commit.
func (p *Pipeline) Run(ctx context.Context, refs []linkstore.MatchReference) Summary {
	summary := Summary{RunID: newRunID(), Total: len(refs)}
	logger := p.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("Starting crawl",
		zap.Int("references", len(refs)),
		zap.Int("workers", p.workers),
	)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		work = make(chan linkstore.MatchReference)
	)
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range work {
				outcome := p.processMatch(ctx, logger, ref)
				mu.Lock()
				outcome.apply(&summary)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, ref := range refs {
		select {
		case work <- ref:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	logger.Info("Crawl finished",
		zap.Int("committed", summary.Committed),
		zap.Int("failed", summary.Failed()),
		zap.Int("warned", summary.Warned),
	)
	return summary
}

type outcome struct {
	committed    bool
	warned       bool
	fetchFailed  bool
	parseFailed  bool
	commitFailed bool
}

func (o outcome) apply(s *Summary) {
	switch {
	case o.fetchFailed:
		s.FetchFailed++
	case o.parseFailed:
		s.ParseFailed++
	case o.commitFailed:
		s.CommitFailed++
	case o.committed:
		s.Committed++
		if o.warned {
			s.Warned++
		}
	}
}

// processMatch walks one reference through fetch, parse, normalize, commit.
// A failure at any stage is terminal for the match only.
func (p *Pipeline) processMatch(ctx context.Context, logger *zap.Logger, ref linkstore.MatchReference) outcome {
	matchLogger := logger.With(zap.String("match_ref", ref.ID), zap.String("url", ref.URL))

	html, err := p.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		fetchErrors.Inc()
		matchLogger.Warn("Fetch failed", zap.Error(err))
		return outcome{fetchFailed: true}
	}
	pagesFetched.Inc()

	parsed, err := parser.Parse(html)
	if err != nil {
		parseErrors.Inc()
		matchLogger.Warn("Parse failed", zap.Error(err))
		return outcome{parseFailed: true}
	}
	for _, w := range parsed.Warnings {
		parseWarnings.Inc()
		matchLogger.Warn("Partial parse", zap.String("detail", w))
	}

	up, conflicts := buildUpsert(ref, parsed)
	for _, w := range conflicts {
		parseWarnings.Inc()
		matchLogger.Warn("Partial parse", zap.String("detail", w))
	}

	res, err := p.saver.SaveMatch(ctx, up)
	if err != nil {
		commitErrors.Inc()
		matchLogger.Warn("Commit failed", zap.Error(err))
		return outcome{commitFailed: true}
	}
	matchesCommitted.Inc()
	matchLogger.Info("Match committed",
		zap.String("home", parsed.HomeTeam),
		zap.String("away", parsed.AwayTeam),
		zap.Int64("goal_rows", res.GoalsWritten),
	)
	return outcome{committed: true, warned: len(parsed.Warnings)+len(conflicts) > 0}
}

// buildUpsert resolves free-text names to stable identifiers and assembles
// the rows committed for one match, returning any degraded-data warnings.
// Teams and players come first in the upsert so goal rows always reference
// entities that exist at commit time.
func buildUpsert(ref linkstore.MatchReference, m *parser.ParsedMatch) (store.MatchUpsert, []string) {
	gameID := m.FacrGameID
	if gameID == "" {
		// Page carried no federation game number; the external reference ID
		// still identifies the match uniquely across re-crawls.
		gameID = ref.ID
	}

	homeID := normalize.StableID(m.HomeTeam)
	awayID := normalize.StableID(m.AwayTeam)

	up := store.MatchUpsert{
		Match: store.MatchRow{
			FacrGameID:    gameID,
			CompetitionID: m.CompetitionID,
			Date:          m.Date,
			Round:         m.Round,
			HomeTeamID:    homeID,
			AwayTeamID:    awayID,
			HalftimeScore: m.HalftimeScore,
			Venue:         m.Venue,
			Spectators:    m.Spectators,
		},
		Teams: []store.TeamRow{
			{ID: homeID, Name: m.HomeTeam},
			{ID: awayID, Name: m.AwayTeam},
		},
	}
	if m.HasScore {
		home, away := m.HomeScore, m.AwayScore
		up.Match.HomeScore = &home
		up.Match.AwayScore = &away
	}

	seenPlayers := make(map[string]struct{})
	addPlayer := func(name string) string {
		id := normalize.StableID(name)
		if id == "" {
			return ""
		}
		if _, ok := seenPlayers[id]; !ok {
			seenPlayers[id] = struct{}{}
			up.Players = append(up.Players, store.PlayerRow{ID: id, Name: name})
		}
		return id
	}
	teamOf := func(side parser.TeamSide) string {
		if side == parser.SideAway {
			return awayID
		}
		return homeID
	}

	// Goal rows are keyed by (game_id, player_id) in the store, so entries
	// resolving to the same player are merged here: goals sum, the
	// first-seen team wins, and a side conflict degrades the match with a
	// warning instead of failing its commit.
	var warnings []string
	goalIndex := make(map[string]int)
	addGoal := func(name string, side parser.TeamSide, goals int) {
		playerID := addPlayer(name)
		if playerID == "" {
			return
		}
		teamID := teamOf(side)
		if i, ok := goalIndex[playerID]; ok {
			up.Goals[i].Goals += goals
			if up.Goals[i].TeamID != teamID {
				warnings = append(warnings, fmt.Sprintf(
					"player %q listed for both sides; goals recorded under team %s", name, up.Goals[i].TeamID))
			}
			return
		}
		goalIndex[playerID] = len(up.Goals)
		up.Goals = append(up.Goals, store.GoalRow{
			GameID:   gameID,
			PlayerID: playerID,
			TeamID:   teamID,
			Goals:    goals,
		})
	}

	// Every squad player starts at zero so appearance counts include
	// players who never scored; timeline tallies then add onto those rows.
	for _, entry := range m.Squad {
		addGoal(entry.Player, entry.Side, 0)
	}
	for _, sc := range m.Scorers {
		addGoal(sc.Player, sc.Side, sc.Goals)
	}
	return up, warnings
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
