package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mhrabal/facrcrawl/internal/linkstore"
	"github.com/mhrabal/facrcrawl/internal/store"
)

const matchPage = `<html><body>
<h1 class="Match-meta">15. 09. 2024 10:15, 5. kolo</h1>
<div class="Match-teams">
  <div class="Match-team"><a>FK A</a></div>
  <div class="Match-team"><a>FK B</a></div>
</div>
<div class="Match-result"><strong>3:1</strong><p>(2:0)</p></div>
<div class="Match-detailsContainer">Číslo utkání: 2024622G1B0107</div>
<li class="MatchTimeline-item MatchTimeline-item--home"><p>Petr Novák</p></li>
<li class="MatchTimeline-item MatchTimeline-item--home"><p>Petr Novák</p></li>
<li class="MatchTimeline-item"><p>Jan Dvorak</p></li>
</body></html>`

type mapFetcher struct {
	pages map[string]string
	calls atomic.Int32
}

func (f *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return []byte(page), nil
}

type failingSaver struct{}

func (failingSaver) SaveMatch(context.Context, store.MatchUpsert) (store.CommitResult, error) {
	return store.CommitResult{}, errors.New("disk full")
}

func openTestStore(t *testing.T) *store.GameStore {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunEndToEnd(t *testing.T) {
	ref := linkstore.MatchReference{
		ID:  "89d2518d-1d51-46c5-9b63-41e968c3e381",
		URL: "https://www.fotbal.cz/souteze/zapasy/zapas/89d2518d-1d51-46c5-9b63-41e968c3e381/abc123",
	}
	fetcher := &mapFetcher{pages: map[string]string{ref.URL: matchPage}}
	gameStore := openTestStore(t)

	summary := New(fetcher, gameStore, 4, zap.NewNop()).
		Run(context.Background(), []linkstore.MatchReference{ref})

	require.Equal(t, 1, summary.Committed)
	require.Zero(t, summary.Failed())
	require.NotEmpty(t, summary.RunID)

	ctx := context.Background()
	for table, want := range map[string]int64{
		"matches": 1, "teams": 2, "players": 2, "goals": 2,
	} {
		n, err := gameStore.CountRows(ctx, table)
		require.NoError(t, err)
		require.Equal(t, want, n, "table %s", table)
	}

	scorers, err := gameStore.TopScorers(ctx, "2024622G1B", "", 0)
	require.NoError(t, err)
	require.Len(t, scorers, 2)
	require.Equal(t, "Petr Novák", scorers[0].PlayerName)
	require.Equal(t, 2, scorers[0].TotalGoals)
	require.Equal(t, "fk_a", scorers[0].TeamID)
	require.Equal(t, 1, scorers[1].TotalGoals)
	require.Equal(t, "fk_b", scorers[1].TeamID)
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	ref := linkstore.MatchReference{ID: "abc", URL: "https://example.org/match"}
	fetcher := &mapFetcher{pages: map[string]string{ref.URL: matchPage}}
	gameStore := openTestStore(t)
	p := New(fetcher, gameStore, 2, zap.NewNop())

	refs := []linkstore.MatchReference{ref}
	first := p.Run(context.Background(), refs)
	second := p.Run(context.Background(), refs)
	require.Equal(t, 1, first.Committed)
	require.Equal(t, 1, second.Committed)

	ctx := context.Background()
	for table, want := range map[string]int64{
		"matches": 1, "teams": 2, "players": 2, "goals": 2,
	} {
		n, err := gameStore.CountRows(ctx, table)
		require.NoError(t, err)
		require.Equal(t, want, n, "table %s after re-crawl", table)
	}
}

func TestRunContinuesPastPerMatchFailures(t *testing.T) {
	good := linkstore.MatchReference{ID: "good", URL: "https://example.org/good"}
	unreachable := linkstore.MatchReference{ID: "gone", URL: "https://example.org/gone"}
	unusable := linkstore.MatchReference{ID: "bad", URL: "https://example.org/bad"}

	fetcher := &mapFetcher{pages: map[string]string{
		good.URL:     matchPage,
		unusable.URL: "<html><body>no teams here</body></html>",
	}}
	gameStore := openTestStore(t)

	summary := New(fetcher, gameStore, 2, zap.NewNop()).
		Run(context.Background(), []linkstore.MatchReference{unreachable, unusable, good})

	require.Equal(t, 1, summary.Committed)
	require.Equal(t, 1, summary.FetchFailed)
	require.Equal(t, 1, summary.ParseFailed)
	require.Equal(t, 2, summary.Failed())
	require.EqualValues(t, 3, fetcher.calls.Load(), "every reference is attempted")
}

func TestRunCountsCommitFailures(t *testing.T) {
	ref := linkstore.MatchReference{ID: "abc", URL: "https://example.org/match"}
	fetcher := &mapFetcher{pages: map[string]string{ref.URL: matchPage}}

	summary := New(fetcher, failingSaver{}, 1, zap.NewNop()).
		Run(context.Background(), []linkstore.MatchReference{ref})

	require.Zero(t, summary.Committed)
	require.Equal(t, 1, summary.CommitFailed)
}

func TestRunStopsFeedingOnCanceledContext(t *testing.T) {
	refs := make([]linkstore.MatchReference, 50)
	for i := range refs {
		refs[i] = linkstore.MatchReference{ID: fmt.Sprint(i), URL: fmt.Sprintf("https://example.org/%d", i)}
	}
	fetcher := &mapFetcher{pages: map[string]string{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := New(fetcher, failingSaver{}, 2, zap.NewNop()).Run(ctx, refs)
	require.Less(t, summary.Failed(), len(refs), "canceled run should not visit every reference")
}

func squadPage(gameID, timeline string) string {
	return fmt.Sprintf(`<html><body>
<h1 class="Match-meta">15. 09. 2024 10:15, 5. kolo</h1>
<div class="Match-teams">
  <div class="Match-team"><a>FK A</a></div>
  <div class="Match-team"><a>FK B</a></div>
</div>
<div class="Match-result"><strong>1:0</strong></div>
<div class="Match-detailsContainer">Číslo utkání: %s</div>
<div class="Match-statsGrid">
  <section>
    <h2>FK A</h2>
    <table><tbody>
      <tr><td>1</td><td>GK</td><td>Karel Svoboda</td></tr>
      <tr><td>7</td><td>FW</td><td>Petr Novák</td></tr>
    </tbody></table>
  </section>
</div>
%s
</body></html>`, gameID, timeline)
}

func TestRunRecordsScorelessAppearances(t *testing.T) {
	scored := linkstore.MatchReference{ID: "m1", URL: "https://example.org/m1"}
	scoreless := linkstore.MatchReference{ID: "m2", URL: "https://example.org/m2"}
	fetcher := &mapFetcher{pages: map[string]string{
		scored.URL: squadPage("2024622G1B0107",
			`<li class="MatchTimeline-item MatchTimeline-item--home"><p>Petr Novák</p></li>`),
		scoreless.URL: squadPage("2024622G1B0108", ""),
	}}
	gameStore := openTestStore(t)

	summary := New(fetcher, gameStore, 2, zap.NewNop()).
		Run(context.Background(), []linkstore.MatchReference{scored, scoreless})
	require.Equal(t, 2, summary.Committed)

	ctx := context.Background()
	goals, err := gameStore.CountRows(ctx, "goals")
	require.NoError(t, err)
	require.EqualValues(t, 4, goals, "every squad player gets a row per match, scoring or not")

	scorers, err := gameStore.TopScorers(ctx, "2024622G1B", "", 0)
	require.NoError(t, err)
	require.Len(t, scorers, 2)
	require.Equal(t, "Petr Novák", scorers[0].PlayerName)
	require.Equal(t, 1, scorers[0].TotalGoals)
	require.Equal(t, 2, scorers[0].TotalGames, "scoreless appearances count as games played")
	require.Equal(t, "Karel Svoboda", scorers[1].PlayerName)
	require.Equal(t, 0, scorers[1].TotalGoals)
	require.Equal(t, 2, scorers[1].TotalGames)
}

func TestRunCommitsPlayerListedOnBothSides(t *testing.T) {
	// Two distinct players sharing a name is realistic; their timeline
	// entries resolve to one stable ID, which must degrade the match, not
	// fail its commit.
	ref := linkstore.MatchReference{ID: "m1", URL: "https://example.org/m1"}
	fetcher := &mapFetcher{pages: map[string]string{ref.URL: `<html><body>
<h1 class="Match-meta">15. 09. 2024 10:15, 5. kolo</h1>
<div class="Match-teams">
  <div class="Match-team"><a>FK A</a></div>
  <div class="Match-team"><a>FK B</a></div>
</div>
<div class="Match-result"><strong>1:1</strong></div>
<div class="Match-detailsContainer">Číslo utkání: 2024622G1B0107</div>
<li class="MatchTimeline-item MatchTimeline-item--home"><p>Jan Novák</p></li>
<li class="MatchTimeline-item"><p>Jan Novák</p></li>
</body></html>`}}
	gameStore := openTestStore(t)

	summary := New(fetcher, gameStore, 1, zap.NewNop()).
		Run(context.Background(), []linkstore.MatchReference{ref})
	require.Equal(t, 1, summary.Committed)
	require.Zero(t, summary.CommitFailed)
	require.Equal(t, 1, summary.Warned, "side conflict degrades the match")

	ctx := context.Background()
	goals, err := gameStore.CountRows(ctx, "goals")
	require.NoError(t, err)
	require.EqualValues(t, 1, goals, "one merged row per (game, player)")

	scorers, err := gameStore.TopScorers(ctx, "2024622G1B", "", 0)
	require.NoError(t, err)
	require.Len(t, scorers, 1)
	require.Equal(t, 2, scorers[0].TotalGoals, "goals from both entries summed")
	require.Equal(t, "fk_a", scorers[0].TeamID, "first-seen side wins")
}

func TestBuildUpsertFallsBackToReferenceID(t *testing.T) {
	ref := linkstore.MatchReference{ID: "ext-42", URL: "https://example.org/m"}
	fetcher := &mapFetcher{pages: map[string]string{ref.URL: `<html><body>
		<div class="Match-teams">
			<div class="Match-team"><a>FK A</a></div>
			<div class="Match-team"><a>FK B</a></div>
		</div>
	</body></html>`}}
	gameStore := openTestStore(t)

	summary := New(fetcher, gameStore, 1, zap.NewNop()).
		Run(context.Background(), []linkstore.MatchReference{ref})
	require.Equal(t, 1, summary.Committed)
	require.Equal(t, 1, summary.Warned, "missing game number degrades but still commits")

	n, err := gameStore.CountRows(context.Background(), "matches")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
