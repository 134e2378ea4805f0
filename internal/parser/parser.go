// Package parser extracts structured match data from federation match pages.
//
// Each field has its own extractor so one missing or malformed section never
// blocks the rest of the page: a page without a goal timeline simply yields
// an empty scorer list, a garbled score line is skipped with a warning. The
// only hard failure is a page without two team names, which makes the match
// unusable.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mhrabal/facrcrawl/internal/normalize"
)

// ErrNoTeams marks a page from which no team names could be extracted.
var ErrNoTeams = errors.New("no team names found on page")

// TeamSide tells which side of the match a scorer played for.
type TeamSide string

const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// Scorer is one player's goal tally within a single match.
type Scorer struct {
	Player string
	Side   TeamSide
	Goals  int
}

// SquadEntry is a player listed on a team's match sheet, scoring or not.
type SquadEntry struct {
	Player string
	Side   TeamSide
}

// ParsedMatch is the structured result of parsing one match page.
type ParsedMatch struct {
	FacrGameID    string
	CompetitionID string
	Date          string // ISO yyyy-mm-dd, empty when the meta line is unusable
	Round         string
	HomeTeam      string
	AwayTeam      string
	HasScore      bool
	HomeScore     int
	AwayScore     int
	HalftimeScore string
	Venue         string
	Spectators    int
	Squad         []SquadEntry
	Scorers       []Scorer

	// Warnings records degraded extractions; the match still commits.
	Warnings []string
}

// TeamName resolves a side to the team name extracted from the page.
func (m *ParsedMatch) TeamName(side TeamSide) string {
	if side == SideHome {
		return m.HomeTeam
	}
	return m.AwayTeam
}

var (
	gameIDPattern     = regexp.MustCompile(`Číslo utkání:\s*([0-9A-Z.]+)`)
	venuePattern      = regexp.MustCompile(`Hřiště:\s*([^.]+)`)
	spectatorsPattern = regexp.MustCompile(`Diváků:\s*(\d+)`)
	scorePattern      = regexp.MustCompile(`^(\d+)\s*:\s*(\d+)$`)
	matchNoSuffix     = regexp.MustCompile(`^(.+?)\d{4}$`)
)

const kickoffLayout = "02. 01. 2006 15:04"

// Parse extracts a ParsedMatch from raw page HTML.
func Parse(html []byte) (*ParsedMatch, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	m := &ParsedMatch{}
	if err := extractTeams(doc, m); err != nil {
		return nil, err
	}
	extractMeta(doc, m)
	extractDetails(doc, m)
	extractScore(doc, m)
	extractSquad(doc, m)
	extractScorers(doc, m)
	return m, nil
}

func extractTeams(doc *goquery.Document, m *ParsedMatch) error {
	var names []string
	doc.Find(".Match-teams .Match-team a").Each(func(_ int, s *goquery.Selection) {
		if name := collapse(s.Text()); name != "" {
			names = append(names, name)
		}
	})
	if len(names) < 2 {
		return ErrNoTeams
	}
	m.HomeTeam = names[0]
	m.AwayTeam = names[1]
	return nil
}

// extractMeta reads the kickoff line, e.g. "15. 09. 2024 10:15, 5. kolo".
func extractMeta(doc *goquery.Document, m *ParsedMatch) {
	meta := collapse(doc.Find("h1.Match-meta").First().Text())
	if meta == "" {
		m.warn("missing match meta line")
		return
	}
	parts := strings.SplitN(meta, ",", 2)
	if len(parts) > 1 {
		m.Round = collapse(parts[1])
	}
	kickoff, err := time.Parse(kickoffLayout, collapse(parts[0]))
	if err != nil {
		m.warn(fmt.Sprintf("unparsable kickoff date %q", parts[0]))
		return
	}
	m.Date = kickoff.Format("2006-01-02")
}

func extractDetails(doc *goquery.Document, m *ParsedMatch) {
	details := collapse(doc.Find(".Match-detailsContainer").Text())
	if details == "" {
		m.warn("missing match details section")
		return
	}
	if g := gameIDPattern.FindStringSubmatch(details); g != nil {
		// The ID class includes "." for codes like "10.A1A0107"; a sentence
		// period right after the number must not stick to it.
		m.FacrGameID = strings.TrimRight(g[1], ".")
		m.CompetitionID = competitionOf(m.FacrGameID)
	} else {
		m.warn("missing federation game number")
	}
	if v := venuePattern.FindStringSubmatch(details); v != nil {
		m.Venue = collapse(v[1])
	}
	if s := spectatorsPattern.FindStringSubmatch(details); s != nil {
		m.Spectators, _ = strconv.Atoi(s[1])
	}
}

// competitionOf derives the competition code from a federation game number
// by dropping the trailing four-digit match number, e.g. "2024622G1B0107"
// belongs to competition "2024622G1B".
func competitionOf(facrGameID string) string {
	if g := matchNoSuffix.FindStringSubmatch(facrGameID); g != nil {
		return g[1]
	}
	return facrGameID
}

func extractScore(doc *goquery.Document, m *ParsedMatch) {
	final := collapse(doc.Find(".Match-result strong").First().Text())
	if g := scorePattern.FindStringSubmatch(strings.ReplaceAll(final, " ", "")); g != nil {
		m.HomeScore, _ = strconv.Atoi(g[1])
		m.AwayScore, _ = strconv.Atoi(g[2])
		m.HasScore = true
	} else if final == "" {
		m.warn("missing final score")
	} else {
		m.warn(fmt.Sprintf("malformed final score %q", final))
	}
	m.HalftimeScore = strings.Trim(collapse(doc.Find(".Match-result p").First().Text()), "()")
}

// extractSquad collects every player on the match sheet so downstream
// appearance counts include players who never scored.
func extractSquad(doc *goquery.Document, m *ParsedMatch) {
	doc.Find(".Match-statsGrid section").Each(func(_ int, section *goquery.Selection) {
		teamName := collapse(section.Find("h2").First().Text())
		side, ok := m.sideOf(teamName)
		if !ok {
			if teamName != "" {
				m.warn(fmt.Sprintf("squad section for unknown team %q", teamName))
			}
			return
		}
		section.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			cols := row.Find("td")
			if cols.Length() < 3 {
				return
			}
			name := normalize.CleanName(cols.Eq(2).Text())
			if name == "" {
				return
			}
			m.Squad = append(m.Squad, SquadEntry{Player: name, Side: side})
		})
	})
}

// extractScorers tallies goals per player from the match timeline, in the
// order they appear on the page.
func extractScorers(doc *goquery.Document, m *ParsedMatch) {
	type key struct {
		player string
		side   TeamSide
	}
	index := make(map[key]int)
	doc.Find(".MatchTimeline-item").Each(func(_ int, item *goquery.Selection) {
		name := normalize.CleanName(item.Find("p").First().Text())
		if name == "" {
			m.warn("timeline entry without a player name")
			return
		}
		side := SideAway
		if item.HasClass("MatchTimeline-item--home") {
			side = SideHome
		}
		k := key{player: name, side: side}
		if i, ok := index[k]; ok {
			m.Scorers[i].Goals++
			return
		}
		index[k] = len(m.Scorers)
		m.Scorers = append(m.Scorers, Scorer{Player: name, Side: side, Goals: 1})
	})
}

func (m *ParsedMatch) sideOf(teamName string) (TeamSide, bool) {
	switch normalize.StableID(teamName) {
	case normalize.StableID(m.HomeTeam):
		return SideHome, true
	case normalize.StableID(m.AwayTeam):
		return SideAway, true
	default:
		return "", false
	}
}

func (m *ParsedMatch) warn(msg string) {
	m.Warnings = append(m.Warnings, msg)
}

// collapse trims and squashes runs of whitespace, including the non-breaking
// spaces the federation templates are fond of.
func collapse(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
