// Package sports fetches football and basketball fixtures from api-sports
// and folds them into the match-center section of an issue.
package sports

import (
	"strings"
	"time"
)

// Sport is the kind of event a provider reports.
type Sport string

const (
	Football   Sport = "football"
	Basketball Sport = "basketball"
)

// State is the coarse lifecycle of a game.
type State string

const (
	Finished State = "finished"
	Live     State = "live"
	Upcoming State = "upcoming"
)

var (
	finishedCodes = codeSet("FT", "AET", "PEN", "AOT", "AWD", "WO", "ABD", "CANC")
	liveCodes     = codeSet("1H", "HT", "2H", "ET", "BT", "P", "LIVE", "Q1", "Q2", "Q3", "Q4", "OT")
)

func codeSet(codes ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		out[c] = struct{}{}
	}
	return out
}

// ClassifyStatus maps a provider short status code to a State.
func ClassifyStatus(short string) State {
	short = strings.ToUpper(strings.TrimSpace(short))
	if _, ok := finishedCodes[short]; ok {
		return Finished
	}
	if _, ok := liveCodes[short]; ok {
		return Live
	}
	return Upcoming
}

// Game is one normalized fixture from either provider.
type Game struct {
	Sport       Sport
	Competition string
	Country     string
	StatusShort string
	StatusLong  string
	HomeTeam    string
	AwayTeam    string
	HomeScore   *int
	AwayScore   *int
	Kickoff     time.Time
	SourceURL   string
}

// State classifies the game status.
func (g Game) State() State {
	return ClassifyStatus(g.StatusShort)
}

func (g Game) hasScore() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}
