package sports

import (
	"fmt"
	"strings"
	"time"

	"DailyBrief/internal/domain"
)

// clock renders the kickoff in loc as HH:MM, or --:-- when unknown.
func clock(kickoff time.Time, loc *time.Location) string {
	if kickoff.IsZero() {
		return "--:--"
	}
	return kickoff.In(loc).Format("15:04")
}

// city is the display name of a tz identifier: Europe/Athens -> Athens.
func city(tz string) string {
	if i := strings.LastIndex(tz, "/"); i >= 0 {
		tz = tz[i+1:]
	}
	return strings.ReplaceAll(tz, "_", " ")
}

func scoreText(g Game) string {
	if !g.hasScore() {
		return ""
	}
	return fmt.Sprintf("%s %d-%d %s", g.HomeTeam, *g.HomeScore, *g.AwayScore, g.AwayTeam)
}

// ToItem renders a game as an issue item with times shown in loc.
func ToItem(g Game, loc *time.Location, tz string) domain.Item {
	state := g.State()
	kickoff := clock(g.Kickoff, loc)
	score := scoreText(g)

	competition := "Competition: " + g.Competition
	if g.Country != "" {
		competition += " (" + g.Country + ")"
	}

	var headline, fact, analysis, watch string
	switch state {
	case Finished:
		headline = score
		fact = "Final score: " + score
		if score == "" {
			headline = fmt.Sprintf("%s vs %s (%s)", g.HomeTeam, g.AwayTeam, g.StatusLong)
			fact = "Status: " + g.StatusLong
		}
		analysis = "The result is now confirmed and can immediately affect standings, qualification paths, and short-term team momentum."
		watch = "Post-game reports and updated standings."
	case Live:
		headline = score
		if score == "" {
			headline = fmt.Sprintf("%s vs %s (%s)", g.HomeTeam, g.AwayTeam, g.StatusLong)
		}
		fact = "Live status: " + g.StatusLong
		analysis = "The game is currently in progress, so tactical swings and game-state volatility can still change the outcome."
		watch = "Post-game reports and updated standings."
	default:
		headline = fmt.Sprintf("%s vs %s · %s %s", g.HomeTeam, g.AwayTeam, kickoff, city(tz))
		fact = fmt.Sprintf("Kickoff: %s (%s)", kickoff, tz)
		analysis = "The upcoming fixture can influence near-term standings and preparation windows once lineups and final team news are confirmed."
		watch = "Official starting lineups and late availability updates."
	}

	title := "API-SPORTS Football"
	if g.Sport == Basketball {
		title = "API-SPORTS Basketball"
	}

	return domain.Item{
		Headline: headline,
		KeyFacts: []string{competition, fact},
		Analysis: analysis,
		Implications: []string{
			"Monitor official competition updates for standings and tie-break impacts.",
			"Track lineup and injury changes close to kickoff or tip-off for decision-making.",
		},
		WatchNext: []string{watch, "Any disciplinary or injury announcements after the match window."},
		Sources:   []domain.Source{{Title: title, URL: g.SourceURL, Publisher: "API-SPORTS"}},
	}
}

// Narrative summarizes a bucket by game state.
func Narrative(label, date, tz string, games []Game) string {
	if len(games) == 0 {
		return fmt.Sprintf("No scheduled or completed matches were detected for %s on %s in %s.", label, date, tz)
	}
	counts := map[State]int{}
	for _, g := range games {
		counts[g.State()]++
	}
	return fmt.Sprintf("%d match updates for %s on %s: %d upcoming, %d live/in-progress, %d completed. All times are shown in %s.",
		len(games), label, date, counts[Upcoming], counts[Live], counts[Finished], tz)
}
