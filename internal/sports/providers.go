package sports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	footballDocURL   = "https://api-sports.io/sports/football"
	basketballDocURL = "https://api-sports.io/sports/basketball"
)

// number accepts a JSON number or a numeric string; anything else is absent.
type number struct {
	value *float64
}

func (n *number) UnmarshalJSON(data []byte) error {
	n.value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	n.value = &f
	return nil
}

func (n number) intPtr() *int {
	if n.value == nil {
		return nil
	}
	v := int(math.Round(*n.value))
	return &v
}

type teamRef struct {
	Name string `json:"name"`
}

type statusRef struct {
	Short string `json:"short"`
	Long  string `json:"long"`
}

type leagueRef struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type footballRow struct {
	Fixture struct {
		ID     number    `json:"id"`
		Date   string    `json:"date"`
		Status statusRef `json:"status"`
	} `json:"fixture"`
	League leagueRef `json:"league"`
	Teams  struct {
		Home teamRef `json:"home"`
		Away teamRef `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home number `json:"home"`
		Away number `json:"away"`
	} `json:"goals"`
	Date string `json:"date"`
	Time string `json:"time"`
}

type basketballRow struct {
	ID     number    `json:"id"`
	Date   string    `json:"date"`
	Time   string    `json:"time"`
	Status statusRef `json:"status"`
	League leagueRef `json:"league"`
	Teams  struct {
		Home teamRef `json:"home"`
		Away teamRef `json:"away"`
	} `json:"teams"`
	Scores struct {
		Home struct {
			Total number `json:"total"`
		} `json:"home"`
		Away struct {
			Total number `json:"total"`
		} `json:"away"`
	} `json:"scores"`
}

// rows extracts the provider "response" array. Rows are returned raw so that
// one malformed entry does not discard the rest.
func rows(payload []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Response []json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return envelope.Response, nil
}

// ParseFootball normalizes an api-football fixtures payload.
func ParseFootball(payload []byte) ([]Game, error) {
	raw, err := rows(payload)
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(raw))
	for _, r := range raw {
		var row footballRow
		if err := json.Unmarshal(r, &row); err != nil {
			continue
		}
		kickoff := parseKickoff(row.Fixture.Date)
		if kickoff.IsZero() {
			kickoff = parseKickoff(joinDateTime(row.Date, row.Time))
		}
		source := footballDocURL
		if id := row.Fixture.ID.intPtr(); id != nil && *id != 0 {
			source = fmt.Sprintf("https://www.api-football.com/documentation-v3#tag/Fixtures/operation/get-fixtures?id=%d", *id)
		}
		games = append(games, Game{
			Sport:       Football,
			Competition: orDefault(row.League.Name, "Football"),
			Country:     row.League.Country,
			StatusShort: orDefault(row.Fixture.Status.Short, "NS"),
			StatusLong:  orDefault(row.Fixture.Status.Long, "Not Started"),
			HomeTeam:    orDefault(row.Teams.Home.Name, "Home"),
			AwayTeam:    orDefault(row.Teams.Away.Name, "Away"),
			HomeScore:   row.Goals.Home.intPtr(),
			AwayScore:   row.Goals.Away.intPtr(),
			Kickoff:     kickoff,
			SourceURL:   source,
		})
	}
	return games, nil
}

// ParseBasketball normalizes an api-basketball games payload.
func ParseBasketball(payload []byte) ([]Game, error) {
	raw, err := rows(payload)
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(raw))
	for _, r := range raw {
		var row basketballRow
		if err := json.Unmarshal(r, &row); err != nil {
			continue
		}
		kickoff := parseKickoff(row.Date)
		if kickoff.IsZero() {
			kickoff = parseKickoff(joinDateTime(row.Date, row.Time))
		}
		source := basketballDocURL
		if id := row.ID.intPtr(); id != nil && *id != 0 {
			source = fmt.Sprintf("%s#game-%d", basketballDocURL, *id)
		}
		games = append(games, Game{
			Sport:       Basketball,
			Competition: orDefault(row.League.Name, "Basketball"),
			Country:     row.League.Country,
			StatusShort: orDefault(row.Status.Short, "NS"),
			StatusLong:  orDefault(row.Status.Long, "Not Started"),
			HomeTeam:    orDefault(row.Teams.Home.Name, "Home"),
			AwayTeam:    orDefault(row.Teams.Away.Name, "Away"),
			HomeScore:   row.Scores.Home.Total.intPtr(),
			AwayScore:   row.Scores.Away.Total.intPtr(),
			Kickoff:     kickoff,
			SourceURL:   source,
		})
	}
	return games, nil
}

func parseKickoff(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func joinDateTime(date, clock string) string {
	if date == "" || strings.Contains(date, "T") {
		return ""
	}
	if clock == "" {
		clock = "00:00"
	}
	return date + "T" + clock + ":00Z"
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
