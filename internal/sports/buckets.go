package sports

import (
	"regexp"
	"sort"
)

type bucketRule struct {
	key         string
	sport       Sport
	competition *regexp.Regexp
	country     *regexp.Regexp
	exclude     *regexp.Regexp
}

func (r bucketRule) matches(g Game) bool {
	if g.Sport != r.sport || !r.competition.MatchString(g.Competition) {
		return false
	}
	if r.country != nil && !r.country.MatchString(g.Country) {
		return false
	}
	return r.exclude == nil || !r.exclude.MatchString(g.Competition)
}

func ci(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

// bucketRules is evaluated in order; the first match wins and unmatched games
// are dropped.
var bucketRules = []bucketRule{
	{key: "football_cyprus_league", sport: Football, competition: ci(`division|1st|1\.`), country: ci(`cyprus`)},
	{key: "football_greek_super_league", sport: Football, competition: ci(`super\s*league`), country: ci(`greece`)},
	{key: "football_champions_league", sport: Football, competition: ci(`champions\s*league`)},
	{key: "football_europa_league", sport: Football, competition: ci(`europa\s*league`), exclude: ci(`conference`)},
	{key: "football_conference_league", sport: Football, competition: ci(`conference\s*league`)},
	{key: "football_premier_league", sport: Football, competition: ci(`premier\s*league`), country: ci(`england`)},
	{key: "football_bundesliga", sport: Football, competition: ci(`bundesliga`), country: ci(`germany`)},
	{key: "football_serie_a", sport: Football, competition: ci(`serie\s*a`), country: ci(`italy`)},
	{key: "football_ligue_1", sport: Football, competition: ci(`ligue\s*1`), country: ci(`france`)},
	{key: "football_la_liga", sport: Football, competition: ci(`la\s*liga|primera\s*division`), country: ci(`spain`)},
	{key: "basketball_euroleague", sport: Basketball, competition: ci(`euroleague`)},
	{key: "basketball_greek_league", sport: Basketball, competition: ci(`basket\s*league|a1|heba|esake|gbl`), country: ci(`greece`)},
	{key: "national_euro", sport: Football, competition: ci(`uefa\s*euro|european\s*championship`)},
	{key: "national_world_cup", sport: Football, competition: ci(`world\s*cup`)},
	{key: "national_nations_league", sport: Football, competition: ci(`nations\s*league`)},
}

// BucketKeys lists every match-center bucket in rule order.
func BucketKeys() []string {
	keys := make([]string, len(bucketRules))
	for i, r := range bucketRules {
		keys[i] = r.key
	}
	return keys
}

// BucketFor returns the bucket of a game, or false when no rule matches.
func BucketFor(g Game) (string, bool) {
	for _, r := range bucketRules {
		if r.matches(g) {
			return r.key, true
		}
	}
	return "", false
}

// Bucketize routes games into buckets, every bucket present, each sorted by
// kickoff.
func Bucketize(games []Game) map[string][]Game {
	out := make(map[string][]Game, len(bucketRules))
	for _, key := range BucketKeys() {
		out[key] = []Game{}
	}
	for _, g := range games {
		if key, ok := BucketFor(g); ok {
			out[key] = append(out[key], g)
		}
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Kickoff.Before(list[j].Kickoff)
		})
	}
	return out
}
