package classifier

import (
	"regexp"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/taxonomy"
)

// Rule routes a sentence of one bucket into a subsection. A rule matches when
// any pattern of Any matches (or Any is empty) and every pattern of All matches.
// General rules lose to any matching non-general rule of the same bucket.
type Rule struct {
	Bucket  domain.Bucket
	Route   domain.Route
	Any     []*regexp.Regexp
	All     []*regexp.Regexp
	General bool
}

// Matches reports whether the rule fires for sentence.
func (r Rule) Matches(sentence string) bool {
	for _, re := range r.All {
		if !re.MatchString(sentence) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return len(r.All) > 0
	}
	for _, re := range r.Any {
		if re.MatchString(sentence) {
			return true
		}
	}
	return false
}

func words(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)\b(?:` + p + `)\b`)
	}
	return out
}

func rule(bucket domain.Bucket, section domain.SectionKey, sub string, patterns ...string) Rule {
	return Rule{Bucket: bucket, Route: domain.Route{Section: section, Subsection: sub}, Any: words(patterns...)}
}

func sportsRule(section domain.SectionKey, sub string, patterns ...string) Rule {
	return rule(domain.BucketSports, section, sub, patterns...)
}

// basketball restricts a club rule to sentences that are clearly about the
// basketball side of a multi-sport club.
func basketball(r Rule) Rule {
	r.All = words(`basketball|euroleague|euro league`)
	return r
}

func general(r Rule) Rule {
	r.General = true
	return r
}

// DefaultRules is the built-in rule table. Named teams are listed before
// competitions, and league-wide rules are flagged general.
var DefaultRules = []Rule{
	rule(domain.BucketNews, taxonomy.News, "cyprus", `cyprus`, `nicosia`),
	rule(domain.BucketNews, taxonomy.News, "greece", `greece`, `greek`, `athens`),
	rule(domain.BucketNews, taxonomy.News, "world", `world`, `worldwide`, `global`, `international`),

	rule(domain.BucketTech, taxonomy.Tech, "cs", `computer science`, `research`, `paper`, `benchmark`),
	rule(domain.BucketTech, taxonomy.Tech, "programming", `programming`, `language`, `compiler`, `typescript`, `python`),
	rule(domain.BucketTech, taxonomy.Tech, "ai_llm", `ai`, `llm`, `model`, `inference`, `prompt`),
	rule(domain.BucketTech, taxonomy.Tech, "other", `engineering`, `platform`, `infrastructure`, `devops`, `architecture`),

	// Cyprus clubs.
	sportsRule(taxonomy.CyprusFootball, "apollon_limassol", `apollon`),
	sportsRule(taxonomy.CyprusFootball, "ael_limassol", `ael`),
	sportsRule(taxonomy.CyprusFootball, "apoel_nicosia", `apoel`),
	sportsRule(taxonomy.CyprusFootball, "omonoia_nicosia", `omonoia`, `omonia`),
	sportsRule(taxonomy.CyprusFootball, "anorthosis_famagusta", `anorthosis`),
	sportsRule(taxonomy.CyprusFootball, "aek_larnaka", `aek larnaka`, `aek larnaca`),

	// EuroLeague clubs sharing names with football clubs.
	basketball(sportsRule(taxonomy.Euroleague, "olympiacos", `olympiacos`, `olympiakos`)),
	basketball(sportsRule(taxonomy.Euroleague, "panathinaikos", `panathinaikos`)),
	basketball(sportsRule(taxonomy.Euroleague, "fc_barcelona", `barcelona`, `barca`)),
	basketball(sportsRule(taxonomy.Euroleague, "real_madrid", `real madrid`)),
	basketball(sportsRule(taxonomy.Euroleague, "bayern_munich", `bayern`)),
	basketball(sportsRule(taxonomy.Euroleague, "as_monaco", `monaco`)),
	basketball(sportsRule(taxonomy.Euroleague, "fenerbahce", `fenerbahce`, `fenerbahçe`)),

	// Greek clubs.
	sportsRule(taxonomy.GreekSuperLeague, "olympiacos_piraeus", `olympiacos`, `olympiakos`),
	sportsRule(taxonomy.GreekSuperLeague, "panathinaikos_fc", `panathinaikos`),
	sportsRule(taxonomy.GreekSuperLeague, "aek_athens", `aek athens`, `aek`),
	sportsRule(taxonomy.GreekSuperLeague, "paok_fc", `paok`),
	sportsRule(taxonomy.GreekSuperLeague, "aris_fc", `aris`),

	// Basketball-only clubs.
	sportsRule(taxonomy.Euroleague, "anadolu_efes", `anadolu efes`, `efes`),
	sportsRule(taxonomy.Euroleague, "baskonia", `baskonia`),
	sportsRule(taxonomy.Euroleague, "crvena_zvezda", `crvena zvezda`, `red star`),
	sportsRule(taxonomy.Euroleague, "maccabi_tel_aviv", `maccabi`),
	sportsRule(taxonomy.Euroleague, "olimpia_milano", `olimpia milano`, `armani milan`, `ea7`),
	sportsRule(taxonomy.Euroleague, "paris_basketball", `paris basketball`),
	sportsRule(taxonomy.Euroleague, "partizan", `partizan`),
	sportsRule(taxonomy.Euroleague, "valencia_basket", `valencia basket`),
	sportsRule(taxonomy.Euroleague, "virtus_bologna", `virtus`),
	sportsRule(taxonomy.Euroleague, "zalgiris", `zalgiris`, `kaunas`),
	sportsRule(taxonomy.Euroleague, "asvel", `asvel`, `villeurbanne`),
	sportsRule(taxonomy.Euroleague, "hapoel_tel_aviv", `hapoel tel aviv`, `hapoel`),
	sportsRule(taxonomy.Euroleague, "dubai_bc", `dubai bc`, `dubai basketball`),

	// Competitions.
	sportsRule(taxonomy.EuropeanFootball, "champions_league", `champions league`, `ucl`),
	sportsRule(taxonomy.EuropeanFootball, "europa_league", `europa league`),
	sportsRule(taxonomy.EuropeanFootball, "conference_league", `conference league`),
	sportsRule(taxonomy.EuropeanFootball, "premier_league", `premier league`, `epl`),
	sportsRule(taxonomy.EuropeanFootball, "la_liga", `la liga`, `laliga`),
	sportsRule(taxonomy.EuropeanFootball, "serie_a", `serie a`),
	sportsRule(taxonomy.EuropeanFootball, "ligue_1", `ligue 1`),
	sportsRule(taxonomy.EuropeanFootball, "bundesliga", `bundesliga`),
	sportsRule(taxonomy.NationalFootball, "euro", `uefa euro`, `euro 20\d\d`, `european championship`),
	sportsRule(taxonomy.NationalFootball, "world_cup", `world cup`),
	sportsRule(taxonomy.NationalFootball, "nations_league", `nations league`),

	// League-wide.
	general(sportsRule(taxonomy.CyprusFootball, "cyprus_league_general", `cyprus`, `cypriot`, `cyta`)),
	general(sportsRule(taxonomy.GreekSuperLeague, "greek_super_league_general", `super league`, `greece`, `greek`)),
	general(sportsRule(taxonomy.Euroleague, "euroleague_general", `euroleague`, `euro league`, `basketball`)),
}
