// Package classifier routes raw sentences into taxonomy subsections without
// any external service.
package classifier

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/taxonomy"
)

const (
	headlineLimit   = 110
	defaultHeadline = "Daily update"
	maxSources      = 6

	emptyNarrative = "No major updates were captured for this subsection in the latest automation feed."
	credibilityMsg = "Signals appear mixed across sources; treat early details as provisional."
)

var (
	whitespace     = regexp.MustCompile(`\s+`)
	sentenceEnd    = regexp.MustCompile(`[.!?]\s+`)
	citationLine   = regexp.MustCompile(`(?i)^sources?:`)
	sourcesCapture = regexp.MustCompile(`(?i)sources?:\s*([^\n]+)`)
	sourceSplit    = regexp.MustCompile(`(?i),|\band\b`)
	leadingTag     = regexp.MustCompile(`^\w+:\s*`)
	hedging        = regexp.MustCompile(`(?i)mixed|conflict|unclear|disagree`)
)

// Assignment is one classified sentence.
type Assignment struct {
	Route domain.Route
	Item  domain.Item
}

// Classifier is a deterministic, side-effect free sentence router.
type Classifier struct {
	registry *taxonomy.Registry
	rules    []Rule
}

// New builds a classifier over the registry. A nil rule table selects DefaultRules.
func New(registry *taxonomy.Registry, rules []Rule) *Classifier {
	if registry == nil {
		registry = taxonomy.Default()
	}
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{registry: registry, rules: rules}
}

// Classify splits text into sentences and routes each non-citation sentence
// to exactly one subsection.
func (c *Classifier) Classify(text string, bucket domain.Bucket) []Assignment {
	sources := SourceLinks(ExtractSourceNames(text))

	var out []Assignment
	for _, sentence := range SplitSentences(text) {
		if citationLine.MatchString(sentence) {
			continue
		}
		route := c.Route(sentence, bucket)
		label := c.registry.Label(route, taxonomy.English)
		out = append(out, Assignment{Route: route, Item: buildItem(sentence, label, sources)})
	}
	return out
}

// Route picks the destination of a single sentence: the first matching
// non-general rule, else the first matching general rule, else the bucket
// default route.
func (c *Classifier) Route(sentence string, bucket domain.Bucket) domain.Route {
	var fallback *Rule
	for i := range c.rules {
		r := &c.rules[i]
		if r.Bucket != bucket || !r.Matches(sentence) {
			continue
		}
		if !r.General {
			return r.Route
		}
		if fallback == nil {
			fallback = r
		}
	}
	if fallback != nil {
		return fallback.Route
	}
	route, _ := c.registry.DefaultRoute(bucket)
	return route
}

// Apply classifies every bucket of input into issue, synthesizes narratives
// and refreshes the issue status.
func (c *Classifier) Apply(issue *domain.Issue, input domain.RawInput) {
	if issue.Sections == nil {
		issue.Sections = domain.Sections{}
	}
	for _, bucket := range domain.Buckets {
		for _, a := range c.Classify(input.Text(bucket), bucket) {
			sub := issue.Sections.Ensure(a.Route.Section, a.Route.Subsection, c.registry.Label(a.Route, taxonomy.English))
			sub.Items = append(sub.Items, a.Item)
		}
	}
	c.FillNarratives(issue)
	domain.RefreshStatus(issue)
}

// FillNarratives writes a templated narrative into every subsection of the
// text-fed sections.
func (c *Classifier) FillNarratives(issue *domain.Issue) {
	for _, def := range c.registry.Sections() {
		if def.Bucket == "" {
			continue
		}
		issue.Sections[def.Key].Each(func(_ string, sub *domain.Subsection) {
			sub.Narrative = Narrative(sub)
		})
	}
}

// Narrative renders the templated summary of a subsection.
func Narrative(sub *domain.Subsection) string {
	if len(sub.Items) == 0 {
		return emptyNarrative
	}
	top := make([]string, 0, 2)
	for _, item := range sub.Items {
		if len(top) == 2 {
			break
		}
		top = append(top, item.Headline)
	}
	return fmt.Sprintf("What happened: %s. Why it matters: this can change near-term priorities and execution timing. Watch: confirmation from primary sources and concrete next steps.",
		strings.Join(top, "; "))
}

// SplitSentences normalizes whitespace and cuts after terminal punctuation.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// ExtractSourceNames returns the names listed after the first "Sources:" marker.
func ExtractSourceNames(text string) []string {
	m := sourcesCapture.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var names []string
	for _, part := range sourceSplit.Split(m[1], -1) {
		part = strings.TrimSpace(part)
		if strings.HasSuffix(part, ".") || strings.HasSuffix(part, ";") {
			part = part[:len(part)-1]
		}
		if part == "" {
			continue
		}
		names = append(names, part)
		if len(names) == maxSources {
			break
		}
	}
	return names
}

// SourceLinks turns bare publisher names into search-link citations.
func SourceLinks(names []string) []domain.Source {
	out := make([]domain.Source, 0, len(names))
	for _, name := range names {
		out = append(out, domain.Source{
			Title:     name,
			Publisher: name,
			URL:       "https://www.google.com/search?q=" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20"),
		})
	}
	return out
}

// Headline strips a leading "Tag:" and clips the sentence.
func Headline(sentence string) string {
	clean := strings.TrimSpace(leadingTag.ReplaceAllString(sentence, ""))
	runes := []rune(clean)
	if len(runes) > headlineLimit {
		clean = strings.TrimRight(string(runes[:headlineLimit-3]), " \t") + "..."
	}
	if clean == "" {
		return defaultHeadline
	}
	return clean
}

func buildItem(sentence, label string, sources []domain.Source) domain.Item {
	item := domain.Item{
		Headline: Headline(sentence),
		KeyFacts: []string{sentence},
		Analysis: label + " developments suggest ongoing momentum with short-term operational impact to monitor.",
		Implications: []string{
			"Teams exposed to " + strings.ToLower(label) + " developments should review near-term dependencies.",
			"Decision windows are tightening as updates become more frequent.",
		},
		WatchNext: []string{
			"Official follow-up statements or implementation timelines.",
			"Any contradictory reporting from major sources.",
		},
		Sources: append([]domain.Source{}, sources...),
	}
	if hedging.MatchString(sentence) {
		item.CredibilityNotes = credibilityMsg
	}
	return item
}
