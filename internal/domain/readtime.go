package domain

import "strings"

// WordsPerMinute is the reading speed used for read-time estimates.
const WordsPerMinute = 180

// EstimateReadTime derives the minutes needed to read a subsection's items.
// The result is at least one minute.
func EstimateReadTime(sub *Subsection) int {
	words := 0
	count := func(texts ...string) {
		for _, t := range texts {
			words += len(strings.Fields(t))
		}
	}

	for _, item := range sub.Items {
		count(item.Headline, item.Analysis, item.CredibilityNotes)
		count(item.KeyFacts...)
		count(item.Implications...)
		count(item.WatchNext...)
	}

	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// AttachReadTimes refreshes the estimate on every subsection of the issue.
func AttachReadTimes(issue *Issue) {
	for _, subs := range issue.Sections {
		subs.Each(func(_ string, sub *Subsection) {
			sub.ReadTimeMinutes = EstimateReadTime(sub)
		})
	}
}

// RefreshStatus sets ready when any item exists and partial otherwise.
func RefreshStatus(issue *Issue) {
	if issue.Sections.ItemCount() > 0 {
		issue.Status = StatusReady
		return
	}
	issue.Status = StatusPartial
}
