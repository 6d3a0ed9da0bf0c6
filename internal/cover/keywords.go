package cover

import (
	"sort"
	"strings"

	"DailyBrief/internal/domain"
)

const (
	keywordItems  = 6
	keywordCount  = 3
	minKeywordLen = 5
)

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "their": {}, "there": {}, "which": {},
	"while": {}, "under": {}, "would": {}, "could": {},
}

// Keywords picks the most frequent significant tokens from the headlines and
// key facts of the first items. Ties keep the order of first appearance.
func Keywords(items []domain.Item) []string {
	if len(items) > keywordItems {
		items = items[:keywordItems]
	}

	var text strings.Builder
	for _, item := range items {
		text.WriteString(item.Headline)
		text.WriteByte(' ')
		for _, fact := range item.KeyFacts {
			text.WriteString(fact)
			text.WriteByte(' ')
		}
	}

	normalized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, strings.ToLower(text.String()))

	counts := map[string]int{}
	var order []string
	for _, token := range strings.Fields(normalized) {
		if len(token) < minKeywordLen {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > keywordCount {
		order = order[:keywordCount]
	}
	return order
}
