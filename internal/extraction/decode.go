package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/taxonomy"
)

const untitledHeadline = "Untitled update"

// ErrInvalidDocument marks a generator response that cannot be used at all.
var ErrInvalidDocument = errors.New("invalid generated document")

type field struct {
	key   string
	value json.RawMessage
}

// objectFields returns the members of a JSON object in document order.
func objectFields(raw json.RawMessage) ([]field, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	var out []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		out = append(out, field{key: key, value: value})
	}
	return out, true
}

func lookup(fields []field, key string) (json.RawMessage, bool) {
	for _, f := range fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

func asString(raw json.RawMessage) (string, bool) {
	var s string
	if raw == nil || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// asStrings keeps the string members of an array; anything else is empty.
func asStrings(raw json.RawMessage) []string {
	var values []json.RawMessage
	out := []string{}
	if raw == nil || json.Unmarshal(raw, &values) != nil {
		return out
	}
	for _, v := range values {
		if s, ok := asString(v); ok {
			out = append(out, s)
		}
	}
	return out
}

func asArray(raw json.RawMessage) []json.RawMessage {
	var values []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &values) != nil {
		return nil
	}
	return values
}

// decodeIssue merges a generated issue document into issue, which must
// already hold the canonical empty layout. Unknown sections and sections fed
// only by live data are ignored; unknown subsections of known sections are
// created.
func decodeIssue(raw json.RawMessage, issue *domain.Issue, registry *taxonomy.Registry) error {
	root, ok := objectFields(raw)
	if !ok {
		return fmt.Errorf("%w: root is not an object", ErrInvalidDocument)
	}
	sectionsRaw, ok := lookup(root, "sections")
	if !ok {
		return fmt.Errorf("%w: sections missing", ErrInvalidDocument)
	}
	sections, ok := objectFields(sectionsRaw)
	if !ok {
		return fmt.Errorf("%w: sections is not an object", ErrInvalidDocument)
	}

	for _, sf := range sections {
		key := domain.SectionKey(sf.key)
		def, err := registry.Section(key)
		if err != nil || def.Bucket == "" {
			continue
		}
		subs, ok := objectFields(sf.value)
		if !ok {
			continue
		}
		for _, sub := range subs {
			body, ok := objectFields(sub.value)
			if !ok {
				continue
			}
			label := domain.AutoLabel(sub.key)
			canonical, known := def.Subsection(sub.key)
			if known {
				label = canonical.Label(taxonomy.English)
			} else if s, ok := lookup(body, "label"); ok {
				if l, ok := asString(s); ok && strings.TrimSpace(l) != "" {
					label = l
				}
			}
			target := issue.Sections.Ensure(key, sub.key, label)
			if items, ok := lookup(body, "items"); ok {
				target.Items = decodeItems(items)
			}
			if n, ok := lookup(body, "narrative"); ok {
				if s, ok := asString(n); ok {
					target.Narrative = s
				}
			}
		}
	}
	return nil
}

func decodeItems(raw json.RawMessage) []domain.Item {
	items := []domain.Item{}
	for _, value := range asArray(raw) {
		fields, ok := objectFields(value)
		if !ok {
			continue
		}
		items = append(items, decodeItem(fields))
	}
	return items
}

func decodeItem(fields []field) domain.Item {
	get := func(key string) json.RawMessage {
		v, _ := lookup(fields, key)
		return v
	}

	headline, _ := asString(get("headline"))
	if strings.TrimSpace(headline) == "" {
		headline = untitledHeadline
	}
	analysis, _ := asString(get("analysis"))
	notes, _ := asString(get("credibilityNotes"))

	return domain.Item{
		Headline:         headline,
		KeyFacts:         asStrings(get("keyFacts")),
		Analysis:         analysis,
		Implications:     asStrings(get("implications")),
		WatchNext:        asStrings(get("watchNext")),
		CredibilityNotes: notes,
		Sources:          decodeSources(get("sources")),
	}
}

func decodeSources(raw json.RawMessage) []domain.Source {
	out := []domain.Source{}
	for _, value := range asArray(raw) {
		fields, ok := objectFields(value)
		if !ok {
			continue
		}
		u, _ := lookup(fields, "url")
		link, ok := asString(u)
		if !ok || strings.TrimSpace(link) == "" {
			continue
		}
		src := domain.Source{Title: link, URL: link}
		if t, ok := lookup(fields, "title"); ok {
			if s, ok := asString(t); ok && s != "" {
				src.Title = s
			}
		}
		if p, ok := lookup(fields, "publisher"); ok {
			src.Publisher, _ = asString(p)
		}
		out = append(out, src)
	}
	return out
}

// decodeNarratives merges {section:{subsection:{narrative}}} into existing
// subsections and reports how many were applied.
func decodeNarratives(raw json.RawMessage, issue *domain.Issue) (int, error) {
	root, ok := objectFields(raw)
	if !ok {
		return 0, fmt.Errorf("%w: root is not an object", ErrInvalidDocument)
	}
	// Some models wrap the answer in the issue shape.
	if inner, ok := lookup(root, "sections"); ok {
		if fields, ok := objectFields(inner); ok {
			root = fields
		}
	}

	applied := 0
	for _, sf := range root {
		subs, ok := objectFields(sf.value)
		if !ok {
			continue
		}
		for _, sub := range subs {
			target, ok := issue.Sections.Subsection(domain.Route{Section: domain.SectionKey(sf.key), Subsection: sub.key})
			if !ok {
				continue
			}
			body, ok := objectFields(sub.value)
			if !ok {
				continue
			}
			n, _ := lookup(body, "narrative")
			if s, ok := asString(n); ok && strings.TrimSpace(s) != "" {
				target.Narrative = strings.TrimSpace(s)
				applied++
			}
		}
	}
	if applied == 0 {
		return 0, fmt.Errorf("%w: no narratives", ErrInvalidDocument)
	}
	return applied, nil
}
