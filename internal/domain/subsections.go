package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SubsectionMap is an insertion-ordered map of subsection key to content.
// Keys are never removed once added.
type SubsectionMap struct {
	order []string
	byKey map[string]*Subsection
}

// NewSubsectionMap returns an empty map.
func NewSubsectionMap() *SubsectionMap {
	return &SubsectionMap{byKey: map[string]*Subsection{}}
}

// Get returns the subsection stored under key.
func (m *SubsectionMap) Get(key string) (*Subsection, bool) {
	if m == nil {
		return nil, false
	}
	sub, ok := m.byKey[key]
	return sub, ok
}

// Ensure returns the subsection under key, creating an empty one with label
// when it does not exist yet.
func (m *SubsectionMap) Ensure(key, label string) *Subsection {
	if sub, ok := m.byKey[key]; ok {
		return sub
	}
	if m.byKey == nil {
		m.byKey = map[string]*Subsection{}
	}
	sub := &Subsection{Label: label, Items: []Item{}}
	m.byKey[key] = sub
	m.order = append(m.order, key)
	return sub
}

// Set stores sub under key, keeping the original position for existing keys.
func (m *SubsectionMap) Set(key string, sub *Subsection) {
	if m.byKey == nil {
		m.byKey = map[string]*Subsection{}
	}
	if _, ok := m.byKey[key]; !ok {
		m.order = append(m.order, key)
	}
	m.byKey[key] = sub
}

// Keys returns the keys in insertion order.
func (m *SubsectionMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of subsections.
func (m *SubsectionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Each visits subsections in insertion order.
func (m *SubsectionMap) Each(fn func(key string, sub *Subsection)) {
	if m == nil {
		return
	}
	for _, key := range m.order {
		fn(key, m.byKey[key])
	}
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *SubsectionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, key := range m.order {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(m.byKey[key])
			if err != nil {
				return nil, fmt.Errorf("marshal subsection %s: %w", key, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order of the document.
func (m *SubsectionMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("subsections: expected object, got %v", tok)
	}

	m.order = nil
	m.byKey = map[string]*Subsection{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var sub Subsection
		if err := dec.Decode(&sub); err != nil {
			return fmt.Errorf("subsection %s: %w", key, err)
		}
		m.Set(key, &sub)
	}
	_, err = dec.Token()
	return err
}

// Sections maps each section to its ordered subsections.
type Sections map[SectionKey]*SubsectionMap

// Ensure returns the subsection at route, creating section and subsection on demand.
func (s Sections) Ensure(section SectionKey, key, label string) *Subsection {
	subs, ok := s[section]
	if !ok || subs == nil {
		subs = NewSubsectionMap()
		s[section] = subs
	}
	return subs.Ensure(key, label)
}

// Subsection looks up the subsection at route.
func (s Sections) Subsection(r Route) (*Subsection, bool) {
	return s[r.Section].Get(r.Subsection)
}

// ItemsFor returns every item of a section in subsection order.
func (s Sections) ItemsFor(section SectionKey) []Item {
	var items []Item
	s[section].Each(func(_ string, sub *Subsection) {
		items = append(items, sub.Items...)
	})
	return items
}

// ItemCount counts items across every section.
func (s Sections) ItemCount() int {
	total := 0
	for _, subs := range s {
		subs.Each(func(_ string, sub *Subsection) {
			total += len(sub.Items)
		})
	}
	return total
}

// AutoLabel turns a snake_case key into a display label.
func AutoLabel(key string) string {
	caser := cases.Title(language.English)
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	for i, part := range parts {
		parts[i] = caser.String(part)
	}
	return strings.Join(parts, " ")
}
