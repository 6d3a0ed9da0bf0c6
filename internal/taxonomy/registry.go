// Package taxonomy holds the fixed section/subsection layout of a daily issue.
package taxonomy

import (
	"errors"
	"fmt"

	"DailyBrief/internal/domain"
)

// ErrUnknownSection is returned when a section key is not registered.
var ErrUnknownSection = errors.New("unknown section")

// Language selects a display label translation.
type Language string

const (
	English Language = "en"
	Greek   Language = "el"
)

// SubsectionDefinition is one canonical subsection.
type SubsectionDefinition struct {
	Key    string
	Labels map[Language]string
}

// Label returns the translation for lang, falling back to English.
func (s SubsectionDefinition) Label(lang Language) string {
	if label, ok := s.Labels[lang]; ok && label != "" {
		return label
	}
	return s.Labels[English]
}

// SectionDefinition describes a top-level section.
type SectionDefinition struct {
	Key               domain.SectionKey
	TitleKey          string
	FallbackCover     string
	DefaultSubsection string
	// Bucket is the raw-text source that feeds the section; empty when the
	// section is populated only from live data.
	Bucket      domain.Bucket
	Subsections []SubsectionDefinition
}

// Subsection returns the definition for key.
func (s SectionDefinition) Subsection(key string) (SubsectionDefinition, bool) {
	for _, sub := range s.Subsections {
		if sub.Key == key {
			return sub, true
		}
	}
	return SubsectionDefinition{}, false
}

// Registry is a read-only index over section definitions.
type Registry struct {
	sections []SectionDefinition
	byKey    map[domain.SectionKey]int
	defaults map[domain.Bucket]domain.Route
}

// New validates definitions and bucket default routes and builds a registry.
func New(defs []SectionDefinition, defaults map[domain.Bucket]domain.Route) (*Registry, error) {
	r := &Registry{
		sections: make([]SectionDefinition, len(defs)),
		byKey:    make(map[domain.SectionKey]int, len(defs)),
		defaults: make(map[domain.Bucket]domain.Route, len(defaults)),
	}
	copy(r.sections, defs)

	for i, def := range r.sections {
		if _, dup := r.byKey[def.Key]; dup {
			return nil, fmt.Errorf("duplicate section %s", def.Key)
		}
		if _, ok := def.Subsection(def.DefaultSubsection); !ok {
			return nil, fmt.Errorf("section %s: default subsection %s is not defined", def.Key, def.DefaultSubsection)
		}
		seen := map[string]struct{}{}
		for _, sub := range def.Subsections {
			if _, dup := seen[sub.Key]; dup {
				return nil, fmt.Errorf("section %s: duplicate subsection %s", def.Key, sub.Key)
			}
			seen[sub.Key] = struct{}{}
		}
		r.byKey[def.Key] = i
	}

	for bucket, route := range defaults {
		if !r.Has(route) {
			return nil, fmt.Errorf("bucket %s: default route %s is not defined", bucket, route)
		}
		r.defaults[bucket] = route
	}

	return r, nil
}

var defaultRegistry = mustDefault()

func mustDefault() *Registry {
	r, err := New(sectionDefinitions, bucketDefaults)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: %v", err))
	}
	return r
}

// Default returns the built-in registry shared by the whole process.
func Default() *Registry {
	return defaultRegistry
}

// Section looks up a section definition.
func (r *Registry) Section(key domain.SectionKey) (SectionDefinition, error) {
	idx, ok := r.byKey[key]
	if !ok {
		return SectionDefinition{}, fmt.Errorf("%w: %s", ErrUnknownSection, key)
	}
	return r.sections[idx], nil
}

// Sections returns every definition in display order.
func (r *Registry) Sections() []SectionDefinition {
	out := make([]SectionDefinition, len(r.sections))
	copy(out, r.sections)
	return out
}

// Keys returns the section keys in display order.
func (r *Registry) Keys() []domain.SectionKey {
	keys := make([]domain.SectionKey, len(r.sections))
	for i, def := range r.sections {
		keys[i] = def.Key
	}
	return keys
}

// Has reports whether the route points at a canonical subsection.
func (r *Registry) Has(route domain.Route) bool {
	def, err := r.Section(route.Section)
	if err != nil {
		return false
	}
	_, ok := def.Subsection(route.Subsection)
	return ok
}

// Label returns the display label of a canonical subsection, or an
// auto-generated one for dynamic keys.
func (r *Registry) Label(route domain.Route, lang Language) string {
	if def, err := r.Section(route.Section); err == nil {
		if sub, ok := def.Subsection(route.Subsection); ok {
			return sub.Label(lang)
		}
	}
	return domain.AutoLabel(route.Subsection)
}

// DefaultRoute is where unmatched sentences from a bucket are filed.
func (r *Registry) DefaultRoute(bucket domain.Bucket) (domain.Route, bool) {
	route, ok := r.defaults[bucket]
	return route, ok
}

// SectionsForBucket lists the sections fed by a text bucket.
func (r *Registry) SectionsForBucket(bucket domain.Bucket) []domain.SectionKey {
	var keys []domain.SectionKey
	for _, def := range r.sections {
		if def.Bucket == bucket {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// EmptyIssue builds an issue with every canonical subsection present and empty.
func (r *Registry) EmptyIssue(date string) *domain.Issue {
	issue := &domain.Issue{
		Date:     date,
		Status:   domain.StatusMissing,
		Sections: domain.Sections{},
		Covers:   map[domain.SectionKey]domain.CoverImage{},
	}
	r.Normalize(issue)
	return issue
}

// Normalize restores missing canonical sections and subsections. Dynamic
// subsections already present are kept after the canonical ones.
func (r *Registry) Normalize(issue *domain.Issue) {
	if issue.Sections == nil {
		issue.Sections = domain.Sections{}
	}
	if issue.Covers == nil {
		issue.Covers = map[domain.SectionKey]domain.CoverImage{}
	}
	if !issue.Status.Valid() {
		issue.Status = domain.StatusPartial
	}

	for _, def := range r.sections {
		existing := issue.Sections[def.Key]
		subs := domain.NewSubsectionMap()
		for _, sub := range def.Subsections {
			if current, ok := existing.Get(sub.Key); ok && current != nil {
				if current.Items == nil {
					current.Items = []domain.Item{}
				}
				subs.Set(sub.Key, current)
				continue
			}
			subs.Ensure(sub.Key, sub.Label(English))
		}
		existing.Each(func(key string, sub *domain.Subsection) {
			if _, canonical := subs.Get(key); canonical || sub == nil {
				return
			}
			subs.Set(key, sub)
		})
		issue.Sections[def.Key] = subs
	}
}
