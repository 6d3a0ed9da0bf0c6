package scanner

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"DailyBrief/internal/domain"
)

// Category describes a concrete page of a source provided by config.
type Category struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute a scan.
type Request struct {
	Day        time.Time
	SiteName   string
	Bucket     domain.Bucket
	URL        string
	Token      string
	Selector   string
	MaxItems   int
	Categories []Category
	Options    map[string]string
}

// Date is the request day as an issue key.
func (r Request) Date() string {
	return r.Day.Format(domain.DateLayout)
}

// Scanner captures a single strategy implementation (endpoint, file, html, arxiv).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) (domain.RawInput, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds a registry holding the given scanners.
func NewRegistry(scanners ...Scanner) *Registry {
	r := &Registry{scanners: map[string]Scanner{}}
	for _, s := range scanners {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %q is not registered (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists the registered strategies in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.scanners))
}
