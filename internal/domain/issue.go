package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no stored issue matches a lookup.
var ErrNotFound = errors.New("issue not found")

// DateLayout is the calendar-date format used as the issue key.
const DateLayout = "2006-01-02"

// IssueStatus reports how complete an ingested issue is.
type IssueStatus string

const (
	StatusReady   IssueStatus = "ready"
	StatusPartial IssueStatus = "partial"
	StatusMissing IssueStatus = "missing"
)

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusReady, StatusPartial, StatusMissing:
		return true
	}
	return false
}

// SectionKey identifies a top-level taxonomy section.
type SectionKey string

// Bucket is the raw-text source an input blob came from.
type Bucket string

const (
	BucketNews   Bucket = "news"
	BucketTech   Bucket = "tech"
	BucketSports Bucket = "sports"
)

// Buckets lists the text buckets in ingestion order.
var Buckets = []Bucket{BucketNews, BucketTech, BucketSports}

// Route addresses one subsection inside one section.
type Route struct {
	Section    SectionKey
	Subsection string
}

func (r Route) String() string {
	return string(r.Section) + "." + r.Subsection
}

// Source is a citation attached to an item.
type Source struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Publisher string `json:"publisher,omitempty"`
}

// Item is one structured unit of reporting.
type Item struct {
	Headline         string   `json:"headline"`
	KeyFacts         []string `json:"keyFacts"`
	Analysis         string   `json:"analysis"`
	Implications     []string `json:"implications"`
	WatchNext        []string `json:"watchNext"`
	CredibilityNotes string   `json:"credibilityNotes,omitempty"`
	Sources          []Source `json:"sources"`
}

// Subsection holds items in relevance order plus an optional narrative.
type Subsection struct {
	Label           string `json:"label"`
	Items           []Item `json:"items"`
	Narrative       string `json:"narrative,omitempty"`
	ReadTimeMinutes int    `json:"readTimeMinutes,omitempty"`
}

// CoverImage is the per-section artwork of an issue.
type CoverImage struct {
	Section  SectionKey `json:"block"`
	ImageURL string     `json:"imageUrl"`
	Prompt   string     `json:"prompt"`
	Keywords []string   `json:"keywords"`
}

// Issue is the aggregate root: everything published for one calendar date.
type Issue struct {
	Date      string                    `json:"date"`
	Status    IssueStatus               `json:"status"`
	Sections  Sections                  `json:"sections"`
	Covers    map[SectionKey]CoverImage `json:"covers"`
	RawInput  string                    `json:"rawAutomationInput,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// IngestRun is one append-only audit entry.
type IngestRun struct {
	Date      string
	Status    RunStatus
	Error     string
	CreatedAt time.Time
}

// RunStatus is the outcome recorded for an ingestion attempt.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// RawInput carries one raw text blob per source bucket.
type RawInput struct {
	News   string `json:"newsText"`
	Tech   string `json:"techText"`
	Sports string `json:"sportsText,omitempty"`
}

// Text returns the blob for the given bucket.
func (in RawInput) Text(b Bucket) string {
	switch b {
	case BucketNews:
		return in.News
	case BucketTech:
		return in.Tech
	case BucketSports:
		return in.Sports
	}
	return ""
}

// Append adds text to a bucket, separated from existing content by a blank line.
func (in *RawInput) Append(b Bucket, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	target := in.field(b)
	if target == nil {
		return
	}
	if strings.TrimSpace(*target) == "" {
		*target = text
		return
	}
	*target += "\n\n" + text
}

func (in *RawInput) field(b Bucket) *string {
	switch b {
	case BucketNews:
		return &in.News
	case BucketTech:
		return &in.Tech
	case BucketSports:
		return &in.Sports
	}
	return nil
}

// IsEmpty reports whether every bucket is blank.
func (in RawInput) IsEmpty() bool {
	for _, b := range Buckets {
		if strings.TrimSpace(in.Text(b)) != "" {
			return false
		}
	}
	return true
}

// Provenance concatenates the non-empty texts for audit.
func (in RawInput) Provenance() string {
	parts := make([]string, 0, len(Buckets))
	for _, b := range Buckets {
		if text := in.Text(b); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
