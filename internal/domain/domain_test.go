package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSubsectionMapPreservesOrderThroughJSON(t *testing.T) {
	t.Parallel()

	m := NewSubsectionMap()
	m.Ensure("world", "Worldwide")
	m.Ensure("cyprus", "Cyprus")
	m.Ensure("greece", "Greece")
	cy := m.Ensure("cyprus", "ignored")
	cy.Items = append(cy.Items, Item{Headline: "h"})

	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded SubsectionMap
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := strings.Join(decoded.Keys(), ",")
	if got != "world,cyprus,greece" {
		t.Fatalf("unexpected key order: %s", got)
	}
	sub, ok := decoded.Get("cyprus")
	if !ok || sub.Label != "Cyprus" || len(sub.Items) != 1 {
		t.Fatalf("unexpected cyprus subsection: %+v", sub)
	}
}

func TestSectionsEnsureCreatesOnDemand(t *testing.T) {
	t.Parallel()

	sections := Sections{}
	sub := sections.Ensure("tech", "quantum", "Quantum")
	sub.Items = append(sub.Items, Item{Headline: "qubits"})

	if sections.ItemCount() != 1 {
		t.Fatalf("expected 1 item, got %d", sections.ItemCount())
	}
	if again := sections.Ensure("tech", "quantum", "Other"); again.Label != "Quantum" {
		t.Fatalf("existing subsection relabelled: %s", again.Label)
	}
}

func TestAutoLabel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"apollon_limassol": "Apollon Limassol",
		"ai_llm":           "Ai Llm",
		"space":            "Space",
	}
	for in, want := range cases {
		if got := AutoLabel(in); got != want {
			t.Fatalf("AutoLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEstimateReadTime(t *testing.T) {
	t.Parallel()

	if got := EstimateReadTime(&Subsection{}); got != 1 {
		t.Fatalf("empty subsection: got %d, want 1", got)
	}

	long := strings.Repeat("word ", 181)
	sub := &Subsection{Items: []Item{{Headline: "two words", KeyFacts: []string{long}}}}
	if got := EstimateReadTime(sub); got != 2 {
		t.Fatalf("183 words: got %d, want 2", got)
	}
}

func TestRawInput(t *testing.T) {
	t.Parallel()

	in := RawInput{News: "  \n", Tech: "\t"}
	if !in.IsEmpty() {
		t.Fatal("whitespace-only input must count as empty")
	}

	in.Append(BucketNews, "first")
	in.Append(BucketNews, "second")
	in.Append(BucketSports, "goal")
	if in.News != "first\n\nsecond" {
		t.Fatalf("unexpected news text: %q", in.News)
	}
	if got := in.Provenance(); got != "first\n\nsecond\n\ngoal" {
		t.Fatalf("unexpected provenance: %q", got)
	}
}
