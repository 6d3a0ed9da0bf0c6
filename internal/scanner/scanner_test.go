package scanner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"DailyBrief/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) (domain.RawInput, error) {
	return domain.RawInput{}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(namedScanner("file"), namedScanner("endpoint"))
	reg.Register(namedScanner("html"))

	if got, want := reg.Names(), []string{"endpoint", "file", "html"}; !cmp.Equal(got, want) {
		t.Fatalf("Names mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
	s, err := reg.Resolve("file")
	if err != nil || s.Name() != "file" {
		t.Fatalf("Resolve(file) = %v, %v", s, err)
	}

	_, err = reg.Resolve("rss")
	if err == nil || !strings.Contains(err.Error(), "known: endpoint, file, html") {
		t.Fatalf("expected unknown scanner error listing known names, got %v", err)
	}
}

func TestRequestDate(t *testing.T) {
	t.Parallel()

	athens, err := time.LoadLocation("Europe/Athens")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	req := Request{Day: time.Date(2026, 2, 17, 0, 30, 0, 0, athens)}
	if got := req.Date(); got != "2026-02-17" {
		t.Fatalf("Date() = %q", got)
	}
}
