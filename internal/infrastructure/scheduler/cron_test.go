package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseValid(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{
		"* * * * *",
		"5 7 * * *",
		"*/15 6-9 * * 1-5",
		"0 0 1,15 * *",
		"0 12 * 1-6 7",
	} {
		if _, err := Parse(expr); err != nil {
			t.Fatalf("Parse(%q) error: %v", expr, err)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{
		"",
		"* * *",
		"* * * * * *",
		"60 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 8",
		"abc * * * *",
		"*/0 * * * *",
		"5-1 * * * *",
	} {
		if _, err := Parse(expr); err == nil {
			t.Fatalf("Parse(%q) expected error", expr)
		}
	}
}

func TestParseFoldsSundayAlias(t *testing.T) {
	t.Parallel()

	s, err := Parse("0 9 * * 5-7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]int{0, 5, 6}, s.DayOfWeek); diff != "" {
		t.Fatalf("day-of-week mismatch (-want +got):\n%s", diff)
	}
}

func TestNextInTimezone(t *testing.T) {
	t.Parallel()

	athens, err := time.LoadLocation("Europe/Athens")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	s, _ := Parse("5 7 * * *")

	from := time.Date(2026, 2, 17, 7, 5, 0, 0, athens)
	want := time.Date(2026, 2, 18, 7, 5, 0, 0, athens)
	if got := s.Next(from); !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}

	from = time.Date(2026, 2, 17, 4, 0, 0, 0, time.UTC)
	want = time.Date(2026, 2, 17, 7, 5, 0, 0, athens)
	if got := s.Next(from.In(athens)); !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestNextDayFieldsMatchEither(t *testing.T) {
	t.Parallel()

	// 1st of the month or any Monday.
	s, _ := Parse("0 0 1 * 1")
	from := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC) // Tuesday
	want := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)  // Monday
	if got := s.Next(from); !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}

	from = time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	want = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := s.Next(from); !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestNextWeekdaysOnly(t *testing.T) {
	t.Parallel()

	s, _ := Parse("30 6 * * 1-5")
	from := time.Date(2026, 2, 20, 7, 0, 0, 0, time.UTC) // Friday after run
	want := time.Date(2026, 2, 23, 6, 30, 0, 0, time.UTC)
	if got := s.Next(from); !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestCronSchedulerRunsAndStops(t *testing.T) {
	t.Parallel()

	c, err := NewCronScheduler("5 7 * * *", time.UTC, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	base := time.Date(2026, 2, 17, 6, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	var waits []time.Duration
	var mu sync.Mutex
	c.after = func(d time.Duration) <-chan time.Time {
		mu.Lock()
		waits = append(waits, d)
		mu.Unlock()
		ch := make(chan time.Time, 1)
		ch <- base.Add(d)
		return ch
	}

	fired := make(chan time.Time, 1)
	var once sync.Once
	job := func(at time.Time) {
		once.Do(func() { fired <- at })
	}

	if err := c.Start(context.Background(), job); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Start(context.Background(), job); err != nil {
		t.Fatalf("second start: %v", err)
	}

	select {
	case at := <-fired:
		if want := time.Date(2026, 2, 17, 7, 5, 0, 0, time.UTC); !at.Equal(want) {
			t.Fatalf("job fired at %v, want %v", at, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(waits) == 0 || waits[0] != 65*time.Minute {
		t.Fatalf("unexpected first wait: %v", waits)
	}
}

func TestCronSchedulerRejectsBadExpression(t *testing.T) {
	t.Parallel()

	if _, err := NewCronScheduler("not a cron", nil, nil); err == nil {
		t.Fatal("expected parse error")
	}
}
