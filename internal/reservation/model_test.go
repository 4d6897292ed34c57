package reservation

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsHalfOpen(t *testing.T) {
	s1, e1 := date(2026, 10, 1), date(2026, 10, 4)

	cases := []struct {
		name   string
		s2, e2 time.Time
		want   bool
	}{
		{"contained", date(2026, 10, 2), date(2026, 10, 3), true},
		{"partial head", date(2026, 9, 30), date(2026, 10, 2), true},
		{"partial tail", date(2026, 10, 3), date(2026, 10, 6), true},
		{"covering", date(2026, 9, 30), date(2026, 10, 6), true},
		{"touching before", date(2026, 9, 28), date(2026, 10, 1), false},
		{"touching after", date(2026, 10, 4), date(2026, 10, 6), false},
		{"disjoint", date(2026, 10, 10), date(2026, 10, 12), false},
	}
	for _, c := range cases {
		if got := Overlaps(s1, e1, c.s2, c.e2); got != c.want {
			t.Fatalf("%s: Overlaps = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPriceFor(t *testing.T) {
	// 3 整天 × 10000 分
	if got := PriceFor(date(2026, 10, 1), date(2026, 10, 4), 10000); got != 30000 {
		t.Fatalf("got %d", got)
	}
	// 2 天半按 3 天计
	start := date(2026, 10, 1)
	end := start.Add(60 * time.Hour)
	if got := PriceFor(start, end, 10000); got != 30000 {
		t.Fatalf("partial day must round up, got %d", got)
	}
}

func TestSlotDays(t *testing.T) {
	days := SlotDays(date(2026, 10, 1), date(2026, 10, 4))
	want := []string{"2026-10-01", "2026-10-02", "2026-10-03"}
	if len(days) != len(want) {
		t.Fatalf("got %v", days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("got %v, want %v", days, want)
		}
	}
}
