package datemath

import (
	"testing"
	"time"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		date time.Time
		want int
	}{
		{"exactly three days out", now.Add(72 * time.Hour), 3},
		{"partial day rounds up", now.Add(25 * time.Hour), 2},
		{"same instant", now, 0},
		{"two days past", now.Add(-48 * time.Hour), -2},
		{"just past rounds toward zero", now.Add(-time.Hour), 0},
	}
	for _, tc := range cases {
		if got := DaysUntil(tc.date, now); got != tc.want {
			t.Fatalf("%s: DaysUntil = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if got := DaysOverdue(now.Add(-8*24*time.Hour), now); got != 8 {
		t.Fatalf("8 days ago: got %d", got)
	}
	if got := DaysOverdue(now.Add(-4*24*time.Hour), now); got != 4 {
		t.Fatalf("4 days ago: got %d", got)
	}
	if got := DaysOverdue(now.Add(48*time.Hour), now); got != -2 {
		t.Fatalf("future date: got %d", got)
	}
}
