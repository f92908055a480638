package order

import (
	"errors"
	"testing"
	"time"
)

func TestApplyStampsArrivalAndCollection(t *testing.T) {
	o := &CustomerOrder{Status: StatusAwaitingArrival, DateOrdered: time.Now()}
	t1 := time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 4, 12, 15, 0, 0, 0, time.UTC)

	if _, err := o.Apply(StatusReadyForCollection, t1); err != nil {
		t.Fatalf("awaiting→ready: %v", err)
	}
	if o.ArrivedAt == nil || !o.ArrivedAt.Equal(t1) {
		t.Fatalf("arrived_at not stamped: %v", o.ArrivedAt)
	}

	if _, err := o.Apply(StatusCollected, t2); err != nil {
		t.Fatalf("ready→collected: %v", err)
	}
	if o.CollectedAt == nil || !o.CollectedAt.Equal(t2) {
		t.Fatalf("collected_at not stamped: %v", o.CollectedAt)
	}
}

func TestApplyRejectsSkipAndBackward(t *testing.T) {
	o := &CustomerOrder{Status: StatusAwaitingArrival}
	if _, err := o.Apply(StatusCollected, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("awaiting→collected: want ErrInvalidTransition, got %v", err)
	}

	o.Status = StatusCollected
	if _, err := o.Apply(StatusReadyForCollection, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("collected→ready: want ErrInvalidTransition, got %v", err)
	}
}

func TestLegacyOverdueNormalizes(t *testing.T) {
	o := &CustomerOrder{Status: Status("overdue")}
	if o.Status.Normalize() != StatusReadyForCollection {
		t.Fatalf("legacy overdue did not normalize: %s", o.Status.Normalize())
	}

	// A legacy-overdue row can still be collected.
	if _, err := o.Apply(StatusCollected, time.Now()); err != nil {
		t.Fatalf("legacy overdue→collected: %v", err)
	}
}

func TestMarkNotifiedRequiresArrival(t *testing.T) {
	o := &CustomerOrder{Status: StatusAwaitingArrival}
	if err := o.MarkNotified(time.Now()); !errors.Is(err, ErrNotArrived) {
		t.Fatalf("want ErrNotArrived, got %v", err)
	}

	arrived := time.Now()
	o.Status = StatusReadyForCollection
	o.ArrivedAt = &arrived
	if err := o.MarkNotified(time.Now()); err != nil {
		t.Fatalf("mark notified after arrival: %v", err)
	}
	if o.NotifiedAt == nil {
		t.Fatalf("notified_at not stamped")
	}
}

func TestPickupSeverity(t *testing.T) {
	now := time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC)

	arrived := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	cases := []struct {
		name string
		o    CustomerOrder
		want Severity
	}{
		{"8 days waiting", CustomerOrder{Status: StatusReadyForCollection, ArrivedAt: arrived(-8 * 24 * time.Hour)}, SeverityCritical},
		{"exactly 7 days", CustomerOrder{Status: StatusReadyForCollection, ArrivedAt: arrived(-7 * 24 * time.Hour)}, SeverityCritical},
		{"4 days waiting", CustomerOrder{Status: StatusReadyForCollection, ArrivedAt: arrived(-4 * 24 * time.Hour)}, SeverityWarning},
		{"1 day waiting", CustomerOrder{Status: StatusReadyForCollection, ArrivedAt: arrived(-24 * time.Hour)}, SeverityNormal},
		{"not yet arrived", CustomerOrder{Status: StatusAwaitingArrival}, SeverityNone},
		{"already collected", CustomerOrder{Status: StatusCollected, ArrivedAt: arrived(-10 * 24 * time.Hour)}, SeverityNone},
		{"legacy overdue status", CustomerOrder{Status: Status("overdue"), ArrivedAt: arrived(-10 * 24 * time.Hour)}, SeverityCritical},
	}
	for _, tc := range cases {
		if got := tc.o.PickupSeverity(now); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
