package prescription

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newPending() *Prescription {
	return &Prescription{
		ID:          uuid.New(),
		PharmacyID:  uuid.New(),
		PatientName: "A. Patient",
		Medication:  "Amoxicillin",
		Dosage:      "500mg three times daily",
		Quantity:    21,
		Prescriber:  "Dr. Reed",
		Status:      StatusPending,
		DateCreated: time.Now(),
	}
}

func TestApplyHappyPath(t *testing.T) {
	p := newPending()
	t1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 5, 2, 16, 30, 0, 0, time.UTC)

	changed, err := p.Apply(StatusReady, t1)
	if err != nil || !changed {
		t.Fatalf("pending→ready: changed=%v err=%v", changed, err)
	}
	if p.Status != StatusReady || p.DateReady == nil || !p.DateReady.Equal(t1) {
		t.Fatalf("ready not stamped: status=%s dateReady=%v", p.Status, p.DateReady)
	}

	changed, err = p.Apply(StatusCollected, t2)
	if err != nil || !changed {
		t.Fatalf("ready→collected: changed=%v err=%v", changed, err)
	}
	if p.DateCollected == nil || !p.DateCollected.Equal(t2) {
		t.Fatalf("collected not stamped: %v", p.DateCollected)
	}
}

func TestApplySkippingReadyIsRejected(t *testing.T) {
	p := newPending()
	if _, err := p.Apply(StatusCollected, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending→collected: want ErrInvalidTransition, got %v", err)
	}
	if p.Status != StatusPending || p.DateCollected != nil {
		t.Fatalf("failed transition mutated entity: %+v", p)
	}
}

func TestApplyBackwardIsRejected(t *testing.T) {
	p := newPending()
	_, _ = p.Apply(StatusReady, time.Now())

	if _, err := p.Apply(StatusPending, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ready→pending: want ErrInvalidTransition, got %v", err)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	p := newPending()
	t1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	if _, err := p.Apply(StatusReady, t1); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	changed, err := p.Apply(StatusReady, t1.Add(time.Hour))
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if changed {
		t.Fatalf("re-applying current status reported a change")
	}
	if !p.DateReady.Equal(t1) {
		t.Fatalf("date_ready re-stamped: %v", p.DateReady)
	}
}

func TestRenewalStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	due := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	cases := []struct {
		name string
		p    Prescription
		want RenewalCategory
	}{
		{"no due date", Prescription{}, RenewalNone},
		{"due in 3 days", Prescription{RenewalDueDate: due(3 * 24 * time.Hour)}, RenewalDueSoon},
		{"due today", Prescription{RenewalDueDate: due(0)}, RenewalDueSoon},
		{"due in 7 days", Prescription{RenewalDueDate: due(7 * 24 * time.Hour)}, RenewalDueSoon},
		{"due in 10 days", Prescription{RenewalDueDate: due(10 * 24 * time.Hour)}, RenewalNone},
		{"2 days overdue", Prescription{RenewalDueDate: due(-2 * 24 * time.Hour)}, RenewalOverdue},
		{"renewed trumps due date", Prescription{RenewalDueDate: due(-2 * 24 * time.Hour), RenewedAt: due(0)}, RenewalCompleted},
	}
	for _, tc := range cases {
		if got := tc.p.RenewalStatus(now); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
