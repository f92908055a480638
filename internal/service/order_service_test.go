package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/order"
	"github.com/rxdesk/rxdesk/internal/repository"
)

func newOrderService(store *repository.MemoryStore) *OrderService {
	audit := NewAuditService(store.Audit(), zap.NewNop())
	return NewOrderService(store.Orders(), audit, zap.NewNop())
}

func mustCreateOrder(t *testing.T, svc *OrderService, actor domain.Actor) *order.CustomerOrder {
	t.Helper()
	o, err := svc.Create(context.Background(), &order.CreateCommand{
		CustomerName: "Tom Bell",
		ItemName:     "Compression stockings, size L",
		OrderType:    order.TypeSpecialOrder,
	}, actor, "127.0.0.1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return o
}

func TestOrderLifecycle(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newOrderService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	o := mustCreateOrder(t, svc, actor)
	if o.Status != order.StatusAwaitingArrival {
		t.Fatalf("new order status = %q, want awaiting_arrival", o.Status)
	}

	t1 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	o, err := svc.Transition(ctx, o.ID, order.StatusReadyForCollection, actor, t1, "127.0.0.1")
	if err != nil {
		t.Fatalf("arrival transition: %v", err)
	}
	if o.ArrivedAt == nil || !o.ArrivedAt.Equal(t1) {
		t.Fatalf("arrived_at = %v, want %v", o.ArrivedAt, t1)
	}

	t2 := t1.Add(48 * time.Hour)
	o, err = svc.Transition(ctx, o.ID, order.StatusCollected, actor, t2, "127.0.0.1")
	if err != nil {
		t.Fatalf("collection transition: %v", err)
	}
	if o.CollectedAt == nil || !o.CollectedAt.Equal(t2) {
		t.Fatalf("collected_at = %v, want %v", o.CollectedAt, t2)
	}

	if _, err := svc.Transition(ctx, o.ID, order.StatusAwaitingArrival, actor, t2, "127.0.0.1"); !errors.Is(err, order.ErrInvalidTransition) {
		t.Fatalf("backward transition err = %v, want ErrInvalidTransition", err)
	}
}

func TestOrderSkipAheadRejected(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newOrderService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	o := mustCreateOrder(t, svc, actor)
	if _, err := svc.Transition(ctx, o.ID, order.StatusCollected, actor, time.Now(), "127.0.0.1"); !errors.Is(err, order.ErrInvalidTransition) {
		t.Fatalf("awaiting→collected err = %v, want ErrInvalidTransition", err)
	}

	stored, err := svc.Get(ctx, o.ID, actor)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != order.StatusAwaitingArrival || stored.CollectedAt != nil {
		t.Fatalf("rejected transition mutated record: status=%q collected=%v", stored.Status, stored.CollectedAt)
	}
}

func TestOrderLegacyOverdueStatus(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newOrderService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	// Rows written by older versions carry a stored "overdue" status.
	arrived := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	legacy := &order.CustomerOrder{
		PharmacyID:   actor.PharmacyID,
		CustomerName: "Ruth Osei",
		ItemName:     "Blood glucose strips",
		OrderType:    order.TypeBackOrder,
		Status:       order.Status("overdue"),
		DateOrdered:  arrived.Add(-96 * time.Hour),
		ArrivedAt:    &arrived,
		CreatedBy:    actor.UserID,
	}
	if err := store.Orders().Create(ctx, legacy); err != nil {
		t.Fatalf("seed legacy order: %v", err)
	}

	got, err := svc.Get(ctx, legacy.ID, actor)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != order.StatusReadyForCollection {
		t.Fatalf("legacy status normalized to %q, want ready_for_collection", got.Status)
	}

	// The normalized row still collects normally.
	collected, err := svc.Transition(ctx, legacy.ID, order.StatusCollected, actor, arrived.Add(10*24*time.Hour), "127.0.0.1")
	if err != nil {
		t.Fatalf("collect legacy order: %v", err)
	}
	if collected.Status != order.StatusCollected {
		t.Fatalf("status = %q, want collected", collected.Status)
	}
}

func TestMarkNotifiedRequiresArrival(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newOrderService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	o := mustCreateOrder(t, svc, actor)

	var verr *ValidationError
	if _, err := svc.MarkNotified(ctx, o.ID, actor, time.Now(), "127.0.0.1"); !errors.As(err, &verr) {
		t.Fatalf("notify before arrival err = %v, want *ValidationError", err)
	}

	t1 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	if _, err := svc.Transition(ctx, o.ID, order.StatusReadyForCollection, actor, t1, "127.0.0.1"); err != nil {
		t.Fatalf("arrival transition: %v", err)
	}

	notifiedAt := t1.Add(time.Hour)
	got, err := svc.MarkNotified(ctx, o.ID, actor, notifiedAt, "127.0.0.1")
	if err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}
	if got.NotifiedAt == nil || !got.NotifiedAt.Equal(notifiedAt) {
		t.Fatalf("notified_at = %v, want %v", got.NotifiedAt, notifiedAt)
	}
	if got.Status != order.StatusReadyForCollection {
		t.Fatalf("notify changed status to %q", got.Status)
	}
}

func TestMarkNotifiedForbidden(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newOrderService(store)
	tech := newTestActor(domain.RoleTechnician)

	if _, err := svc.MarkNotified(context.Background(), uuid.New(), tech, time.Now(), "127.0.0.1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestOrderListSeverity(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newOrderService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	stale := mustCreateOrder(t, svc, actor)
	if _, err := svc.Transition(ctx, stale.ID, order.StatusReadyForCollection, actor, now.Add(-8*24*time.Hour), "127.0.0.1"); err != nil {
		t.Fatalf("arrival transition: %v", err)
	}
	waiting := mustCreateOrder(t, svc, actor)

	views, total, err := svc.List(ctx, &order.ListQuery{}, actor, now)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}

	bySeverity := make(map[uuid.UUID]order.Severity, len(views))
	for _, v := range views {
		bySeverity[v.ID] = v.Severity
	}
	if bySeverity[stale.ID] != order.SeverityCritical {
		t.Fatalf("stale order severity = %q, want critical", bySeverity[stale.ID])
	}
	if bySeverity[waiting.ID] != order.SeverityNone {
		t.Fatalf("waiting order severity = %q, want none", bySeverity[waiting.ID])
	}
}

func TestOrderCreateValidation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newOrderService(store)
	actor := newTestActor(domain.RolePharmacist)

	_, err := svc.Create(context.Background(), &order.CreateCommand{OrderType: order.OrderType("wishlist")}, actor, "127.0.0.1")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("got %d validation messages, want 3: %v", len(verr.Fields), verr.Fields)
	}
}
