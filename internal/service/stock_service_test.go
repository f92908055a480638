package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/stock"
	"github.com/rxdesk/rxdesk/internal/repository"
)

func newStockService(store *repository.MemoryStore) *StockService {
	audit := NewAuditService(store.Audit(), zap.NewNop())
	return NewStockService(store, audit, zap.NewNop())
}

func mustCreateItem(t *testing.T, svc *StockService, actor domain.Actor, item *stock.StockItem) *stock.StockItem {
	t.Helper()
	created, err := svc.CreateItem(context.Background(), item, actor, "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return created
}

func TestCreateItemForbidden(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	tech := newTestActor(domain.RoleTechnician)

	_, err := svc.CreateItem(context.Background(), &stock.StockItem{Name: "Gauze"}, tech, "127.0.0.1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestAdjustStock(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	item := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Insulin pens", CurrentStock: 40, MinimumStock: 10})

	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	got, err := svc.AdjustStock(ctx, item.ID, 7, actor, now, "127.0.0.1")
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if got.CurrentStock != 7 {
		t.Fatalf("current_stock = %d, want 7", got.CurrentStock)
	}
	if !got.LastUpdated.Equal(now) {
		t.Fatalf("last_updated = %v, want %v", got.LastUpdated, now)
	}
	if got.UpdatedBy == nil || *got.UpdatedBy != actor.UserID {
		t.Fatalf("updated_by = %v, want %v", got.UpdatedBy, actor.UserID)
	}
}

func TestAdjustStockRejectsNegative(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	item := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Bandages", CurrentStock: 12, MinimumStock: 5})

	var verr *ValidationError
	if _, err := svc.AdjustStock(ctx, item.ID, -1, actor, time.Now(), "127.0.0.1"); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}

	stored, err := store.GetItemByID(ctx, actor.PharmacyID, item.ID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if stored.CurrentStock != 12 {
		t.Fatalf("rejected adjustment mutated stock: %d", stored.CurrentStock)
	}
}

func TestListItemsTiers(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	critical := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Epinephrine", CurrentStock: 2, MinimumStock: 10})
	low := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Saline", CurrentStock: 5, MinimumStock: 10})
	good := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Cotton swabs", CurrentStock: 100, MinimumStock: 10})

	views, total, err := svc.ListItems(ctx, &stock.ListQuery{}, actor)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}

	tiers := make(map[string]stock.Tier, len(views))
	for _, v := range views {
		tiers[v.Name] = v.Tier
	}
	if tiers[critical.Name] != stock.TierCritical {
		t.Fatalf("tier for %s = %q, want critical", critical.Name, tiers[critical.Name])
	}
	if tiers[low.Name] != stock.TierLow {
		t.Fatalf("tier for %s = %q, want low", low.Name, tiers[low.Name])
	}
	if tiers[good.Name] != stock.TierGood {
		t.Fatalf("tier for %s = %q, want good", good.Name, tiers[good.Name])
	}
}

func TestQueueReorderCapturesSnapshot(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	item := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Test strips", CurrentStock: 3, MinimumStock: 15})

	todo, err := svc.QueueReorder(ctx, item.ID, 50, "", actor, "127.0.0.1")
	if err != nil {
		t.Fatalf("QueueReorder: %v", err)
	}
	if todo.ItemName != "Test strips" || todo.CurrentStock != 3 || todo.OrderQuantity != 50 {
		t.Fatalf("todo = %+v", todo)
	}
	if todo.Supplier != "Unknown Supplier" {
		t.Fatalf("supplier fallback = %q", todo.Supplier)
	}
	if todo.Notes != "Reorder for Test strips" {
		t.Fatalf("default notes = %q", todo.Notes)
	}
	if todo.Status != stock.TodoPending {
		t.Fatalf("status = %q, want pending", todo.Status)
	}
}

func TestMarkTodoOrderedOnlyOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	item := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Syringes", CurrentStock: 1, MinimumStock: 20})
	todo, err := svc.QueueReorder(ctx, item.ID, 100, "", actor, "127.0.0.1")
	if err != nil {
		t.Fatalf("QueueReorder: %v", err)
	}

	got, err := svc.MarkTodoOrdered(ctx, todo.ID, actor, "127.0.0.1")
	if err != nil {
		t.Fatalf("MarkTodoOrdered: %v", err)
	}
	if got.Status != stock.TodoOrdered {
		t.Fatalf("status = %q, want ordered", got.Status)
	}

	if _, err := svc.MarkTodoOrdered(ctx, todo.ID, actor, "127.0.0.1"); !errors.Is(err, stock.ErrTodoNotPending) {
		t.Fatalf("second mark err = %v, want ErrTodoNotPending", err)
	}
}

func TestRecordDelivery(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()
	now := time.Date(2026, 3, 11, 8, 30, 0, 0, time.UTC)

	item := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Thermometers", CurrentStock: 4, MinimumStock: 10, Supplier: "MedSupply Co"})

	entry, err := svc.RecordDelivery(ctx, item.ID, 25, "partial shipment", actor, now, "127.0.0.1")
	if err != nil {
		t.Fatalf("RecordDelivery: %v", err)
	}
	if entry.ItemName != "Thermometers" || entry.QuantityReceived != 25 || entry.Supplier != "MedSupply Co" {
		t.Fatalf("delivery entry = %+v", entry)
	}

	stored, err := store.GetItemByID(ctx, actor.PharmacyID, item.ID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if stored.CurrentStock != 29 {
		t.Fatalf("stock after delivery = %d, want 29", stored.CurrentStock)
	}

	recent, err := svc.RecentDeliveries(ctx, actor, 10)
	if err != nil {
		t.Fatalf("RecentDeliveries: %v", err)
	}
	if len(recent) != 1 || !recent[0].ReceivedAt.Equal(now) {
		t.Fatalf("recent deliveries = %v", recent)
	}
}

// countWriteFaultStore fails only the item update so the write ordering
// inside RecordDelivery is observable.
type countWriteFaultStore struct {
	*repository.MemoryStore
	err error
}

func (s *countWriteFaultStore) UpdateItem(ctx context.Context, item *stock.StockItem) error {
	return s.err
}

func TestRecordDeliveryCountWriteFault(t *testing.T) {
	store := repository.NewMemoryStore()
	audit := NewAuditService(store.Audit(), zap.NewNop())
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	item := mustCreateItem(t, NewStockService(store, audit, zap.NewNop()), actor,
		&stock.StockItem{Name: "Lancets", CurrentStock: 6, MinimumStock: 10})

	boom := errors.New("connection reset")
	svc := NewStockService(&countWriteFaultStore{MemoryStore: store, err: boom}, audit, zap.NewNop())

	_, err := svc.RecordDelivery(ctx, item.ID, 30, "", actor, time.Now(), "127.0.0.1")
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *PersistenceError", err)
	}

	// The count update comes before the log append, so a count fault leaves
	// no delivery row behind.
	entries, err := store.ListDeliveries(ctx, actor.PharmacyID, 10)
	if err != nil {
		t.Fatalf("ListDeliveries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d delivery rows after count fault, want 0", len(entries))
	}
	stored, err := store.GetItemByID(ctx, actor.PharmacyID, item.ID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if stored.CurrentStock != 6 {
		t.Fatalf("stock after failed delivery = %d, want 6", stored.CurrentStock)
	}
}

func TestRecordDeliveryPersistenceError(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newStockService(store)
	actor := newTestActor(domain.RolePharmacist)
	ctx := context.Background()

	item := mustCreateItem(t, svc, actor, &stock.StockItem{Name: "Masks", CurrentStock: 10, MinimumStock: 5})

	boom := errors.New("disk full")
	store.FailWith(boom)
	_, err := svc.RecordDelivery(ctx, item.ID, 5, "", actor, time.Now(), "127.0.0.1")
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *PersistenceError", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("PersistenceError does not wrap the store fault: %v", err)
	}
}
