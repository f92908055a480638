package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/stock"
)

type StockService struct {
	repo     stock.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewStockService(repo stock.Repository, auditSvc *AuditService, log *zap.Logger) *StockService {
	return &StockService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *StockService) CreateItem(ctx context.Context, item *stock.StockItem, actor domain.Actor, ip string) (*stock.StockItem, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanManageInventory }) {
		return nil, ErrForbidden
	}

	var fields []string
	if item.Name == "" {
		fields = append(fields, "name is required")
	}
	if item.CurrentStock < 0 {
		fields = append(fields, "current_stock cannot be negative")
	}
	if item.MinimumStock < 0 {
		fields = append(fields, "minimum_stock cannot be negative")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	item.PharmacyID = actor.PharmacyID
	item.LastUpdated = time.Now()
	item.UpdatedBy = &actor.UserID

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, persistErr("creating stock item", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionCreate, ResourceType: "stock_item", ResourceID: item.ID.String(), IPAddress: ip,
	})

	return item, nil
}

// AdjustStock sets the counted level for an item and stamps last_updated.
func (s *StockService) AdjustStock(ctx context.Context, id uuid.UUID, newCount int, actor domain.Actor, now time.Time, ip string) (*stock.StockItem, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanManageInventory }) {
		return nil, ErrForbidden
	}
	if newCount < 0 {
		return nil, &ValidationError{Fields: []string{"stock count cannot be negative"}}
	}

	item, err := s.repo.GetItemByID(ctx, actor.PharmacyID, id)
	if err != nil {
		return nil, err
	}

	item.CurrentStock = newCount
	item.LastUpdated = now
	item.UpdatedBy = &actor.UserID

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, persistErr("adjusting stock", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "stock_item", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"current_stock":%d}`, newCount),
	})

	return item, nil
}

// StockItemView pairs an item with its derived level tier for rendering.
type StockItemView struct {
	*stock.StockItem
	Tier       stock.Tier `json:"tier"`
	IsLowStock bool       `json:"is_low_stock"`
}

func (s *StockService) ListItems(ctx context.Context, q *stock.ListQuery, actor domain.Actor) ([]StockItemView, int64, error) {
	q.PharmacyID = actor.PharmacyID
	if q.PageSize <= 0 || q.PageSize > 200 {
		q.PageSize = 50
	}

	paged, err := s.repo.ListItems(ctx, q)
	if err != nil {
		return nil, 0, persistErr("listing stock items", err)
	}

	views := make([]StockItemView, 0, len(paged.Items))
	for _, item := range paged.Items {
		views = append(views, StockItemView{
			StockItem:  item,
			Tier:       item.StockTier(),
			IsLowStock: item.IsLowStock(),
		})
	}
	return views, paged.TotalCount, nil
}

func (s *StockService) DeleteItem(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) error {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanManageInventory }) {
		return ErrForbidden
	}

	if err := s.repo.DeleteItem(ctx, actor.PharmacyID, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionDelete, ResourceType: "stock_item", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}

// QueueReorder adds a reorder task for an item to the to-do list, capturing
// the stock level at the time of queueing.
func (s *StockService) QueueReorder(ctx context.Context, itemID uuid.UUID, orderQuantity int, notes string, actor domain.Actor, ip string) (*stock.OrderTodo, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanManageInventory }) {
		return nil, ErrForbidden
	}
	if orderQuantity <= 0 {
		return nil, &ValidationError{Fields: []string{"order_quantity must be a positive integer"}}
	}

	item, err := s.repo.GetItemByID(ctx, actor.PharmacyID, itemID)
	if err != nil {
		return nil, err
	}

	supplier := item.Supplier
	if supplier == "" {
		supplier = "Unknown Supplier"
	}
	if notes == "" {
		notes = fmt.Sprintf("Reorder for %s", item.Name)
	}

	todo := &stock.OrderTodo{
		PharmacyID:      actor.PharmacyID,
		ItemName:        item.Name,
		CurrentStock:    item.CurrentStock,
		OrderQuantity:   orderQuantity,
		Supplier:        supplier,
		SupplierContact: item.SupplierContact,
		Notes:           notes,
		Status:          stock.TodoPending,
		CreatedBy:       actor.UserID,
	}

	if err := s.repo.CreateTodo(ctx, todo); err != nil {
		return nil, persistErr("queueing reorder", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionCreate, ResourceType: "order_todo", ResourceID: todo.ID.String(), IPAddress: ip,
	})

	return todo, nil
}

func (s *StockService) MarkTodoOrdered(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) (*stock.OrderTodo, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanManageInventory }) {
		return nil, ErrForbidden
	}

	todo, err := s.repo.GetTodoByID(ctx, actor.PharmacyID, id)
	if err != nil {
		return nil, err
	}
	if todo.Status != stock.TodoPending {
		return nil, stock.ErrTodoNotPending
	}

	todo.Status = stock.TodoOrdered
	if err := s.repo.UpdateTodo(ctx, todo); err != nil {
		return nil, persistErr("marking reorder task ordered", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "order_todo", ResourceID: id.String(), IPAddress: ip,
		Changes: `{"status":"ordered"}`,
	})

	return todo, nil
}

func (s *StockService) DeleteTodo(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) error {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanManageInventory }) {
		return ErrForbidden
	}

	if err := s.repo.DeleteTodo(ctx, actor.PharmacyID, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionDelete, ResourceType: "order_todo", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}

func (s *StockService) ListTodos(ctx context.Context, actor domain.Actor) ([]*stock.OrderTodo, error) {
	return s.repo.ListTodos(ctx, actor.PharmacyID)
}

// RecordDelivery adds the received quantity to the item's count, then appends
// a delivery-log entry. There is no rollback: the count update lands first, so
// a fault while appending leaves the count correct and the log short one row,
// never a logged delivery that was not counted.
func (s *StockService) RecordDelivery(ctx context.Context, itemID uuid.UUID, quantity int, notes string, actor domain.Actor, now time.Time, ip string) (*stock.DeliveryLog, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanManageInventory }) {
		return nil, ErrForbidden
	}
	if quantity <= 0 {
		return nil, &ValidationError{Fields: []string{"quantity_received must be a positive integer"}}
	}

	item, err := s.repo.GetItemByID(ctx, actor.PharmacyID, itemID)
	if err != nil {
		return nil, err
	}

	item.CurrentStock += quantity
	item.LastUpdated = now
	item.UpdatedBy = &actor.UserID
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, persistErr("updating stock for delivery", err)
	}

	entry := &stock.DeliveryLog{
		PharmacyID:       actor.PharmacyID,
		ItemName:         item.Name,
		QuantityReceived: quantity,
		Supplier:         item.Supplier,
		ReceivedAt:       now,
		ReceivedBy:       actor.UserID,
		Notes:            notes,
	}

	if err := s.repo.AppendDelivery(ctx, entry); err != nil {
		return nil, persistErr("appending delivery log", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionCreate, ResourceType: "delivery_log", ResourceID: entry.ID.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"quantity_received":%d}`, quantity),
	})

	return entry, nil
}

func (s *StockService) RecentDeliveries(ctx context.Context, actor domain.Actor, limit int) ([]*stock.DeliveryLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListDeliveries(ctx, actor.PharmacyID, limit)
}
