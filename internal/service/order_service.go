package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/order"
)

type OrderService struct {
	repo     order.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewOrderService(repo order.Repository, auditSvc *AuditService, log *zap.Logger) *OrderService {
	return &OrderService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *OrderService) Create(ctx context.Context, cmd *order.CreateCommand, actor domain.Actor, ip string) (*order.CustomerOrder, error) {
	var fields []string
	if cmd.CustomerName == "" {
		fields = append(fields, "customer_name is required")
	}
	if cmd.ItemName == "" {
		fields = append(fields, "item_name is required")
	}
	if !cmd.OrderType.IsValid() {
		fields = append(fields, fmt.Sprintf("unknown order type %q", cmd.OrderType))
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	o := &order.CustomerOrder{
		PharmacyID:    actor.PharmacyID,
		CustomerName:  cmd.CustomerName,
		CustomerPhone: cmd.CustomerPhone,
		ItemName:      cmd.ItemName,
		OrderType:     cmd.OrderType,
		Status:        order.StatusAwaitingArrival,
		DateOrdered:   time.Now(),
		ExpectedDate:  cmd.ExpectedDate,
		Notes:         cmd.Notes,
		CreatedBy:     actor.UserID,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, persistErr("creating customer order", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionCreate, ResourceType: "customer_order", ResourceID: o.ID.String(), IPAddress: ip,
	})

	return o, nil
}

// Transition moves an order along awaiting_arrival→ready_for_collection→
// collected. Arrival stamps arrived_at, collection stamps collected_at.
func (s *OrderService) Transition(ctx context.Context, id uuid.UUID, target order.Status, actor domain.Actor, now time.Time, ip string) (*order.CustomerOrder, error) {
	if !target.IsValid() {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown status %q", target)}}
	}

	o, err := s.repo.GetByID(ctx, actor.PharmacyID, id)
	if err != nil {
		return nil, err
	}

	changed, err := o.Apply(target, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return o, nil
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, persistErr("updating order status", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "customer_order", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"status":%q}`, target),
	})

	return o, nil
}

// MarkNotified records that the customer was contacted. Independent of the
// status machine, but rejected before the item has arrived.
func (s *OrderService) MarkNotified(ctx context.Context, id uuid.UUID, actor domain.Actor, now time.Time, ip string) (*order.CustomerOrder, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanSendNotifications }) {
		return nil, ErrForbidden
	}

	o, err := s.repo.GetByID(ctx, actor.PharmacyID, id)
	if err != nil {
		return nil, err
	}

	if err := o.MarkNotified(now); err != nil {
		return nil, &ValidationError{Fields: []string{err.Error()}}
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, persistErr("marking order notified", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "customer_order", ResourceID: id.String(), IPAddress: ip,
		Changes: `{"action":"customer_notified"}`,
	})

	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (*order.CustomerOrder, error) {
	return s.repo.GetByID(ctx, actor.PharmacyID, id)
}

func (s *OrderService) Delete(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) error {
	if err := s.repo.Delete(ctx, actor.PharmacyID, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionDelete, ResourceType: "customer_order", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}

// OrderView pairs an order with its derived pickup severity for rendering.
type OrderView struct {
	*order.CustomerOrder
	Severity order.Severity `json:"severity"`
}

// List returns orders with the row-highlight severity computed against now.
func (s *OrderService) List(ctx context.Context, q *order.ListQuery, actor domain.Actor, now time.Time) ([]OrderView, int64, error) {
	q.PharmacyID = actor.PharmacyID
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}

	paged, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, persistErr("listing customer orders", err)
	}

	views := make([]OrderView, 0, len(paged.Orders))
	for _, o := range paged.Orders {
		views = append(views, OrderView{CustomerOrder: o, Severity: o.PickupSeverity(now)})
	}
	return views, paged.TotalCount, nil
}
