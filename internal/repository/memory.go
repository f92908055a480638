package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/order"
	"github.com/rxdesk/rxdesk/internal/domain/prescription"
	"github.com/rxdesk/rxdesk/internal/domain/reminder"
	"github.com/rxdesk/rxdesk/internal/domain/stock"
)

// MemoryStore is an in-memory record store used by tests and local
// development. It implements every repository interface the services
// consume.
type MemoryStore struct {
	mu sync.RWMutex

	prescriptions map[uuid.UUID]prescription.Prescription
	orders        map[uuid.UUID]order.CustomerOrder
	items         map[uuid.UUID]stock.StockItem
	todos         map[uuid.UUID]stock.OrderTodo
	deliveries    []stock.DeliveryLog
	reminders     []reminder.Event
	users         map[uuid.UUID]domain.UserProfile
	orgSettings   map[uuid.UUID]domain.OrganizationSettings
	notifSettings map[uuid.UUID]domain.NotificationSettings
	auditLogs     []domain.AuditLog

	// forcedErr, when set, is returned by every mutating operation. Tests
	// use it to simulate a storage write fault.
	forcedErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prescriptions: make(map[uuid.UUID]prescription.Prescription),
		orders:        make(map[uuid.UUID]order.CustomerOrder),
		items:         make(map[uuid.UUID]stock.StockItem),
		todos:         make(map[uuid.UUID]stock.OrderTodo),
		users:         make(map[uuid.UUID]domain.UserProfile),
		orgSettings:   make(map[uuid.UUID]domain.OrganizationSettings),
		notifSettings: make(map[uuid.UUID]domain.NotificationSettings),
	}
}

// FailWith forces every subsequent write to return err; pass nil to
// restore normal behavior.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedErr = err
}

func (m *MemoryStore) failed() error {
	return m.forcedErr
}

var (
	_ prescription.Repository = (*MemoryStore)(nil)
	_ order.Repository        = (*memoryOrders)(nil)
	_ stock.Repository        = (*MemoryStore)(nil)
	_ reminder.Repository     = (*MemoryStore)(nil)
)

// prescription.Repository

func (m *MemoryStore) Create(ctx context.Context, p *prescription.Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.prescriptions[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*prescription.Prescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prescriptions[id]
	if !ok || p.PharmacyID != pharmacyID {
		return nil, prescription.ErrPrescriptionNotFound
	}
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *prescription.Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if _, ok := m.prescriptions[p.ID]; !ok {
		return prescription.ErrPrescriptionNotFound
	}
	m.prescriptions[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	p, ok := m.prescriptions[id]
	if !ok || p.PharmacyID != pharmacyID {
		return prescription.ErrPrescriptionNotFound
	}
	delete(m.prescriptions, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, q *prescription.ListQuery) (*prescription.PagedPrescriptions, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*prescription.Prescription
	for _, p := range m.prescriptions {
		if p.PharmacyID != q.PharmacyID {
			continue
		}
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		if q.Patient != "" && !strings.Contains(strings.ToLower(p.PatientName), strings.ToLower(q.Patient)) {
			continue
		}
		cp := p
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].DateCreated.After(rows[j].DateCreated)
	})

	return &prescription.PagedPrescriptions{
		Prescriptions: rows,
		TotalCount:    int64(len(rows)),
		Page:          1,
		PageSize:      q.PageSize,
		TotalPages:    1,
	}, nil
}

func (m *MemoryStore) ListRenewals(ctx context.Context, pharmacyID uuid.UUID) ([]*prescription.Prescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*prescription.Prescription
	for _, p := range m.prescriptions {
		if p.PharmacyID != pharmacyID || p.RenewalDueDate == nil {
			continue
		}
		cp := p
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].RenewalDueDate.Before(*rows[j].RenewalDueDate)
	})
	return rows, nil
}

// order.Repository uses distinct method names via an embedded view to avoid
// clashing with the prescription methods, so MemoryStore exposes it through
// Orders().
type memoryOrders struct {
	store *MemoryStore
}

func (m *MemoryStore) Orders() order.Repository {
	return &memoryOrders{store: m}
}

func (o *memoryOrders) Create(ctx context.Context, ord *order.CustomerOrder) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	if err := o.store.failed(); err != nil {
		return err
	}
	if ord.ID == uuid.Nil {
		ord.ID = uuid.New()
	}
	o.store.orders[ord.ID] = *ord
	return nil
}

func (o *memoryOrders) GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*order.CustomerOrder, error) {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()
	ord, ok := o.store.orders[id]
	if !ok || ord.PharmacyID != pharmacyID {
		return nil, order.ErrOrderNotFound
	}
	cp := ord
	cp.Status = cp.Status.Normalize()
	return &cp, nil
}

func (o *memoryOrders) Update(ctx context.Context, ord *order.CustomerOrder) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	if err := o.store.failed(); err != nil {
		return err
	}
	if _, ok := o.store.orders[ord.ID]; !ok {
		return order.ErrOrderNotFound
	}
	o.store.orders[ord.ID] = *ord
	return nil
}

func (o *memoryOrders) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	if err := o.store.failed(); err != nil {
		return err
	}
	ord, ok := o.store.orders[id]
	if !ok || ord.PharmacyID != pharmacyID {
		return order.ErrOrderNotFound
	}
	delete(o.store.orders, id)
	return nil
}

func (o *memoryOrders) List(ctx context.Context, q *order.ListQuery) (*order.PagedOrders, error) {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	var rows []*order.CustomerOrder
	for _, ord := range o.store.orders {
		if ord.PharmacyID != q.PharmacyID {
			continue
		}
		if q.Status != nil && ord.Status.Normalize() != *q.Status {
			continue
		}
		if q.OrderType != nil && ord.OrderType != *q.OrderType {
			continue
		}
		cp := ord
		cp.Status = cp.Status.Normalize()
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].DateOrdered.After(rows[j].DateOrdered)
	})

	return &order.PagedOrders{
		Orders:     rows,
		TotalCount: int64(len(rows)),
		Page:       1,
		PageSize:   q.PageSize,
		TotalPages: 1,
	}, nil
}

// stock.Repository

func (m *MemoryStore) CreateItem(ctx context.Context, item *stock.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	m.items[item.ID] = *item
	return nil
}

func (m *MemoryStore) GetItemByID(ctx context.Context, pharmacyID, id uuid.UUID) (*stock.StockItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok || item.PharmacyID != pharmacyID {
		return nil, stock.ErrItemNotFound
	}
	cp := item
	return &cp, nil
}

func (m *MemoryStore) UpdateItem(ctx context.Context, item *stock.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if _, ok := m.items[item.ID]; !ok {
		return stock.ErrItemNotFound
	}
	m.items[item.ID] = *item
	return nil
}

func (m *MemoryStore) DeleteItem(ctx context.Context, pharmacyID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	item, ok := m.items[id]
	if !ok || item.PharmacyID != pharmacyID {
		return stock.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryStore) ListItems(ctx context.Context, q *stock.ListQuery) (*stock.PagedItems, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*stock.StockItem
	for _, item := range m.items {
		if item.PharmacyID != q.PharmacyID {
			continue
		}
		if q.LowOnly && !item.IsLowStock() {
			continue
		}
		cp := item
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})

	return &stock.PagedItems{
		Items:      rows,
		TotalCount: int64(len(rows)),
		Page:       1,
		PageSize:   q.PageSize,
		TotalPages: 1,
	}, nil
}

func (m *MemoryStore) CreateTodo(ctx context.Context, todo *stock.OrderTodo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}
	m.todos[todo.ID] = *todo
	return nil
}

func (m *MemoryStore) GetTodoByID(ctx context.Context, pharmacyID, id uuid.UUID) (*stock.OrderTodo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	todo, ok := m.todos[id]
	if !ok || todo.PharmacyID != pharmacyID {
		return nil, stock.ErrTodoNotFound
	}
	cp := todo
	return &cp, nil
}

func (m *MemoryStore) UpdateTodo(ctx context.Context, todo *stock.OrderTodo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if _, ok := m.todos[todo.ID]; !ok {
		return stock.ErrTodoNotFound
	}
	m.todos[todo.ID] = *todo
	return nil
}

func (m *MemoryStore) DeleteTodo(ctx context.Context, pharmacyID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	todo, ok := m.todos[id]
	if !ok || todo.PharmacyID != pharmacyID {
		return stock.ErrTodoNotFound
	}
	delete(m.todos, id)
	return nil
}

func (m *MemoryStore) ListTodos(ctx context.Context, pharmacyID uuid.UUID) ([]*stock.OrderTodo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*stock.OrderTodo
	for _, todo := range m.todos {
		if todo.PharmacyID != pharmacyID {
			continue
		}
		cp := todo
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

func (m *MemoryStore) AppendDelivery(ctx context.Context, entry *stock.DeliveryLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.deliveries = append(m.deliveries, *entry)
	return nil
}

func (m *MemoryStore) ListDeliveries(ctx context.Context, pharmacyID uuid.UUID, limit int) ([]*stock.DeliveryLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*stock.DeliveryLog
	for i := len(m.deliveries) - 1; i >= 0 && len(rows) < limit; i-- {
		if m.deliveries[i].PharmacyID != pharmacyID {
			continue
		}
		cp := m.deliveries[i]
		rows = append(rows, &cp)
	}
	return rows, nil
}

// reminder.Repository

func (m *MemoryStore) Append(ctx context.Context, e *reminder.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.reminders = append(m.reminders, *e)
	return nil
}

func (m *MemoryStore) ListByPrescription(ctx context.Context, pharmacyID, prescriptionID uuid.UUID) ([]*reminder.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*reminder.Event
	for i := len(m.reminders) - 1; i >= 0; i-- {
		e := m.reminders[i]
		if e.PharmacyID != pharmacyID || e.PrescriptionID != prescriptionID {
			continue
		}
		cp := e
		rows = append(rows, &cp)
	}
	return rows, nil
}
