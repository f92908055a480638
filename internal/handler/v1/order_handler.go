package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rxdesk/rxdesk/internal/domain/order"
	"github.com/rxdesk/rxdesk/internal/service"
	"github.com/rxdesk/rxdesk/pkg/metrics"
)

type OrderHandler struct {
	svc       *service.OrderService
	collector *metrics.Collector
}

func NewOrderHandler(svc *service.OrderService, collector *metrics.Collector) *OrderHandler {
	return &OrderHandler{svc: svc, collector: collector}
}

func (h *OrderHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/orders", h.create)
	rg.GET("/orders", h.list)
	rg.GET("/orders/:id", h.get)
	rg.DELETE("/orders/:id", h.delete)
	rg.POST("/orders/:id/status", h.transition)
	rg.POST("/orders/:id/notify", h.markNotified)
}

type createOrderRequest struct {
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	ItemName      string     `json:"item_name"`
	OrderType     string     `json:"order_type"`
	ExpectedDate  *time.Time `json:"expected_date"`
	Notes         string     `json:"notes"`
}

func (h *OrderHandler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.svc.Create(c.Request.Context(), &order.CreateCommand{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ItemName:      req.ItemName,
		OrderType:     order.OrderType(req.OrderType),
		ExpectedDate:  req.ExpectedDate,
		Notes:         req.Notes,
	}, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, o)
}

func (h *OrderHandler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	q := &order.ListQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := order.Status(raw)
		q.Status = &status
	}
	if raw := c.Query("order_type"); raw != "" {
		otype := order.OrderType(raw)
		q.OrderType = &otype
	}

	views, total, err := h.svc.List(c.Request.Context(), q, actor, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"orders": views, "total_count": total})
}

func (h *OrderHandler) get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	o, err := h.svc.Get(c.Request.Context(), id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, o)
}

func (h *OrderHandler) delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, actor, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

func (h *OrderHandler) transition(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req transitionRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.svc.Transition(c.Request.Context(), id, order.Status(req.Status), actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.OrderTransitions.WithLabelValues(req.Status).Inc()
	respondOK(c, o)
}

func (h *OrderHandler) markNotified(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	o, err := h.svc.MarkNotified(c.Request.Context(), id, actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, o)
}
