package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rxdesk/rxdesk/internal/domain/stock"
	"github.com/rxdesk/rxdesk/internal/service"
	"github.com/rxdesk/rxdesk/pkg/metrics"
)

type StockHandler struct {
	svc       *service.StockService
	collector *metrics.Collector
}

func NewStockHandler(svc *service.StockService, collector *metrics.Collector) *StockHandler {
	return &StockHandler{svc: svc, collector: collector}
}

func (h *StockHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/stock", h.createItem)
	rg.GET("/stock", h.listItems)
	rg.DELETE("/stock/:id", h.deleteItem)
	rg.PUT("/stock/:id/count", h.adjust)
	rg.POST("/stock/:id/reorder", h.queueReorder)
	rg.POST("/stock/:id/deliveries", h.recordDelivery)

	rg.GET("/stock-todos", h.listTodos)
	rg.POST("/stock-todos/:id/ordered", h.markTodoOrdered)
	rg.DELETE("/stock-todos/:id", h.deleteTodo)

	rg.GET("/deliveries", h.recentDeliveries)
}

type createItemRequest struct {
	Name            string `json:"name"`
	CurrentStock    int    `json:"current_stock"`
	MinimumStock    int    `json:"minimum_stock"`
	Location        string `json:"location"`
	Supplier        string `json:"supplier"`
	SupplierContact string `json:"supplier_contact"`
}

func (h *StockHandler) createItem(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req createItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.svc.CreateItem(c.Request.Context(), &stock.StockItem{
		Name:            req.Name,
		CurrentStock:    req.CurrentStock,
		MinimumStock:    req.MinimumStock,
		Location:        req.Location,
		Supplier:        req.Supplier,
		SupplierContact: req.SupplierContact,
	}, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, item)
}

func (h *StockHandler) listItems(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	q := &stock.ListQuery{
		LowOnly:  c.Query("low_only") == "true",
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 50),
	}

	views, total, err := h.svc.ListItems(c.Request.Context(), q, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"items": views, "total_count": total})
}

func (h *StockHandler) deleteItem(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteItem(c.Request.Context(), id, actor, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

type adjustStockRequest struct {
	CurrentStock int `json:"current_stock"`
}

func (h *StockHandler) adjust(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req adjustStockRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.svc.AdjustStock(c.Request.Context(), id, req.CurrentStock, actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, item)
}

type queueReorderRequest struct {
	OrderQuantity int    `json:"order_quantity"`
	Notes         string `json:"notes"`
}

func (h *StockHandler) queueReorder(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req queueReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	todo, err := h.svc.QueueReorder(c.Request.Context(), id, req.OrderQuantity, req.Notes, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, todo)
}

func (h *StockHandler) listTodos(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	todos, err := h.svc.ListTodos(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, todos)
}

func (h *StockHandler) markTodoOrdered(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	todo, err := h.svc.MarkTodoOrdered(c.Request.Context(), id, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, todo)
}

func (h *StockHandler) deleteTodo(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTodo(c.Request.Context(), id, actor, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

type recordDeliveryRequest struct {
	QuantityReceived int    `json:"quantity_received"`
	Notes            string `json:"notes"`
}

func (h *StockHandler) recordDelivery(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req recordDeliveryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.svc.RecordDelivery(c.Request.Context(), id, req.QuantityReceived, req.Notes, actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DeliveriesReceived.Inc()
	respondCreated(c, entry)
}

func (h *StockHandler) recentDeliveries(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	entries, err := h.svc.RecentDeliveries(c.Request.Context(), actor, parseQueryInt(c, "limit", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, entries)
}
