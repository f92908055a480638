package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rxdesk/rxdesk/internal/domain/order"
	"github.com/rxdesk/rxdesk/internal/domain/prescription"
	"github.com/rxdesk/rxdesk/internal/domain/stock"
	"github.com/rxdesk/rxdesk/internal/service"
)

// DashboardHandler serves the landing-screen counters.
type DashboardHandler struct {
	prescriptions *service.PrescriptionService
	orders        *service.OrderService
	stock         *service.StockService
}

func NewDashboardHandler(prescriptions *service.PrescriptionService, orders *service.OrderService, stockSvc *service.StockService) *DashboardHandler {
	return &DashboardHandler{prescriptions: prescriptions, orders: orders, stock: stockSvc}
}

func (h *DashboardHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.summary)
}

type dashboardSummary struct {
	PendingPrescriptions int64 `json:"pending_prescriptions"`
	OrdersReady          int64 `json:"orders_ready_for_collection"`
	LowStockItems        int64 `json:"low_stock_items"`
}

func (h *DashboardHandler) summary(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Only the totals matter here; page size 1 keeps the row payloads out.
	pending := prescription.StatusPending
	paged, err := h.prescriptions.List(ctx, &prescription.ListQuery{Status: &pending, PageSize: 1}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ready := order.StatusReadyForCollection
	_, readyCount, err := h.orders.List(ctx, &order.ListQuery{Status: &ready, PageSize: 1}, actor, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_, lowCount, err := h.stock.ListItems(ctx, &stock.ListQuery{LowOnly: true, PageSize: 1}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, dashboardSummary{
		PendingPrescriptions: paged.TotalCount,
		OrdersReady:          readyCount,
		LowStockItems:        lowCount,
	})
}
