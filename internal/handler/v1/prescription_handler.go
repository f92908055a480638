package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rxdesk/rxdesk/internal/domain/prescription"
	"github.com/rxdesk/rxdesk/internal/domain/reminder"
	"github.com/rxdesk/rxdesk/internal/service"
	"github.com/rxdesk/rxdesk/pkg/metrics"
)

type PrescriptionHandler struct {
	svc       *service.PrescriptionService
	collector *metrics.Collector
}

func NewPrescriptionHandler(svc *service.PrescriptionService, collector *metrics.Collector) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc, collector: collector}
}

func (h *PrescriptionHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/prescriptions", h.create)
	rg.GET("/prescriptions", h.list)
	rg.GET("/prescriptions/renewals", h.renewals)
	rg.POST("/prescriptions/reminders/bulk", h.bulkReminders)
	rg.GET("/prescriptions/:id", h.get)
	rg.DELETE("/prescriptions/:id", h.delete)
	rg.POST("/prescriptions/:id/status", h.transition)
	rg.POST("/prescriptions/:id/renew", h.renew)
	rg.POST("/prescriptions/:id/reminders", h.recordReminder)
	rg.GET("/prescriptions/:id/reminders", h.reminderHistory)
}

type createPrescriptionRequest struct {
	PatientName         string     `json:"patient_name"`
	PatientDOB          *time.Time `json:"patient_dob"`
	PatientPhone        string     `json:"patient_phone"`
	PatientAddress      string     `json:"patient_address"`
	Medication          string     `json:"medication"`
	Dosage              string     `json:"dosage"`
	Quantity            int        `json:"quantity"`
	Prescriber          string     `json:"prescriber"`
	RenewalDueDate      *time.Time `json:"renewal_due_date"`
	InsuranceInfo       string     `json:"insurance_info"`
	SpecialInstructions string     `json:"special_instructions"`
}

func (h *PrescriptionHandler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), &prescription.CreateCommand{
		PatientName:         req.PatientName,
		PatientDOB:          req.PatientDOB,
		PatientPhone:        req.PatientPhone,
		PatientAddress:      req.PatientAddress,
		Medication:          req.Medication,
		Dosage:              req.Dosage,
		Quantity:            req.Quantity,
		Prescriber:          req.Prescriber,
		RenewalDueDate:      req.RenewalDueDate,
		InsuranceInfo:       req.InsuranceInfo,
		SpecialInstructions: req.SpecialInstructions,
	}, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, p)
}

func (h *PrescriptionHandler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	q := &prescription.ListQuery{
		Patient:  c.Query("patient"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := prescription.Status(raw)
		q.Status = &status
	}

	paged, err := h.svc.List(c.Request.Context(), q, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, paged)
}

func (h *PrescriptionHandler) get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, p)
}

func (h *PrescriptionHandler) delete(c *gin.Context) {
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

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *PrescriptionHandler) transition(c *gin.Context) {
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

	p, err := h.svc.Transition(c.Request.Context(), id, prescription.Status(req.Status), actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.PrescriptionTransitions.WithLabelValues(req.Status).Inc()
	respondOK(c, p)
}

func (h *PrescriptionHandler) renew(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Renew(c.Request.Context(), id, actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, p)
}

func (h *PrescriptionHandler) renewals(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	buckets, err := h.svc.Renewals(c.Request.Context(), actor, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"due_soon":  buckets.DueSoon,
		"overdue":   buckets.Overdue,
		"completed": buckets.Completed,
	})
}

type recordReminderRequest struct {
	Channel string `json:"channel"`
	Type    string `json:"type"`
	Notes   string `json:"notes"`
}

func (h *PrescriptionHandler) recordReminder(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req recordReminderRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.svc.RecordReminder(c.Request.Context(), id,
		reminder.Channel(req.Channel), reminder.Type(req.Type), req.Notes,
		actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.RemindersSent.WithLabelValues(req.Channel).Inc()
	respondCreated(c, event)
}

func (h *PrescriptionHandler) reminderHistory(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	events, err := h.svc.ReminderHistory(c.Request.Context(), id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, events)
}

type bulkReminderRequest struct {
	PrescriptionIDs []uuid.UUID `json:"prescription_ids"`
	Channel         string      `json:"channel"`
	Type            string      `json:"type"`
	Notes           string      `json:"notes"`
}

type bulkReminderResult struct {
	PrescriptionID uuid.UUID       `json:"prescription_id"`
	Event          *reminder.Event `json:"event,omitempty"`
	Error          string          `json:"error,omitempty"`
}

func (h *PrescriptionHandler) bulkReminders(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req bulkReminderRequest
	if !bindJSON(c, &req) {
		return
	}

	results, err := h.svc.RecordBulkReminders(c.Request.Context(), req.PrescriptionIDs,
		reminder.Channel(req.Channel), reminder.Type(req.Type), req.Notes,
		actor, time.Now(), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]bulkReminderResult, 0, len(results))
	sent := 0
	for _, r := range results {
		item := bulkReminderResult{PrescriptionID: r.PrescriptionID, Event: r.Event}
		if r.Err != nil {
			item.Error = r.Err.Error()
		} else {
			sent++
		}
		out = append(out, item)
	}
	h.collector.RemindersSent.WithLabelValues(req.Channel).Add(float64(sent))

	respondOK(c, gin.H{"results": out, "sent": sent, "failed": len(out) - sent})
}
