package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/prescription"
	"github.com/rxdesk/rxdesk/internal/domain/reminder"
)

type PrescriptionService struct {
	repo         prescription.Repository
	reminderRepo reminder.Repository
	auditSvc     *AuditService
	log          *zap.Logger
}

func NewPrescriptionService(repo prescription.Repository, reminderRepo reminder.Repository, auditSvc *AuditService, log *zap.Logger) *PrescriptionService {
	return &PrescriptionService{repo: repo, reminderRepo: reminderRepo, auditSvc: auditSvc, log: log}
}

func (s *PrescriptionService) Create(ctx context.Context, cmd *prescription.CreateCommand, actor domain.Actor, ip string) (*prescription.Prescription, error) {
	var fields []string
	if cmd.PatientName == "" {
		fields = append(fields, "patient_name is required")
	}
	if cmd.Medication == "" {
		fields = append(fields, "medication is required")
	}
	if cmd.Quantity <= 0 {
		fields = append(fields, "quantity must be a positive integer")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	p := &prescription.Prescription{
		PharmacyID:          actor.PharmacyID,
		PatientName:         cmd.PatientName,
		PatientDOB:          cmd.PatientDOB,
		PatientPhone:        cmd.PatientPhone,
		PatientAddress:      cmd.PatientAddress,
		Medication:          cmd.Medication,
		Dosage:              cmd.Dosage,
		Quantity:            cmd.Quantity,
		Prescriber:          cmd.Prescriber,
		Status:              prescription.StatusPending,
		DateCreated:         time.Now(),
		RenewalDueDate:      cmd.RenewalDueDate,
		InsuranceInfo:       cmd.InsuranceInfo,
		SpecialInstructions: cmd.SpecialInstructions,
		CreatedBy:           actor.UserID,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, persistErr("creating prescription", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionCreate, ResourceType: "prescription", ResourceID: p.ID.String(), IPAddress: ip,
	})

	return p, nil
}

// Transition moves a prescription along pending→ready→collected, stamping
// the matching date field. An already-reached target is a no-op and skips
// the persist round-trip.
func (s *PrescriptionService) Transition(ctx context.Context, id uuid.UUID, target prescription.Status, actor domain.Actor, now time.Time, ip string) (*prescription.Prescription, error) {
	if !target.IsValid() {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown status %q", target)}}
	}

	p, err := s.repo.GetByID(ctx, actor.PharmacyID, id)
	if err != nil {
		return nil, err
	}

	changed, err := p.Apply(target, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, persistErr("updating prescription status", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "prescription", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"status":%q}`, target),
	})

	return p, nil
}

// Renew stamps the renewal timestamp. Renewal does not touch the pickup
// status machine.
func (s *PrescriptionService) Renew(ctx context.Context, id uuid.UUID, actor domain.Actor, now time.Time, ip string) (*prescription.Prescription, error) {
	p, err := s.repo.GetByID(ctx, actor.PharmacyID, id)
	if err != nil {
		return nil, err
	}

	p.Renew(now)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, persistErr("renewing prescription", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "prescription", ResourceID: id.String(), IPAddress: ip,
		Changes: `{"action":"renewed"}`,
	})

	return p, nil
}

func (s *PrescriptionService) Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (*prescription.Prescription, error) {
	return s.repo.GetByID(ctx, actor.PharmacyID, id)
}

func (s *PrescriptionService) List(ctx context.Context, q *prescription.ListQuery, actor domain.Actor) (*prescription.PagedPrescriptions, error) {
	q.PharmacyID = actor.PharmacyID
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	return s.repo.List(ctx, q)
}

func (s *PrescriptionService) Delete(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) error {
	if err := s.repo.Delete(ctx, actor.PharmacyID, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionDelete, ResourceType: "prescription", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}

// RenewalBuckets groups unretired prescriptions by derived renewal category
// for the renewals screen.
type RenewalBuckets struct {
	DueSoon   []*prescription.Prescription
	Overdue   []*prescription.Prescription
	Completed []*prescription.Prescription
}

func (s *PrescriptionService) Renewals(ctx context.Context, actor domain.Actor, now time.Time) (*RenewalBuckets, error) {
	prescriptions, err := s.repo.ListRenewals(ctx, actor.PharmacyID)
	if err != nil {
		return nil, persistErr("listing renewals", err)
	}

	buckets := &RenewalBuckets{}
	for _, p := range prescriptions {
		switch p.RenewalStatus(now) {
		case prescription.RenewalDueSoon:
			buckets.DueSoon = append(buckets.DueSoon, p)
		case prescription.RenewalOverdue:
			buckets.Overdue = append(buckets.Overdue, p)
		case prescription.RenewalCompleted:
			buckets.Completed = append(buckets.Completed, p)
		}
	}
	return buckets, nil
}

// RecordReminder appends an immutable reminder event for a prescription.
// The prescription row itself is never mutated.
func (s *PrescriptionService) RecordReminder(ctx context.Context, prescriptionID uuid.UUID, channel reminder.Channel, rtype reminder.Type, notes string, actor domain.Actor, now time.Time, ip string) (*reminder.Event, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanSendNotifications }) {
		return nil, ErrForbidden
	}

	var fields []string
	if !channel.IsValid() {
		fields = append(fields, fmt.Sprintf("unknown channel %q", channel))
	}
	if !rtype.IsValid() {
		fields = append(fields, fmt.Sprintf("unknown reminder type %q", rtype))
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.repo.GetByID(ctx, actor.PharmacyID, prescriptionID); err != nil {
		return nil, err
	}

	event := &reminder.Event{
		PharmacyID:     actor.PharmacyID,
		PrescriptionID: prescriptionID,
		Channel:        channel,
		Type:           rtype,
		SentAt:         now,
		SentBy:         actor.UserID,
		Notes:          notes,
	}

	if err := s.reminderRepo.Append(ctx, event); err != nil {
		return nil, persistErr("appending reminder event", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionCreate, ResourceType: "reminder_event", ResourceID: event.ID.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"channel":%q,"type":%q}`, channel, rtype),
	})

	return event, nil
}

// BulkReminderResult reports the outcome of one id within a bulk send.
type BulkReminderResult struct {
	PrescriptionID uuid.UUID
	Event          *reminder.Event
	Err            error
}

// RecordBulkReminders appends one reminder event per prescription id. The
// adapter only guarantees per-row atomicity, so instead of pretending the
// batch is transactional the caller gets a per-id result slice; nothing is
// silently dropped.
func (s *PrescriptionService) RecordBulkReminders(ctx context.Context, ids []uuid.UUID, channel reminder.Channel, rtype reminder.Type, notes string, actor domain.Actor, now time.Time, ip string) ([]BulkReminderResult, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanSendNotifications }) {
		return nil, ErrForbidden
	}

	results := make([]BulkReminderResult, 0, len(ids))
	for _, id := range ids {
		event, err := s.RecordReminder(ctx, id, channel, rtype, notes, actor, now, ip)
		results = append(results, BulkReminderResult{PrescriptionID: id, Event: event, Err: err})
	}
	return results, nil
}

func (s *PrescriptionService) ReminderHistory(ctx context.Context, prescriptionID uuid.UUID, actor domain.Actor) ([]*reminder.Event, error) {
	return s.reminderRepo.ListByPrescription(ctx, actor.PharmacyID, prescriptionID)
}
