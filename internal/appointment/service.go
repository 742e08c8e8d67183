package appointment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/BrightSmileDental/clinic-service/internal/availability"
	"github.com/BrightSmileDental/clinic-service/internal/db"
	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
)

const DefaultDurationMinutes = 30

// AvailabilityReader is the slice of the availability repository the
// appointment service needs.
type AvailabilityReader interface {
	ListWindowsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]availability.WindowResponse, error)
	ListBlockedSlotsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]availability.BlockedSlotResponse, error)
}

// TxRunner runs a function inside a serializable transaction.
type TxRunner interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo      RepositoryInterface
	avail     AvailabilityReader
	tx        TxRunner
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func NewService(repo RepositoryInterface, avail AvailabilityReader, tx TxRunner, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{
		repo:      repo,
		avail:     avail,
		tx:        tx,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// AvailableSlots computes the bookable slots for a dentist on a date.
func (s *Service) AvailableSlots(ctx context.Context, schemaName, dentistID, dateStr string, durationMinutes int) ([]Slot, error) {
	if dentistID == "" {
		return nil, ErrMissingDentist
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrBadDate
	}
	now := s.now()
	if date.Before(truncateToDay(now)) {
		return nil, ErrPastDate
	}
	if durationMinutes == 0 {
		durationMinutes = DefaultDurationMinutes
	}
	if durationMinutes < 0 {
		return nil, ErrBadDuration
	}

	windows, err := s.avail.ListWindowsForDate(ctx, schemaName, dentistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	if len(windows) == 0 {
		return []Slot{}, nil
	}

	blocked, err := s.avail.ListBlockedSlotsForDate(ctx, schemaName, dentistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked slots: %w", err)
	}
	booked, err := s.repo.ListActiveForDentistDate(ctx, schemaName, dentistID, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	started := s.now()
	slots, err := ComputeSlots(SlotInputs{
		Date:            date,
		DurationMinutes: durationMinutes,
		Windows:         windows,
		BlockedSlots:    blocked,
		Appointments:    booked,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSlotComputation(ctx, float64(s.now().Sub(started).Milliseconds()), len(slots))
	}
	if slots == nil {
		slots = []Slot{}
	}
	return slots, nil
}

// Book reserves a slot. The availability check and the overlap check both
// run inside a serializable transaction, so a blocked slot or a competing
// booking inserted concurrently cannot slip past the read. The exclusion
// constraint on the appointments table backstops appointment overlaps.
func (s *Service) Book(ctx context.Context, schemaName, clinicID string, req BookAppointmentRequest) (*AppointmentResponse, error) {
	if req.PatientID == "" {
		return nil, ErrMissingPatient
	}
	if req.DentistID == "" {
		return nil, ErrMissingDentist
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrBadDate
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = DefaultDurationMinutes
	}
	if req.DurationMinutes < 0 {
		return nil, ErrBadDuration
	}
	startMinutes, err := parseMinutes(req.StartTime)
	if err != nil {
		return nil, err
	}
	endTime := formatMinutes(startMinutes + req.DurationMinutes)

	now := s.now()
	if date.Before(truncateToDay(now)) {
		return nil, ErrPastDate
	}
	if sameDay(date, now) {
		if startMinutes < minutesCeil(now.Add(MinNotice)) {
			return nil, ErrTooShortNotice
		}
	}

	appt := AppointmentResponse{
		ID:          uuid.New().String(),
		PatientID:   req.PatientID,
		DentistID:   req.DentistID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     endTime,
		Status:      StatusPending,
		ServiceName: req.ServiceName,
		Notes:       req.Notes,
	}

	var created *AppointmentResponse
	err = s.tx.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.checkAvailability(txCtx, schemaName, req.DentistID, date, req.StartTime, endTime); err != nil {
			return err
		}
		count, err := s.repo.CountOverlapping(txCtx, schemaName, req.DentistID, req.Date, req.StartTime, endTime, "")
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlotConflict
		}
		created, err = s.repo.Insert(txCtx, schemaName, appt)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) || errors.Is(err, db.ErrSerializationFailure) {
			if s.metrics != nil {
				s.metrics.RecordSlotConflict(ctx, "book")
			}
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordAppointmentOperation(ctx, "book")
	}
	s.publishEvent(ctx, messaging.EventAppointmentBooked, clinicID, created, "", "")

	return created, nil
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error) {
	return s.transition(ctx, schemaName, clinicID, id, StatusConfirmed, messaging.EventAppointmentConfirmed, nil)
}

// Complete marks a confirmed appointment as completed after the visit.
func (s *Service) Complete(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error) {
	return s.transition(ctx, schemaName, clinicID, id, StatusCompleted, messaging.EventAppointmentCompleted, nil)
}

// Cancel cancels directly, without the request/approve round trip. Staff use
// this; patients go through RequestCancel.
func (s *Service) Cancel(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error) {
	return s.transition(ctx, schemaName, clinicID, id, StatusCancelled, messaging.EventAppointmentCancelled, map[string]interface{}{
		"cancellation_reason": nullableValue(reason),
		"cancelled_at":        s.now(),
	})
}

// RequestReschedule records a patient's proposed new slot. The proposal is
// validated against the dentist's availability but the slot is only taken
// when staff approve.
func (s *Service) RequestReschedule(ctx context.Context, schemaName, clinicID string, id string, req RescheduleRequest) (*AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, StatusRescheduleRequested) {
		return nil, ErrInvalidTransition
	}

	proposedDate, err := time.Parse("2006-01-02", req.ProposedDate)
	if err != nil {
		return nil, ErrBadDate
	}
	if proposedDate.Before(truncateToDay(s.now())) {
		return nil, ErrPastDate
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration, err = apptDuration(appt)
		if err != nil {
			return nil, err
		}
	}
	if duration < 0 {
		return nil, ErrBadDuration
	}
	startMinutes, err := parseMinutes(req.ProposedStartTime)
	if err != nil {
		return nil, err
	}
	proposedEnd := formatMinutes(startMinutes + duration)

	if err := s.checkAvailability(ctx, schemaName, appt.DentistID, proposedDate, req.ProposedStartTime, proposedEnd); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, schemaName, id, map[string]interface{}{
		"status":              StatusRescheduleRequested,
		"proposed_date":       req.ProposedDate,
		"proposed_start_time": req.ProposedStartTime,
		"proposed_end_time":   proposedEnd,
		"request_reason":      nullableValue(req.Reason),
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, messaging.EventAppointmentRescheduleRequest, clinicID, updated, appt.Status, req.Reason)
	return updated, nil
}

// ApproveReschedule applies the proposed slot. Availability and overlap are
// re-checked against the proposed time inside a serializable transaction:
// the dentist's windows or blocked slots may have changed since the patient
// made the request.
func (s *Service) ApproveReschedule(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusRescheduleRequested {
		return nil, ErrInvalidTransition
	}
	if appt.ProposedDate == "" || appt.ProposedStartTime == "" || appt.ProposedEndTime == "" {
		return nil, ErrNoProposal
	}
	proposedDate, err := time.Parse("2006-01-02", appt.ProposedDate)
	if err != nil {
		return nil, ErrBadDate
	}

	var updated *AppointmentResponse
	err = s.tx.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.checkAvailability(txCtx, schemaName, appt.DentistID, proposedDate, appt.ProposedStartTime, appt.ProposedEndTime); err != nil {
			return err
		}
		count, err := s.repo.CountOverlapping(txCtx, schemaName, appt.DentistID, appt.ProposedDate, appt.ProposedStartTime, appt.ProposedEndTime, appt.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlotConflict
		}
		updated, err = s.repo.Update(txCtx, schemaName, id, map[string]interface{}{
			"date":                appt.ProposedDate,
			"start_time":          appt.ProposedStartTime,
			"end_time":            appt.ProposedEndTime,
			"status":              StatusConfirmed,
			"proposed_date":       nil,
			"proposed_start_time": nil,
			"proposed_end_time":   nil,
			"request_reason":      nil,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) || errors.Is(err, db.ErrSerializationFailure) {
			if s.metrics != nil {
				s.metrics.RecordSlotConflict(ctx, "reschedule")
			}
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	s.publishEvent(ctx, messaging.EventAppointmentRescheduleApproved, clinicID, updated, StatusRescheduleRequested, "")
	return updated, nil
}

// RejectReschedule declines the proposal; the appointment keeps its original
// slot and returns to confirmed.
func (s *Service) RejectReschedule(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusRescheduleRequested {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.Update(ctx, schemaName, id, map[string]interface{}{
		"status":              StatusConfirmed,
		"proposed_date":       nil,
		"proposed_start_time": nil,
		"proposed_end_time":   nil,
		"request_reason":      nil,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, messaging.EventAppointmentRescheduleRejected, clinicID, updated, StatusRescheduleRequested, reason)
	return updated, nil
}

// RequestCancel records a patient's cancellation request for staff review.
func (s *Service) RequestCancel(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error) {
	return s.transition(ctx, schemaName, clinicID, id, StatusCancelRequested, messaging.EventAppointmentCancelRequest, map[string]interface{}{
		"request_reason": nullableValue(reason),
	})
}

// ApproveCancel cancels the appointment, carrying over the requester's reason.
func (s *Service) ApproveCancel(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusCancelRequested {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.Update(ctx, schemaName, id, map[string]interface{}{
		"status":              StatusCancelled,
		"cancellation_reason": nullableValue(appt.RequestReason),
		"request_reason":      nil,
		"cancelled_at":        s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, messaging.EventAppointmentCancelApproved, clinicID, updated, StatusCancelRequested, appt.RequestReason)
	return updated, nil
}

// RejectCancel declines the request; the appointment stays on the books.
func (s *Service) RejectCancel(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusCancelRequested {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.Update(ctx, schemaName, id, map[string]interface{}{
		"status":         StatusConfirmed,
		"request_reason": nil,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, messaging.EventAppointmentCancelRejected, clinicID, updated, StatusCancelRequested, reason)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, schemaName string, id string) (*AppointmentResponse, error) {
	return s.repo.GetByID(ctx, schemaName, id)
}

func (s *Service) List(ctx context.Context, schemaName string, filters ListFilters) ([]AppointmentResponse, error) {
	return s.repo.List(ctx, schemaName, filters)
}

// transition performs a guarded status change with optional extra fields.
func (s *Service) transition(ctx context.Context, schemaName, clinicID string, id string, to string, eventType string, extra map[string]interface{}) (*AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}

	fields := map[string]interface{}{"status": to}
	for k, v := range extra {
		fields[k] = v
	}

	updated, err := s.repo.Update(ctx, schemaName, id, fields)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAppointmentOperation(ctx, to)
	}

	reason, _ := extra["cancellation_reason"].(string)
	if reason == "" {
		reason, _ = extra["request_reason"].(string)
	}
	s.publishEvent(ctx, eventType, clinicID, updated, appt.Status, reason)

	return updated, nil
}

// checkAvailability verifies the range sits in an availability window and
// clear of blocked slots.
func (s *Service) checkAvailability(ctx context.Context, schemaName, dentistID string, date time.Time, startTime, endTime string) error {
	windows, err := s.avail.ListWindowsForDate(ctx, schemaName, dentistID, date)
	if err != nil {
		return fmt.Errorf("failed to load availability: %w", err)
	}
	ok, err := fitsWindows(windows, startTime, endTime)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOutsideAvailability
	}

	blocked, err := s.avail.ListBlockedSlotsForDate(ctx, schemaName, dentistID, date)
	if err != nil {
		return fmt.Errorf("failed to load blocked slots: %w", err)
	}
	hit, err := overlapsBlocked(blocked, startTime, endTime)
	if err != nil {
		return err
	}
	if hit {
		return ErrSlotConflict
	}
	return nil
}

func (s *Service) publishEvent(ctx context.Context, eventType, clinicID string, appt *AppointmentResponse, oldStatus, reason string) {
	if s.publisher == nil {
		return
	}

	event := messaging.AppointmentEvent{
		BaseEvent: messaging.NewBaseEvent(eventType),
		Data: messaging.AppointmentEventData{
			AppointmentID: appt.ID,
			ClinicID:      clinicID,
			PatientID:     appt.PatientID,
			DentistID:     appt.DentistID,
			Date:          appt.Date,
			StartTime:     appt.StartTime,
			EndTime:       appt.EndTime,
			OldStatus:     oldStatus,
			NewStatus:     appt.Status,
			Reason:        reason,
			ProposedDate:  appt.ProposedDate,
			ProposedTime:  appt.ProposedStartTime,
			ChangedAt:     time.Now().UTC(),
		},
	}

	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event for appointment %s: %v", eventType, appt.ID, err)
	}
}

func apptDuration(appt *AppointmentResponse) (int, error) {
	start, err := parseMinutes(appt.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := parseMinutes(appt.EndTime)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

func nullableValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
