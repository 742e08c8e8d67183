package appointment

import (
	"context"
	"log"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/clinic"
	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
)

// TenantLister enumerates the clinics whose schemas the sweeper visits.
// MissedGracePeriod is how long past its end time an appointment may run
// before the sweep marks it missed.
const MissedGracePeriod = 15 * time.Minute

type TenantLister interface {
	ListActiveTenants(ctx context.Context) ([]clinic.TenantRef, error)
}

// Sweeper marks past-due confirmed appointments as missed across every
// tenant schema. One clinic failing does not stop the sweep.
type Sweeper struct {
	repo      RepositoryInterface
	tenants   TenantLister
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func NewSweeper(repo RepositoryInterface, tenants TenantLister, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Sweeper {
	return &Sweeper{
		repo:      repo,
		tenants:   tenants,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Run performs one sweep over all active clinics and returns how many
// appointments were marked missed.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	tenants, err := s.tenants.ListActiveTenants(ctx)
	if err != nil {
		return 0, err
	}

	// Appointments become missed only once their end time is past the grace
	// period, so a patient finishing late is not swept mid-visit.
	cutoff := s.now().Add(-MissedGracePeriod)

	total := 0
	for _, t := range tenants {
		missed, err := s.repo.MarkMissed(ctx, t.SchemaName, cutoff)
		if err != nil {
			log.Printf("[ERROR] Missed-appointment sweep failed for clinic %s: %v", t.ClinicID, err)
			continue
		}
		for i := range missed {
			s.publishMissed(ctx, t.ClinicID, &missed[i])
		}
		if s.metrics != nil && len(missed) > 0 {
			s.metrics.RecordAppointmentOperation(ctx, StatusMissed)
		}
		total += len(missed)
	}

	if total > 0 {
		log.Printf("Missed-appointment sweep marked %d appointment(s) across %d clinic(s)", total, len(tenants))
	}
	return total, nil
}

// RunPeriodically sweeps on the given interval until the context is cancelled.
func (s *Sweeper) RunPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				log.Printf("[ERROR] Missed-appointment sweep failed: %v", err)
			}
		}
	}
}

func (s *Sweeper) publishMissed(ctx context.Context, clinicID string, appt *AppointmentResponse) {
	if s.publisher == nil {
		return
	}

	event := messaging.AppointmentEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventAppointmentMissed),
		Data: messaging.AppointmentEventData{
			AppointmentID: appt.ID,
			ClinicID:      clinicID,
			PatientID:     appt.PatientID,
			DentistID:     appt.DentistID,
			Date:          appt.Date,
			StartTime:     appt.StartTime,
			EndTime:       appt.EndTime,
			NewStatus:     StatusMissed,
			ChangedAt:     time.Now().UTC(),
		},
	}

	if err := s.publisher.Publish(ctx, messaging.EventAppointmentMissed, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event for appointment %s: %v", messaging.EventAppointmentMissed, appt.ID, err)
	}
}
