package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrightSmileDental/clinic-service/internal/clinic"
)

type mockTenantLister struct {
	tenants []clinic.TenantRef
}

func (m *mockTenantLister) ListActiveTenants(ctx context.Context) ([]clinic.TenantRef, error) {
	return m.tenants, nil
}

func newTestSweeper(repo *mockRepository, tenants []clinic.TenantRef, pub *mockPublisher) *Sweeper {
	s := NewSweeper(repo, &mockTenantLister{tenants: tenants}, pub, nil)
	s.now = fixedNow
	return s
}

func TestSweeper_CutoffHonorsGracePeriod(t *testing.T) {
	var gotCutoff time.Time
	repo := &mockRepository{
		markMissedFunc: func(ctx context.Context, schemaName string, now time.Time) ([]AppointmentResponse, error) {
			gotCutoff = now
			return nil, nil
		},
	}
	sweeper := newTestSweeper(repo, []clinic.TenantRef{{ClinicID: testClinicID, SchemaName: testSchema}}, &mockPublisher{})

	_, err := sweeper.Run(context.Background())
	require.NoError(t, err)

	// An appointment ending at 08:45 is due at 09:00; one ending at 08:50 is
	// still inside the grace period.
	assert.Equal(t, fixedNow().Add(-MissedGracePeriod), gotCutoff)
}

func TestSweeper_PublishesPerAppointment(t *testing.T) {
	repo := &mockRepository{
		markMissedFunc: func(ctx context.Context, schemaName string, now time.Time) ([]AppointmentResponse, error) {
			a := existingAppointment(StatusMissed)
			b := existingAppointment(StatusMissed)
			b.ID = "a2"
			return []AppointmentResponse{*a, *b}, nil
		},
	}
	pub := &mockPublisher{}
	sweeper := newTestSweeper(repo, []clinic.TenantRef{{ClinicID: testClinicID, SchemaName: testSchema}}, pub)

	marked, err := sweeper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, marked)
	assert.Equal(t, []string{"appointment.missed", "appointment.missed"}, pub.published)
}

func TestSweeper_OneClinicFailingDoesNotStopTheSweep(t *testing.T) {
	repo := &mockRepository{
		markMissedFunc: func(ctx context.Context, schemaName string, now time.Time) ([]AppointmentResponse, error) {
			if schemaName == "clinic_broken_00000000" {
				return nil, errors.New("schema is gone")
			}
			return []AppointmentResponse{*existingAppointment(StatusMissed)}, nil
		},
	}
	sweeper := newTestSweeper(repo, []clinic.TenantRef{
		{ClinicID: "c-broken", SchemaName: "clinic_broken_00000000"},
		{ClinicID: testClinicID, SchemaName: testSchema},
	}, &mockPublisher{})

	marked, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
}
