package analytics

import (
	"context"
	"time"
)

// ServiceInterface defines the contract for the dashboard summary.
type ServiceInterface interface {
	Summary(ctx context.Context, schemaName string, from, to string) (*Summary, error)
}

type Service struct {
	repo RepositoryInterface
	now  func() time.Time
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Summary assembles the dashboard aggregates. An empty range defaults to the
// last 30 days.
func (s *Service) Summary(ctx context.Context, schemaName string, fromStr, toStr string) (*Summary, error) {
	now := s.now()

	to := now
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, err
		}
		to = parsed
	}

	from := to.AddDate(0, 0, -30)
	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, err
		}
		from = parsed
	}

	if from.After(to) {
		return nil, ErrBadRange
	}

	counts, err := s.repo.AppointmentCounts(ctx, schemaName, from, to)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}

	revenue, err := s.repo.RevenueCents(ctx, schemaName, from, to)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.repo.OutstandingCents(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	newPatients, err := s.repo.NewPatients(ctx, schemaName, from, to)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.LowStockItems(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	return &Summary{
		From:                 from.Format("2006-01-02"),
		To:                   to.Format("2006-01-02"),
		AppointmentsByStatus: counts,
		TotalAppointments:    total,
		RevenueCents:         revenue,
		OutstandingCents:     outstanding,
		NewPatients:          newPatients,
		LowStockItems:        lowStock,
	}, nil
}
