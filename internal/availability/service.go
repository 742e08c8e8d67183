package availability

import (
	"context"
	"fmt"
	"time"
)

// ServiceInterface defines the contract for availability business logic
type ServiceInterface interface {
	CreateWindow(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error)
	ListWindows(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error)
	UpdateWindow(ctx context.Context, schemaName string, id string, req UpdateWindowRequest) (*WindowResponse, error)
	DeleteWindow(ctx context.Context, schemaName string, id string) error

	CreateBlockedSlot(ctx context.Context, schemaName string, createdBy string, req CreateBlockedSlotRequest) (*BlockedSlotResponse, error)
	ListBlockedSlots(ctx context.Context, schemaName string, dentistID string, from, to time.Time) ([]BlockedSlotResponse, error)
	DeleteBlockedSlot(ctx context.Context, schemaName string, id string) error
}

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) CreateWindow(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error) {
	if req.DentistID == "" {
		return nil, fmt.Errorf("dentist ID is required")
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start date must be YYYY-MM-DD")
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end date must be YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date must not be before start date")
	}
	startTime, err := parseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start time must be HH:MM")
	}
	endTime, err := parseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("end time must be HH:MM")
	}
	if !startTime.Before(endTime) {
		return nil, fmt.Errorf("start time must be before end time")
	}

	// overlapping windows for the same dentist would double-count capacity
	existing, err := s.repo.ListWindows(ctx, schemaName, req.DentistID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing windows: %w", err)
	}
	for _, w := range existing {
		wStart, _ := parseDate(w.StartDate)
		wEnd, _ := parseDate(w.EndDate)
		if !startDate.After(wEnd) && !endDate.Before(wStart) {
			wStartTime, _ := parseClock(w.StartTime)
			wEndTime, _ := parseClock(w.EndTime)
			if startTime.Before(wEndTime) && wStartTime.Before(endTime) {
				return nil, fmt.Errorf("window overlaps an existing availability window")
			}
		}
	}

	return s.repo.CreateWindow(ctx, schemaName, req)
}

func (s *Service) ListWindows(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error) {
	return s.repo.ListWindows(ctx, schemaName, dentistID)
}

func (s *Service) UpdateWindow(ctx context.Context, schemaName string, id string, req UpdateWindowRequest) (*WindowResponse, error) {
	if req.StartDate != nil {
		if _, err := parseDate(*req.StartDate); err != nil {
			return nil, fmt.Errorf("start date must be YYYY-MM-DD")
		}
	}
	if req.EndDate != nil {
		if _, err := parseDate(*req.EndDate); err != nil {
			return nil, fmt.Errorf("end date must be YYYY-MM-DD")
		}
	}
	if req.StartTime != nil {
		if _, err := parseClock(*req.StartTime); err != nil {
			return nil, fmt.Errorf("start time must be HH:MM")
		}
	}
	if req.EndTime != nil {
		if _, err := parseClock(*req.EndTime); err != nil {
			return nil, fmt.Errorf("end time must be HH:MM")
		}
	}

	return s.repo.UpdateWindow(ctx, schemaName, id, req)
}

func (s *Service) DeleteWindow(ctx context.Context, schemaName string, id string) error {
	return s.repo.DeleteWindow(ctx, schemaName, id)
}

func (s *Service) CreateBlockedSlot(ctx context.Context, schemaName string, createdBy string, req CreateBlockedSlotRequest) (*BlockedSlotResponse, error) {
	if _, err := parseDate(req.Date); err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD")
	}
	startTime, err := parseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start time must be HH:MM")
	}
	endTime, err := parseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("end time must be HH:MM")
	}
	if !startTime.Before(endTime) {
		return nil, fmt.Errorf("start time must be before end time")
	}

	return s.repo.CreateBlockedSlot(ctx, schemaName, createdBy, req)
}

func (s *Service) ListBlockedSlots(ctx context.Context, schemaName string, dentistID string, from, to time.Time) ([]BlockedSlotResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("to date must not be before from date")
	}
	return s.repo.ListBlockedSlots(ctx, schemaName, dentistID, from, to)
}

func (s *Service) DeleteBlockedSlot(ctx context.Context, schemaName string, id string) error {
	return s.repo.DeleteBlockedSlot(ctx, schemaName, id)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}
