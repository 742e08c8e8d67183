package appointment

import "errors"

var (
	ErrNotFound            = errors.New("appointment not found")
	ErrSlotConflict        = errors.New("the requested time slot is no longer available")
	ErrOutsideAvailability = errors.New("the requested time is outside the dentist's availability")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrPastDate            = errors.New("appointments cannot be booked in the past")
	ErrTooShortNotice      = errors.New("appointments require advance notice")
	ErrMissingPatient      = errors.New("patient ID is required")
	ErrMissingDentist      = errors.New("dentist ID is required")
	ErrBadDate             = errors.New("date must be YYYY-MM-DD")
	ErrBadTime             = errors.New("time must be HH:MM")
	ErrBadDuration         = errors.New("duration must be a positive number of minutes")
	ErrNoProposal          = errors.New("no pending reschedule proposal")
)
