package appointment

// Appointment statuses. An appointment holds its dentist's time slot while in
// any of the active statuses; terminal statuses release it.
const (
	StatusPending             = "pending"
	StatusConfirmed           = "confirmed"
	StatusCompleted           = "completed"
	StatusCancelled           = "cancelled"
	StatusMissed              = "missed"
	StatusRescheduleRequested = "reschedule_requested"
	StatusCancelRequested     = "cancel_requested"
)

// ActiveStatuses are the statuses that occupy a slot. Must stay in sync with
// the exclusion constraint predicate on the appointments table.
var ActiveStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusRescheduleRequested,
	StatusCancelRequested,
}

// A pending appointment is resolved by staff before anything else can happen
// to it; the request and missed paths only apply once it is confirmed.
var transitions = map[string][]string{
	StatusPending:             {StatusConfirmed, StatusCancelled},
	StatusConfirmed:           {StatusCompleted, StatusCancelled, StatusMissed, StatusRescheduleRequested, StatusCancelRequested},
	StatusRescheduleRequested: {StatusConfirmed, StatusCancelled},
	StatusCancelRequested:     {StatusConfirmed, StatusCancelled},
}

// CanTransition reports whether moving an appointment from one status to
// another is allowed. Terminal statuses (completed, cancelled, missed) allow
// no further transitions.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the status occupies the dentist's slot.
func IsActive(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}
