package appointment

import (
	"fmt"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/availability"
)

// Lunch break, excluded from every dentist's bookable day.
const (
	lunchStartMinutes = 12 * 60
	lunchEndMinutes   = 13 * 60
)

// MinNotice is the shortest lead time for a same-day booking.
const MinNotice = 30 * time.Minute

// interval is a half-open [start, end) range in minutes since midnight.
type interval struct {
	start int
	end   int
}

// overlaps uses strict inequalities: intervals that merely touch do not
// overlap, so a 10:00-10:30 slot composes with a 10:30-11:00 one.
func (iv interval) overlaps(other interval) bool {
	return iv.start < other.end && other.start < iv.end
}

// SlotInputs collects everything slot computation needs for one dentist and
// one date. The caller loads these; the computation itself is pure.
type SlotInputs struct {
	Date            time.Time
	DurationMinutes int
	Windows         []availability.WindowResponse
	BlockedSlots    []availability.BlockedSlotResponse
	Appointments    []AppointmentResponse // active ones for the dentist and date
	Now             time.Time
}

// ComputeSlots generates the bookable slots: window intervals stepped by the
// visit duration, minus the lunch break, blocked ranges, existing active
// appointments, and (for today) anything starting inside the notice period.
func ComputeSlots(in SlotInputs) ([]Slot, error) {
	if in.DurationMinutes <= 0 {
		return nil, ErrBadDuration
	}

	busy := make([]interval, 0, len(in.BlockedSlots)+len(in.Appointments)+1)
	busy = append(busy, interval{lunchStartMinutes, lunchEndMinutes})

	for _, b := range in.BlockedSlots {
		iv, err := parseInterval(b.StartTime, b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("blocked slot %s has invalid times: %w", b.ID, err)
		}
		busy = append(busy, iv)
	}
	for _, a := range in.Appointments {
		if !IsActive(a.Status) {
			continue
		}
		iv, err := parseInterval(a.StartTime, a.EndTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %s has invalid times: %w", a.ID, err)
		}
		busy = append(busy, iv)
	}

	// for same-day requests, slots must start after now + notice
	earliestStart := -1
	if sameDay(in.Date, in.Now) {
		earliestStart = minutesCeil(in.Now.Add(MinNotice))
	}

	var slots []Slot
	for _, w := range in.Windows {
		window, err := parseInterval(w.StartTime, w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("availability window %s has invalid times: %w", w.ID, err)
		}

		for start := window.start; start+in.DurationMinutes <= window.end; start += in.DurationMinutes {
			candidate := interval{start, start + in.DurationMinutes}
			if start < earliestStart {
				continue
			}
			if overlapsAny(candidate, busy) {
				continue
			}
			slots = append(slots, Slot{
				StartTime: formatMinutes(candidate.start),
				EndTime:   formatMinutes(candidate.end),
			})
		}
	}

	return slots, nil
}

// fitsWindows reports whether [startTime, endTime) lies inside some
// availability window and clear of the lunch break. Used to validate booking
// requests that did not come from a computed slot list.
func fitsWindows(windows []availability.WindowResponse, startTime, endTime string) (bool, error) {
	requested, err := parseInterval(startTime, endTime)
	if err != nil {
		return false, err
	}
	if requested.overlaps(interval{lunchStartMinutes, lunchEndMinutes}) {
		return false, nil
	}
	for _, w := range windows {
		window, err := parseInterval(w.StartTime, w.EndTime)
		if err != nil {
			return false, err
		}
		if requested.start >= window.start && requested.end <= window.end {
			return true, nil
		}
	}
	return false, nil
}

// overlapsBlocked reports whether the range intersects any blocked slot.
func overlapsBlocked(blocked []availability.BlockedSlotResponse, startTime, endTime string) (bool, error) {
	requested, err := parseInterval(startTime, endTime)
	if err != nil {
		return false, err
	}
	for _, b := range blocked {
		iv, err := parseInterval(b.StartTime, b.EndTime)
		if err != nil {
			return false, err
		}
		if requested.overlaps(iv) {
			return true, nil
		}
	}
	return false, nil
}

func overlapsAny(candidate interval, busy []interval) bool {
	for _, iv := range busy {
		if candidate.overlaps(iv) {
			return true
		}
	}
	return false
}

func parseInterval(startTime, endTime string) (interval, error) {
	start, err := parseMinutes(startTime)
	if err != nil {
		return interval{}, err
	}
	end, err := parseMinutes(endTime)
	if err != nil {
		return interval{}, err
	}
	if start >= end {
		return interval{}, fmt.Errorf("start %s is not before end %s", startTime, endTime)
	}
	return interval{start, end}, nil
}

func parseMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, ErrBadTime
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// minutesCeil converts a clock time to minutes since midnight, rounding up
// on residual seconds so a cutoff never lands inside a minute.
func minutesCeil(t time.Time) int {
	m := t.Hour()*60 + t.Minute()
	if t.Second() > 0 || t.Nanosecond() > 0 {
		m++
	}
	return m
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
