package booking

import (
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
)

const defaultSlotStep = 30 * time.Minute

// SlotConfig describes the working window and cadence used to enumerate candidate slots.
type SlotConfig struct {
	StartHour     int
	EndHour       int
	Step          time.Duration
	EnforceBuffer bool // block the meeting type's buffer around each confirmed booking
}

// AvailabilitySlot is a derived candidate interval. It is never stored.
type AvailabilitySlot struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Available     bool      `json:"available"`
	// Held marks a slot overlapping a pending booking. Booking it fails with a conflict
	// until the owner approves or cancels that booking.
	Held          bool      `json:"held"`
	MeetingTypeID string    `json:"meeting_type_id"`
}

// overlaps is the half-open interval test used everywhere: [aStart, aEnd) ∩ [bStart, bEnd) ≠ ∅.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// window returns the working window of the calendar day of date, in date's location.
func (cfg SlotConfig) window(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	loc := date.Location()
	return time.Date(y, m, d, cfg.StartHour, 0, 0, 0, loc), time.Date(y, m, d, cfg.EndHour, 0, 0, 0, loc)
}

func (cfg SlotConfig) step() time.Duration {
	if cfg.Step <= 0 {
		return defaultSlotStep
	}
	return cfg.Step
}

func (cfg SlotConfig) buffer(mt *meetingtype.MeetingType) time.Duration {
	if !cfg.EnforceBuffer {
		return 0
	}
	return mt.BufferDuration()
}

// GenerateSlots enumerates the candidate slots of date's calendar day for mt and marks each
// one unavailable when it overlaps a confirmed booking of mt. The result is ordered by start
// and depends only on its arguments. A nil or inactive meeting type yields no slots.
func GenerateSlots(date time.Time, mt *meetingtype.MeetingType, bookings []*Booking, cfg SlotConfig) []AvailabilitySlot {
	slots := []AvailabilitySlot{}
	if mt == nil || !mt.IsActive || mt.Duration <= 0 {
		return slots
	}

	windowStart, windowEnd := cfg.window(date)
	duration := mt.DurationTime()
	buffer := cfg.buffer(mt)

	var blocking, pending []*Booking
	for _, b := range bookings {
		if b.MeetingTypeID != mt.ID {
			continue
		}
		switch b.Status {
		case StatusConfirmed:
			blocking = append(blocking, b)
		case StatusPending:
			pending = append(pending, b)
		}
	}

	for start := windowStart; start.Before(windowEnd); start = start.Add(cfg.step()) {
		end := start.Add(duration)
		if end.After(windowEnd) {
			continue
		}

		slots = append(slots, AvailabilitySlot{
			Start:         start,
			End:           end,
			Available:     !anyOverlaps(start, end, blocking, buffer),
			Held:          anyOverlaps(start, end, pending, buffer),
			MeetingTypeID: mt.ID,
		})
	}
	return slots
}

func anyOverlaps(start, end time.Time, bookings []*Booking, buffer time.Duration) bool {
	for _, b := range bookings {
		if overlaps(start, end, b.StartTime.Add(-buffer), b.EndTime.Add(buffer)) {
			return true
		}
	}
	return false
}

// isCandidate reports whether start is one of the slot starts GenerateSlots would produce
// for its calendar day in loc, ignoring bookings.
func isCandidate(start time.Time, mt *meetingtype.MeetingType, cfg SlotConfig, loc *time.Location) bool {
	local := start.In(loc)
	for _, slot := range GenerateSlots(local, mt, nil, cfg) {
		if slot.Start.Equal(start) {
			return true
		}
	}
	return false
}
