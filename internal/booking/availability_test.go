package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
)

var workingHours = SlotConfig{StartHour: 9, EndHour: 17, Step: 30 * time.Minute}

func day() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }

func at(h, m int) time.Time { return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC) }

func consultation(duration, buffer int) *meetingtype.MeetingType {
	return &meetingtype.MeetingType{
		ID:         "mt-1",
		OwnerID:    "owner-1",
		Name:       "Consultation",
		Duration:   duration,
		BufferTime: buffer,
		IsActive:   true,
		Location:   meetingtype.Location{Kind: meetingtype.LocationVirtual},
	}
}

func confirmedAt(mtID string, start time.Time, minutes int) *Booking {
	return &Booking{
		ID:            "b-" + start.Format("1504"),
		MeetingTypeID: mtID,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(minutes) * time.Minute),
		Status:        StatusConfirmed,
	}
}

func slotAt(t *testing.T, slots []AvailabilitySlot, start time.Time) AvailabilitySlot {
	t.Helper()
	for _, s := range slots {
		if s.Start.Equal(start) {
			return s
		}
	}
	t.Fatalf("no slot starting at %s", start.Format(time.Kitchen))
	return AvailabilitySlot{}
}

func TestGenerateSlotsEmptyDay(t *testing.T) {
	slots := GenerateSlots(day(), consultation(30, 0), nil, workingHours)

	require.Len(t, slots, 16)
	assert.Equal(t, at(9, 0), slots[0].Start)
	assert.Equal(t, at(9, 30), slots[0].End)
	assert.Equal(t, at(16, 30), slots[15].Start)
	assert.Equal(t, at(17, 0), slots[15].End)
	for _, s := range slots {
		assert.True(t, s.Available)
		assert.Equal(t, "mt-1", s.MeetingTypeID)
	}
}

func TestGenerateSlotsConfirmedBookingWithoutBuffer(t *testing.T) {
	cfg := workingHours
	cfg.EnforceBuffer = false
	bookings := []*Booking{confirmedAt("mt-1", at(10, 0), 30)}

	slots := GenerateSlots(day(), consultation(30, 15), bookings, cfg)

	assert.False(t, slotAt(t, slots, at(10, 0)).Available)
	assert.True(t, slotAt(t, slots, at(9, 30)).Available)
	assert.True(t, slotAt(t, slots, at(10, 30)).Available)
}

func TestGenerateSlotsConfirmedBookingWithBuffer(t *testing.T) {
	cfg := workingHours
	cfg.EnforceBuffer = true
	bookings := []*Booking{confirmedAt("mt-1", at(10, 0), 30)}

	slots := GenerateSlots(day(), consultation(30, 15), bookings, cfg)

	// blocked interval is [09:45, 10:45)
	assert.True(t, slotAt(t, slots, at(9, 0)).Available)
	assert.False(t, slotAt(t, slots, at(9, 30)).Available)
	assert.False(t, slotAt(t, slots, at(10, 0)).Available)
	assert.False(t, slotAt(t, slots, at(10, 30)).Available)
	assert.True(t, slotAt(t, slots, at(11, 0)).Available)
}

func TestGenerateSlotsOnlyConfirmedBookingsOfTheMeetingTypeBlock(t *testing.T) {
	pending := confirmedAt("mt-1", at(9, 0), 30)
	pending.Status = StatusPending
	cancelled := confirmedAt("mt-1", at(11, 0), 30)
	cancelled.Status = StatusCancelled
	other := confirmedAt("mt-2", at(13, 0), 30)

	slots := GenerateSlots(day(), consultation(30, 0), []*Booking{pending, cancelled, other}, workingHours)

	for _, s := range slots {
		assert.True(t, s.Available, "slot %s", s.Start.Format(time.Kitchen))
	}
}

func TestGenerateSlotsMarksPendingHolds(t *testing.T) {
	pending := confirmedAt("mt-1", at(10, 0), 30)
	pending.Status = StatusPending
	cancelled := confirmedAt("mt-1", at(13, 0), 30)
	cancelled.Status = StatusCancelled

	cfg := workingHours
	cfg.EnforceBuffer = true
	slots := GenerateSlots(day(), consultation(30, 15), []*Booking{pending, cancelled}, cfg)

	for _, start := range []time.Time{at(9, 30), at(10, 0), at(10, 30)} {
		s := slotAt(t, slots, start)
		assert.True(t, s.Available, "pending bookings do not make a slot busy")
		assert.True(t, s.Held, "slot %s", start.Format(time.Kitchen))
	}
	assert.False(t, slotAt(t, slots, at(9, 0)).Held)
	assert.False(t, slotAt(t, slots, at(11, 0)).Held)
	assert.False(t, slotAt(t, slots, at(13, 0)).Held)
}

func TestGenerateSlotsFitWithinWindow(t *testing.T) {
	windowStart, windowEnd := at(9, 0), at(17, 0)

	for _, d := range []int{15, 30, 45, 60, 90, 240, 480} {
		slots := GenerateSlots(day(), consultation(d, 0), nil, workingHours)
		require.NotEmpty(t, slots, "duration %d", d)
		for i, s := range slots {
			assert.Equal(t, time.Duration(d)*time.Minute, s.End.Sub(s.Start))
			assert.False(t, s.Start.Before(windowStart))
			assert.False(t, s.End.After(windowEnd))
			if i > 0 {
				assert.True(t, slots[i-1].Start.Before(s.Start))
			}
		}
	}

	assert.Len(t, GenerateSlots(day(), consultation(60, 0), nil, workingHours), 15)
	assert.Len(t, GenerateSlots(day(), consultation(480, 0), nil, workingHours), 1)
	assert.Empty(t, GenerateSlots(day(), consultation(481, 0), nil, workingHours))
}

func TestGenerateSlotsMissingOrInactiveMeetingType(t *testing.T) {
	slots := GenerateSlots(day(), nil, nil, workingHours)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)

	inactive := consultation(30, 0)
	inactive.IsActive = false
	assert.Empty(t, GenerateSlots(day(), inactive, nil, workingHours))
}

func TestGenerateSlotsUsesDateLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	slots := GenerateSlots(time.Date(2026, 3, 2, 15, 0, 0, 0, ny), consultation(30, 0), nil, workingHours)

	require.Len(t, slots, 16)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, ny), slots[0].Start)
}

func TestGenerateSlotsCustomConfig(t *testing.T) {
	cfg := SlotConfig{StartHour: 8, EndHour: 12, Step: time.Hour}

	slots := GenerateSlots(day(), consultation(30, 0), nil, cfg)

	require.Len(t, slots, 4)
	assert.Equal(t, at(8, 0), slots[0].Start)
	assert.Equal(t, at(11, 0), slots[3].Start)
}

func TestGenerateSlotsIsDeterministic(t *testing.T) {
	bookings := []*Booking{confirmedAt("mt-1", at(12, 0), 60), confirmedAt("mt-1", at(9, 0), 30)}

	first := GenerateSlots(day(), consultation(45, 10), bookings, workingHours)
	second := GenerateSlots(day(), consultation(45, 10), bookings, workingHours)

	assert.Equal(t, first, second)
}
