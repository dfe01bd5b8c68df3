package checkout

import (
	"fmt"
	"slices"
	"time"
)

const (
	firstSlotHour = 10
	lastSlotHour  = 22
)

// TimeSlots lists the half-hour delivery slots still bookable today, starting
// one hour after now and never before 10:00.
func TimeSlots(now time.Time) []string {
	start := now.Hour() + 1
	if start < firstSlotHour {
		start = firstSlotHour
	}
	slots := make([]string, 0, 2*max(lastSlotHour-start+1, 0))
	for h := start; h <= lastSlotHour; h++ {
		slots = append(slots, fmt.Sprintf("%d:00", h), fmt.Sprintf("%d:30", h))
	}
	return slots
}

func validSlot(now time.Time, slot string) bool {
	return slices.Contains(TimeSlots(now), slot)
}
