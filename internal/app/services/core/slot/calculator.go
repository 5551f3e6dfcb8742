package slot

import (
	"hospital-service/internal/pkg/utils"
	"iter"
	"time"
)

// Available yields slot starts in [window.Start, window.End) on a fixed step,
// skipping offsets present in booked. It is lazy; callers may stop early.
func Available(window Window, step time.Duration, booked []time.Duration) iter.Seq[time.Duration] {
	taken := make(map[time.Duration]struct{}, len(booked))
	for _, offset := range booked {
		taken[offset] = struct{}{}
	}

	return func(yield func(time.Duration) bool) {
		if step <= 0 || !window.Valid() {
			return
		}
		for offset := window.Start; offset < window.End; offset += step {
			if _, ok := taken[offset]; ok {
				continue
			}
			if !yield(offset) {
				return
			}
		}
	}
}

// Format renders every slot of seq as HH:MM:SS.
func Format(seq iter.Seq[time.Duration]) []string {
	slots := []string{}
	for offset := range seq {
		slots = append(slots, utils.FormatClock(offset))
	}
	return slots
}

// ParseBooked converts stored clock strings, ignoring values that do not parse.
func ParseBooked(clocks []string) []time.Duration {
	booked := make([]time.Duration, 0, len(clocks))
	for _, value := range clocks {
		offset, err := utils.ParseClock(value)
		if err != nil {
			continue
		}
		booked = append(booked, offset)
	}
	return booked
}
