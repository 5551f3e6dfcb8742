package slot

import (
	"fmt"
	"hospital-service/internal/pkg/utils"
	"time"
)

// Window is a working-hours window expressed as offsets from midnight.
// Start is inclusive and End exclusive.
type Window struct {
	Start time.Duration
	End   time.Duration
}

func NewWindow(from, to string) (Window, error) {
	start, err := utils.ParseClock(from)
	if err != nil {
		return Window{}, fmt.Errorf("window start: %w", err)
	}
	end, err := utils.ParseClock(to)
	if err != nil {
		return Window{}, fmt.Errorf("window end: %w", err)
	}
	return Window{Start: start, End: end}, nil
}

func (w Window) Valid() bool {
	return w.Start < w.End
}

func (w Window) Contains(offset time.Duration) bool {
	return offset >= w.Start && offset < w.End
}
