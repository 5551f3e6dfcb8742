package slot

import (
	"strings"
	"time"
)

// WorksOn reports whether a comma separated day list such as "Mon,Wed,Fri" covers weekday.
// Full names and common abbreviations are accepted.
func WorksOn(availableDays string, weekday time.Weekday) bool {
	for _, token := range strings.Split(availableDays, ",") {
		if wd, ok := mapDayToken(token); ok && wd == weekday {
			return true
		}
	}
	return false
}

func mapDayToken(s string) (time.Weekday, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch t {
	case "mon", "monday":
		return time.Monday, true
	case "tue", "tues", "tuesday":
		return time.Tuesday, true
	case "wed", "wednesday":
		return time.Wednesday, true
	case "thu", "thur", "thurs", "thursday":
		return time.Thursday, true
	case "fri", "friday":
		return time.Friday, true
	case "sat", "saturday":
		return time.Saturday, true
	case "sun", "sunday":
		return time.Sunday, true
	}
	return 0, false
}
