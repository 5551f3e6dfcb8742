package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	step := 30 * time.Minute

	t.Run("full window without bookings", func(t *testing.T) {
		window, err := NewWindow("09:00", "11:00")
		require.NoError(t, err)

		assert.Equal(t, []string{"09:00:00", "09:30:00", "10:00:00", "10:30:00"}, Format(Available(window, step, nil)))
	})

	t.Run("booked slots are excluded", func(t *testing.T) {
		window, err := NewWindow("09:00:00", "11:00:00")
		require.NoError(t, err)
		booked := ParseBooked([]string{"09:30:00", "10:30", "not-a-time"})

		assert.Equal(t, []string{"09:00:00", "10:00:00"}, Format(Available(window, step, booked)))
	})

	t.Run("end is exclusive", func(t *testing.T) {
		window, err := NewWindow("16:00", "17:00")
		require.NoError(t, err)

		slots := Format(Available(window, step, nil))
		assert.NotContains(t, slots, "17:00:00")
		assert.Equal(t, "16:30:00", slots[len(slots)-1])
	})

	t.Run("start not before end yields nothing", func(t *testing.T) {
		equal, _ := NewWindow("09:00", "09:00")
		inverted, _ := NewWindow("17:00", "09:00")

		assert.Empty(t, Format(Available(equal, step, nil)))
		assert.Empty(t, Format(Available(inverted, step, nil)))
	})

	t.Run("non positive step yields nothing", func(t *testing.T) {
		window, _ := NewWindow("09:00", "17:00")

		assert.Empty(t, Format(Available(window, 0, nil)))
	})

	t.Run("sequence is lazy", func(t *testing.T) {
		window, _ := NewWindow("00:00", "23:30")
		var seen []time.Duration
		for offset := range Available(window, step, nil) {
			seen = append(seen, offset)
			if len(seen) == 2 {
				break
			}
		}

		assert.Equal(t, []time.Duration{0, 30 * time.Minute}, seen)
	})
}

func TestWorksOn(t *testing.T) {
	cases := []struct {
		days    string
		weekday time.Weekday
		want    bool
	}{
		{"Mon,Tue,Wed,Thu,Fri", time.Monday, true},
		{"Mon,Tue,Wed,Thu,Fri", time.Saturday, false},
		{"mon, wednesday ,FRI", time.Wednesday, true},
		{"Sat,Sun", time.Sunday, true},
		{"", time.Monday, false},
		{"Funday", time.Monday, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, WorksOn(tc.days, tc.weekday), "%q on %s", tc.days, tc.weekday)
	}
}

func TestNewWindow(t *testing.T) {
	_, err := NewWindow("9am", "17:00")
	assert.Error(t, err)

	window, err := NewWindow("08:00", "12:00")
	require.NoError(t, err)
	assert.True(t, window.Contains(8*time.Hour))
	assert.False(t, window.Contains(12*time.Hour))
	assert.False(t, window.Contains(7*time.Hour+59*time.Minute))
}
