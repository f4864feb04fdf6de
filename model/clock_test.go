package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Clock
		err      bool
	}{
		{"5:58", Clock{Hour: 5, Minute: 58}, false},
		{"08:00", Clock{Hour: 8}, false},
		{" 12:30 ", Clock{Hour: 12, Minute: 30}, false},
		{"24:10", Clock{Day: 1, Hour: 0, Minute: 10}, false},
		{"-", Clock{}, true},
		{"8", Clock{}, true},
		{"8:00:00", Clock{}, true},
		{"a:00", Clock{}, true},
		{"8:b", Clock{}, true},
		{"8:60", Clock{}, true},
		{"-1:00", Clock{}, true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			c, err := ParseClock(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, c)
		})
	}
}

func TestClockOrdering(t *testing.T) {
	// 09:05 is after 08:50 even though its minute is smaller.
	assert.True(t, NewClock(8, 50).Before(NewClock(9, 5)))
	assert.False(t, NewClock(9, 5).Before(NewClock(8, 50)))
	assert.True(t, NewClock(9, 5).After(NewClock(8, 50)))

	assert.Equal(t, 0, NewClock(8, 0).Compare(NewClock(8, 0)))
	assert.False(t, NewClock(8, 0).Before(NewClock(8, 0)))

	nextDay := Clock{Day: 1, Hour: 0, Minute: 5}
	assert.True(t, NewClock(23, 55).Before(nextDay))
}

func TestClockSub(t *testing.T) {
	assert.Equal(t, 25, NewClock(8, 25).Sub(NewClock(8, 0)))
	assert.Equal(t, -25, NewClock(8, 0).Sub(NewClock(8, 25)))
	assert.Equal(t, 10, Clock{Day: 1, Hour: 0, Minute: 5}.Sub(NewClock(23, 55)))

	// Not normalized components still subtract as minutes.
	assert.Equal(t, 60, Clock{Hour: 8, Minute: 70}.Sub(NewClock(8, 10)))
}

func TestClockAddAndMinutes(t *testing.T) {
	assert.Equal(t, NewClock(9, 10), NewClock(8, 50).Add(20))
	assert.Equal(t, Clock{Day: 1, Hour: 0, Minute: 10}, NewClock(23, 50).Add(20))
	assert.Equal(t, 8*60+30, NewClock(8, 30).Minutes())
	assert.Equal(t, Clock{Day: -1, Hour: 23, Minute: 0}, ClockFromMinutes(-60))
}

func TestClockString(t *testing.T) {
	assert.Equal(t, "05:08", NewClock(5, 8).String())
	assert.Equal(t, "00:10+1d", Clock{Day: 1, Minute: 10}.String())
}

func TestParseDayType(t *testing.T) {
	d, err := ParseDayType("Weekend")
	require.NoError(t, err)
	assert.Equal(t, DayTypeWeekend, d)

	d, err = ParseDayType("")
	require.NoError(t, err)
	assert.Equal(t, DayTypeWeekday, d)

	_, err = ParseDayType("holiday")
	assert.Error(t, err)

	assert.Equal(t, "weekend", DayTypeWeekend.String())
	assert.Equal(t, "return", DirectionReturn.String())
}
