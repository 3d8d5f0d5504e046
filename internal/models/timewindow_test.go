package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeWindowBoundariesInclusive(t *testing.T) {
	w := TimeWindow{
		DaysOfWeek:  []time.Weekday{time.Monday},
		StartMinute: 540, // 09:00
		EndMinute:   1020,
	}

	assert.True(t, w.MatchesClock(time.Monday, 540))
	assert.True(t, w.MatchesClock(time.Monday, 1020))
	assert.True(t, w.MatchesClock(time.Monday, 700))
	assert.False(t, w.MatchesClock(time.Monday, 539))
	assert.False(t, w.MatchesClock(time.Monday, 1021))
	assert.False(t, w.MatchesClock(time.Tuesday, 700))
}

func TestTimeWindowMidnightWrap(t *testing.T) {
	w := TimeWindow{
		DaysOfWeek:  AllWeek(),
		StartMinute: 1380, // 23:00
		EndMinute:   120,  // 02:00
	}

	assert.True(t, w.MatchesClock(time.Friday, 1380))
	assert.True(t, w.MatchesClock(time.Friday, 1439))
	assert.True(t, w.MatchesClock(time.Saturday, 0))
	assert.True(t, w.MatchesClock(time.Saturday, 120))
	assert.False(t, w.MatchesClock(time.Friday, 121))
	assert.False(t, w.MatchesClock(time.Friday, 1379))
}

func TestTimeWindowZeroWidth(t *testing.T) {
	w := TimeWindow{
		DaysOfWeek:  []time.Weekday{time.Sunday},
		StartMinute: 600,
		EndMinute:   600,
	}

	assert.True(t, w.MatchesClock(time.Sunday, 600))
	assert.False(t, w.MatchesClock(time.Sunday, 599))
	assert.False(t, w.MatchesClock(time.Sunday, 601))
}

func TestTimeWindowMatchesUsesWallClock(t *testing.T) {
	w := TimeWindow{
		DaysOfWeek:  []time.Weekday{time.Saturday},
		StartMinute: 0,
		EndMinute:   1439,
	}

	sat := time.Date(2025, 3, 8, 13, 30, 0, 0, time.UTC)
	tue := time.Date(2025, 3, 11, 13, 30, 0, 0, time.UTC)
	assert.True(t, w.Matches(sat))
	assert.False(t, w.Matches(tue))
}

func TestClockMinute(t *testing.T) {
	assert.Equal(t, "00:00", ClockMinute(0))
	assert.Equal(t, "09:05", ClockMinute(545))
	assert.Equal(t, "23:59", ClockMinute(1439))
}
