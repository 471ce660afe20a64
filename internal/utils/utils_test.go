package utils

import (
	"testing"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	h, m, err = ParseClock("7:05")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"", "24:00", "12:60", "12-30", "noon", "1230"} {
		_, _, err := ParseClock(bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTime, bad)
	}
}

func TestDailyTimeUTC(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC)

	at, err := DailyTimeUTC(now, 9, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), at)

	_, err = DailyTimeUTC(now, 8, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTime)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"31.12.2024", "31-12-2024", "31/12/2024", "2024-12-31", "31122024", "20241231"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseDate("завтра")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)
}

func TestDateHelpers(t *testing.T) {
	a := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 5, 1, 0, 1, 0, 0, time.UTC)
	c := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(a, b))
	assert.True(t, BeforeDate(a, c))
	assert.False(t, BeforeDate(a, b))
	assert.Equal(t, "01.05.2024", FormatDate(a))
}
