package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCivilRoundTrip(t *testing.T) {
	cases := []Civil{
		{1970, 1, 1, 0, 0, 0},
		{1970, 1, 1, 23, 59, 59},
		{1972, 2, 29, 12, 0, 0},
		{1999, 12, 31, 23, 59, 59},
		{2000, 2, 29, 6, 30, 15},
		{2023, 3, 1, 0, 0, 1},
		{2024, 2, 29, 17, 45, 9},
		{2025, 8, 23, 10, 11, 12},
		{2100, 2, 28, 1, 2, 3},
	}
	for _, c := range cases {
		counter, err := CivilToCounter(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
		require.NoError(t, err)
		assert.Equal(t, c, CounterToCivil(counter), "round trip %+v", c)
	}
}

func TestCivilToCounterKnownValues(t *testing.T) {
	epoch, err := CivilToCounter(1970, 1, 1, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), epoch)

	// 2000-01-01T00:00:00Z is a widely published fixture.
	y2k, err := CivilToCounter(2000, 1, 1, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(946684800), y2k)
}

func TestCivilToCounterRejectsPreEpochYears(t *testing.T) {
	_, err := CivilToCounter(1969, 12, 31, 23, 59, 59)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestDayOfWeek(t *testing.T) {
	epoch, err := CivilToCounter(1970, 1, 1, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, DayOfWeek(epoch), "epoch is a Thursday")

	// 2024-02-29 was a Thursday too.
	leap, err := CivilToCounter(2024, 2, 29, 12, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, DayOfWeek(leap))

	// 1970-01-05 is the first Monday after the epoch.
	monday, err := CivilToCounter(1970, 1, 5, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, DayOfWeek(monday))
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2000))
	assert.True(t, IsLeapYear(2024))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2023))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate(2024, 2, 29))
	assert.False(t, IsValidDate(2023, 2, 29))
	assert.False(t, IsValidDate(2023, 13, 1))
	assert.False(t, IsValidDate(2023, 4, 31))
	assert.False(t, IsValidDate(1969, 1, 1))
	assert.True(t, IsValidDateTime(2023, 6, 15, 23, 59, 59))
	assert.False(t, IsValidDateTime(2023, 6, 15, 24, 0, 0))
}

func TestAddMonthsClampsDay(t *testing.T) {
	jan31, err := CivilToCounter(2024, 1, 31, 9, 30, 0)
	require.NoError(t, err)

	got, err := AddMonths(jan31, 1)
	require.NoError(t, err)
	c := CounterToCivil(got)
	assert.Equal(t, Civil{2024, 2, 29, 9, 30, 0}, c, "2024 is a leap year")

	// Non-leap February clamps to the 28th.
	jan31n, err := CivilToCounter(2023, 1, 31, 9, 30, 0)
	require.NoError(t, err)
	got, err = AddMonths(jan31n, 1)
	require.NoError(t, err)
	assert.Equal(t, Civil{2023, 2, 28, 9, 30, 0}, CounterToCivil(got))
}

func TestAddMonthsCrossesYear(t *testing.T) {
	nov, err := CivilToCounter(2023, 11, 15, 8, 0, 0)
	require.NoError(t, err)
	got, err := AddMonths(nov, 3)
	require.NoError(t, err)
	assert.Equal(t, Civil{2024, 2, 15, 8, 0, 0}, CounterToCivil(got))
}

func TestAddYearsClampsLeapDay(t *testing.T) {
	feb29, err := CivilToCounter(2024, 2, 29, 0, 0, 0)
	require.NoError(t, err)
	got, err := AddYears(feb29, 1)
	require.NoError(t, err)
	assert.Equal(t, Civil{2025, 2, 28, 0, 0, 0}, CounterToCivil(got))
}

func TestAddRejectsBackwardResult(t *testing.T) {
	now, err := CivilToCounter(2024, 6, 1, 0, 0, 0)
	require.NoError(t, err)
	_, err = AddDays(now, -1)
	assert.ErrorIs(t, err, ErrRange)
	_, err = AddMonths(now, -1)
	assert.ErrorIs(t, err, ErrRange)
}

func TestSubRejectsForwardOrNegativeResult(t *testing.T) {
	now, err := CivilToCounter(2024, 6, 1, 0, 0, 0)
	require.NoError(t, err)
	_, err = SubHours(now, -1)
	assert.ErrorIs(t, err, ErrRange)

	_, err = SubDays(10, 1)
	assert.ErrorIs(t, err, ErrRange)

	// Subtracting into pre-epoch years is a domain failure.
	_, err = SubYears(now, 60)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestSubMonths(t *testing.T) {
	mar31, err := CivilToCounter(2024, 3, 31, 10, 0, 0)
	require.NoError(t, err)
	got, err := SubMonths(mar31, 1)
	require.NoError(t, err)
	assert.Equal(t, Civil{2024, 2, 29, 10, 0, 0}, CounterToCivil(got))
}

func TestAddSubClockUnits(t *testing.T) {
	base, err := CivilToCounter(2024, 6, 1, 23, 0, 0)
	require.NoError(t, err)

	got, err := AddHours(base, 2)
	require.NoError(t, err)
	assert.Equal(t, Civil{2024, 6, 2, 1, 0, 0}, CounterToCivil(got))

	got, err = AddMinutes(base, 61)
	require.NoError(t, err)
	assert.Equal(t, Civil{2024, 6, 2, 0, 1, 0}, CounterToCivil(got))

	got, err = AddSeconds(base, 3601)
	require.NoError(t, err)
	assert.Equal(t, Civil{2024, 6, 2, 0, 0, 1}, CounterToCivil(got))

	got, err = SubSeconds(base, 1)
	require.NoError(t, err)
	assert.Equal(t, Civil{2024, 6, 1, 22, 59, 59}, CounterToCivil(got))
}

func TestDiffs(t *testing.T) {
	from, err := CivilToCounter(2022, 11, 30, 0, 0, 0)
	require.NoError(t, err)
	to, err := CivilToCounter(2024, 2, 1, 12, 0, 0)
	require.NoError(t, err)

	years, err := DiffYears(from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, years, "field difference, not elapsed time")

	months, err := DiffMonths(from, to)
	require.NoError(t, err)
	assert.Equal(t, 15, months)

	days, err := DiffDays(from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(428), days)

	hours, err := DiffHours(from, to)
	require.NoError(t, err)
	assert.Equal(t, days*24+12, hours)

	secs, err := DiffSeconds(from, to)
	require.NoError(t, err)
	assert.Equal(t, to-from, secs)

	_, err = DiffDays(to, from)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestLocalOffsetShift(t *testing.T) {
	const offset = int64(7 * 3600)
	utc, err := CivilToCounter(2024, 12, 31, 20, 0, 0)
	require.NoError(t, err)

	local := ToLocalOffset(utc, offset)
	assert.Equal(t, Civil{2025, 1, 1, 3, 0, 0}, CounterToCivil(local))
	assert.Equal(t, utc, FromLocalOffset(local, offset))
}
