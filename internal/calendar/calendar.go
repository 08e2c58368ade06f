// Package calendar converts between a linear seconds-since-epoch counter and
// proleptic-Gregorian civil date-time fields using integer arithmetic only.
// It never touches time.Time: the ledger stores raw counters and this package
// is the single place they become human-readable dates.
package calendar

import "errors"

var (
	// ErrDomain is returned for inputs outside the supported domain,
	// e.g. years before 1970 or a diff with from > to.
	ErrDomain = errors.New("calendar: input outside supported domain")

	// ErrRange is returned when an add would move time backward or a sub
	// would move it forward (arithmetic wrap), or a sub would go below zero.
	ErrRange = errors.New("calendar: result out of range")
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400

	// Julian day number of 1970-01-01.
	epochJDN = 2440588
)

// Civil is a calendar date-time derived from a counter. It is produced on
// demand and never stored.
type Civil struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// CivilToCounter converts civil fields to a seconds counter via the integer
// Julian-day-number formula. Years before 1970 are rejected; field validity
// is not checked here, callers that need it use IsValidDateTime.
func CivilToCounter(year, month, day, hour, minute, second int) (int64, error) {
	if year < 1970 {
		return 0, ErrDomain
	}
	a := int64((14 - month) / 12)
	y := int64(year) + 4800 - a
	m := int64(month) + 12*a - 3
	jdn := int64(day) + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	days := jdn - epochJDN
	return days*secondsPerDay +
		int64(hour)*secondsPerHour +
		int64(minute)*secondsPerMinute +
		int64(second), nil
}

// CounterToCivil is the inverse Julian-day conversion. Total for all
// non-negative counters.
func CounterToCivil(counter int64) Civil {
	days := counter / secondsPerDay
	rem := counter % secondsPerDay

	a := days + epochJDN + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153

	return Civil{
		Year:   int(100*b + d - 4800 + m/10),
		Month:  int(m + 3 - 12*(m/10)),
		Day:    int(e - (153*m+2)/5 + 1),
		Hour:   int(rem / secondsPerHour),
		Minute: int(rem % secondsPerHour / secondsPerMinute),
		Second: int(rem % secondsPerMinute),
	}
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days in the given month, accounting for
// leap years.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// IsValidDate reports whether the date fields form a real calendar date at or
// after 1970.
func IsValidDate(year, month, day int) bool {
	if year < 1970 || month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= DaysInMonth(year, month)
}

// IsValidDateTime reports whether all six fields are in range.
func IsValidDateTime(year, month, day, hour, minute, second int) bool {
	if !IsValidDate(year, month, day) {
		return false
	}
	return hour >= 0 && hour < 24 &&
		minute >= 0 && minute < 60 &&
		second >= 0 && second < 60
}

// DayOfWeek returns the ISO weekday of the counter's date: 1=Monday through
// 7=Sunday. Day zero of the epoch is a Thursday.
func DayOfWeek(counter int64) int {
	return int((counter/secondsPerDay+3)%7) + 1
}

// AddYears adds n calendar years, clamping the day to the target month's last
// valid day and preserving the clock time.
func AddYears(counter int64, n int) (int64, error) {
	c := CounterToCivil(counter)
	return shiftCivil(counter, c, c.Year+n, c.Month, false)
}

// AddMonths adds n calendar months with day-of-month clamping, so e.g.
// Jan 31 + 1 month lands on the last day of February.
func AddMonths(counter int64, n int) (int64, error) {
	c := CounterToCivil(counter)
	total := c.Year*12 + (c.Month - 1) + n
	return shiftCivil(counter, c, total/12, total%12+1, false)
}

// AddDays adds n days to the counter.
func AddDays(counter int64, n int) (int64, error) {
	return addSeconds(counter, int64(n)*secondsPerDay)
}

// AddHours adds n hours to the counter.
func AddHours(counter int64, n int) (int64, error) {
	return addSeconds(counter, int64(n)*secondsPerHour)
}

// AddMinutes adds n minutes to the counter.
func AddMinutes(counter int64, n int) (int64, error) {
	return addSeconds(counter, int64(n)*secondsPerMinute)
}

// AddSeconds adds n seconds to the counter.
func AddSeconds(counter int64, n int) (int64, error) {
	return addSeconds(counter, int64(n))
}

// SubYears subtracts n calendar years with day clamping.
func SubYears(counter int64, n int) (int64, error) {
	c := CounterToCivil(counter)
	return shiftCivil(counter, c, c.Year-n, c.Month, true)
}

// SubMonths subtracts n calendar months with day clamping.
func SubMonths(counter int64, n int) (int64, error) {
	c := CounterToCivil(counter)
	total := c.Year*12 + (c.Month - 1) - n
	if total < 0 {
		return 0, ErrDomain
	}
	return shiftCivil(counter, c, total/12, total%12+1, true)
}

// SubDays subtracts n days from the counter.
func SubDays(counter int64, n int) (int64, error) {
	return subSeconds(counter, int64(n)*secondsPerDay)
}

// SubHours subtracts n hours from the counter.
func SubHours(counter int64, n int) (int64, error) {
	return subSeconds(counter, int64(n)*secondsPerHour)
}

// SubMinutes subtracts n minutes from the counter.
func SubMinutes(counter int64, n int) (int64, error) {
	return subSeconds(counter, int64(n)*secondsPerMinute)
}

// SubSeconds subtracts n seconds from the counter.
func SubSeconds(counter int64, n int) (int64, error) {
	return subSeconds(counter, int64(n))
}

// DiffYears returns the calendar-field year difference between two counters.
func DiffYears(from, to int64) (int, error) {
	if from > to {
		return 0, ErrDomain
	}
	return CounterToCivil(to).Year - CounterToCivil(from).Year, nil
}

// DiffMonths returns the calendar-field month difference between two counters.
func DiffMonths(from, to int64) (int, error) {
	if from > to {
		return 0, ErrDomain
	}
	a, b := CounterToCivil(from), CounterToCivil(to)
	return (b.Year-a.Year)*12 + (b.Month - a.Month), nil
}

// DiffDays returns the number of whole days elapsed between two counters.
func DiffDays(from, to int64) (int64, error) {
	return diffSeconds(from, to, secondsPerDay)
}

// DiffHours returns the number of whole hours elapsed between two counters.
func DiffHours(from, to int64) (int64, error) {
	return diffSeconds(from, to, secondsPerHour)
}

// DiffMinutes returns the number of whole minutes elapsed between two counters.
func DiffMinutes(from, to int64) (int64, error) {
	return diffSeconds(from, to, secondsPerMinute)
}

// DiffSeconds returns the elapsed seconds between two counters.
func DiffSeconds(from, to int64) (int64, error) {
	return diffSeconds(from, to, 1)
}

// ToLocalOffset shifts a counter into a fixed-offset local time. There is no
// daylight-saving logic.
func ToLocalOffset(counter, offsetSeconds int64) int64 {
	return counter + offsetSeconds
}

// FromLocalOffset shifts a fixed-offset local counter back to UTC.
func FromLocalOffset(counter, offsetSeconds int64) int64 {
	return counter - offsetSeconds
}

// shiftCivil rebuilds a counter from the original civil fields with a new
// year/month, clamping the day and keeping the clock time.
func shiftCivil(counter int64, c Civil, year, month int, sub bool) (int64, error) {
	day := c.Day
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	out, err := CivilToCounter(year, month, day, c.Hour, c.Minute, c.Second)
	if err != nil {
		return 0, err
	}
	if sub {
		if out > counter {
			return 0, ErrRange
		}
	} else if out < counter {
		return 0, ErrRange
	}
	return out, nil
}

func addSeconds(counter, n int64) (int64, error) {
	out := counter + n
	if out < counter {
		return 0, ErrRange
	}
	return out, nil
}

func subSeconds(counter, n int64) (int64, error) {
	out := counter - n
	if out > counter || out < 0 {
		return 0, ErrRange
	}
	return out, nil
}

func diffSeconds(from, to, unit int64) (int64, error) {
	if from > to {
		return 0, ErrDomain
	}
	return (to - from) / unit, nil
}
