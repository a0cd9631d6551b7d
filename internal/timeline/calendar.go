package timeline

import "time"

// isWorkingDay reports whether d falls Monday through Friday.
func isWorkingDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// truncateDay drops the clock part of t, keeping its calendar date in UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// onOrAfterWorkingDay returns d, or the next working day when d is a weekend.
func onOrAfterWorkingDay(d time.Time) time.Time {
	d = truncateDay(d)
	for !isWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// addWorkingDays moves n working days forward from d. d is assumed to be a
// working day; n == 0 returns d.
func addWorkingDays(d time.Time, n int) time.Time {
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if isWorkingDay(d) {
			n--
		}
	}
	return d
}

// workingDaysBetween counts working days from start to end inclusive.
func workingDaysBetween(start, end time.Time) int {
	n := 0
	for d := truncateDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if isWorkingDay(d) {
			n++
		}
	}
	return n
}
