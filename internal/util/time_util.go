package util

import (
	"time"
)

const layout = "2006-01-02"

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(layout) == t2.Format(layout)
}

// DateKey normalizes a timestamp to its calendar-day string, used as a
// map key wherever prices are looked up by day.
func DateKey(t time.Time) string {
	return t.Format(layout)
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(t1, t2 time.Time) bool {
	return t1.Year() == t2.Year() && t1.Month() == t2.Month()
}

// SameWeek reports whether two dates fall in the same ISO week.
func SameWeek(t1, t2 time.Time) bool {
	y1, w1 := t1.ISOWeek()
	y2, w2 := t2.ISOWeek()
	return y1 == y2 && w1 == w2
}

// SameQuarter reports whether two dates fall in the same calendar quarter.
func SameQuarter(t1, t2 time.Time) bool {
	return t1.Year() == t2.Year() && (int(t1.Month())-1)/3 == (int(t2.Month())-1)/3
}
