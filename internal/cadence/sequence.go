// Package cadence computes the twice-weekly release dates of a learner's tasks.
//
// Tasks come in pairs: the first of each pair lands on a Monday and the second
// three days later on the Thursday. The pointer advances incrementally from
// the previous date, so a partial schedule can be extended from its last row
// alone and still reproduce the dates a full computation would have produced.
package cadence

import "time"

// Dates returns count release dates starting from start.
//
// The first date of each pair is the next Monday after the pointer. Only the
// very first task may land on start itself, and only if start is a Monday.
// The second date of each pair is the first plus three days.
func Dates(start Date, count int) []Date {
	if count <= 0 {
		return []Date{}
	}

	out := make([]Date, 0, count)
	current := start
	for i := 0; i < count; i++ {
		if i%2 == 0 {
			days := daysUntilMonday(current)
			if days == 0 && i > 0 {
				days = 7
			}
			current = current.AddDays(days)
		} else {
			current = current.AddDays(3)
		}
		out = append(out, current)
	}
	return out
}

// Continue extends a schedule whose last task is lastNumber, placed on last,
// by count more dates. The jump after an odd-numbered task is +3 days
// (Monday to Thursday) and after an even-numbered task +4 days (Thursday to
// Monday).
func Continue(lastNumber int, last Date, count int) []Date {
	if count <= 0 {
		return []Date{}
	}

	out := make([]Date, 0, count)
	next := last.AddDays(stepAfter(lastNumber))
	for n := lastNumber + 1; n <= lastNumber+count; n++ {
		out = append(out, next)
		next = next.AddDays(stepAfter(n))
	}
	return out
}

// stepAfter returns the gap in days between task n and task n+1.
func stepAfter(n int) int {
	if n%2 == 1 {
		return 3
	}
	return 4
}

// daysUntilMonday returns 0..6, the days from d to the next Monday on or after d.
func daysUntilMonday(d Date) int {
	return (7 - int(d.Weekday()-time.Monday)) % 7
}
