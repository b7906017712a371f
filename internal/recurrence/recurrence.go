package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Policy is a task's repeat rule.
type Policy string

const (
	None       Policy = "none"
	Daily      Policy = "daily"
	Weekly     Policy = "weekly"
	Monthly    Policy = "monthly"
	CustomDays Policy = "custom_days"
)

var policies = map[string]Policy{
	"none":        None,
	"daily":       Daily,
	"weekly":      Weekly,
	"monthly":     Monthly,
	"custom_days": CustomDays,
}

// ParsePolicy validates and returns a Policy. The empty string means none.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return None, nil
	}
	p, ok := policies[s]
	if !ok {
		return None, fmt.Errorf("unknown repeat policy: %q", s)
	}
	return p, nil
}

// Recurring reports whether tasks with this policy repeat.
func (p Policy) Recurring() bool {
	return p != None && p != ""
}

// ParseDays parses a comma-separated list of ISO weekday numbers
// (1=Monday..7=Sunday), e.g. "1,3,5". The empty string yields an empty set.
// Duplicates are dropped and the result is sorted.
func ParseDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	seen := make(map[int]bool)
	var days []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 7 {
			return nil, fmt.Errorf("invalid weekday: %q", part)
		}
		if !seen[n] {
			seen[n] = true
			days = append(days, n)
		}
	}
	sort.Ints(days)
	return days, nil
}

// FormatDays serializes a weekday set back to its comma-separated form.
func FormatDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// ISOWeekday returns the weekday of t numbered 1=Monday..7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DateOnly strips the time-of-day component, keeping t's location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDueDate computes the due date of a recurring task's next cycle.
//
// If current is on or after today it is returned unchanged: a task that is
// not yet due does not advance. Otherwise the date steps forward one cycle
// at a time until it lands on or after today, so a task missed for several
// cycles catches up to the current or next upcoming occurrence:
//
//   - Weekly adds 7 days per step.
//   - Monthly adds one calendar month per step (normalized per time.AddDate;
//     Jan 31 + 1 month rolls into early March).
//   - Daily and CustomDays step to the next date whose weekday is in days.
//     An empty set allows every day. The scan window is 7 days; if nothing
//     matches (impossible for a non-empty valid set) the step falls back to
//     +1 day so the loop always makes progress.
//
// Policy None is not recurring; current is returned unchanged. Both inputs
// are treated as calendar dates — time-of-day is ignored.
func NextDueDate(current time.Time, policy Policy, days []int, today time.Time) time.Time {
	current = DateOnly(current)
	today = DateOnly(today)

	if !policy.Recurring() {
		return current
	}
	if !current.Before(today) {
		return current
	}

	for current.Before(today) {
		switch policy {
		case Weekly:
			current = current.AddDate(0, 0, 7)
		case Monthly:
			current = current.AddDate(0, 1, 0)
		default: // Daily, CustomDays
			current = nextAllowedDay(current, days)
		}
	}
	return current
}

// nextAllowedDay returns the first date after current whose ISO weekday is in
// days, scanning at most 7 days ahead. An empty set means every day is
// allowed. The +1 fallback guarantees forward progress.
func nextAllowedDay(current time.Time, days []int) time.Time {
	if len(days) == 0 {
		return current.AddDate(0, 0, 1)
	}
	allowed := make(map[int]bool, len(days))
	for _, d := range days {
		allowed[d] = true
	}
	for i := 1; i <= 7; i++ {
		candidate := current.AddDate(0, 0, i)
		if allowed[ISOWeekday(candidate)] {
			return candidate
		}
	}
	return current.AddDate(0, 0, 1)
}
