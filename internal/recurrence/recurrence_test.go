package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name    string
		current time.Time
		policy  Policy
		days    []int
		today   time.Time
		want    time.Time
	}{
		{
			name:    "not yet due stays put",
			current: date(2025, time.June, 10),
			policy:  Daily,
			today:   date(2025, time.June, 5),
			want:    date(2025, time.June, 10),
		},
		{
			name:    "due today stays put",
			current: date(2025, time.June, 5),
			policy:  Daily,
			today:   date(2025, time.June, 5),
			want:    date(2025, time.June, 5),
		},
		{
			name:    "daily catches up to today",
			current: date(2025, time.June, 1),
			policy:  Daily,
			today:   date(2025, time.June, 5),
			want:    date(2025, time.June, 5),
		},
		{
			name:    "weekly steps in whole weeks",
			current: date(2025, time.June, 2), // Monday
			policy:  Weekly,
			today:   date(2025, time.June, 10),
			want:    date(2025, time.June, 16), // next Monday on/after today
		},
		{
			name:    "weekly lands exactly on today",
			current: date(2025, time.June, 3),
			policy:  Weekly,
			today:   date(2025, time.June, 10),
			want:    date(2025, time.June, 10),
		},
		{
			name:    "monthly advances one month",
			current: date(2025, time.May, 15),
			policy:  Monthly,
			today:   date(2025, time.June, 1),
			want:    date(2025, time.June, 15),
		},
		{
			name:    "monthly normalizes short months",
			current: date(2025, time.January, 31),
			policy:  Monthly,
			today:   date(2025, time.February, 1),
			want:    date(2025, time.March, 3), // Jan 31 + 1 month
		},
		{
			name:    "custom days picks next allowed weekday",
			current: date(2025, time.June, 2), // Monday
			policy:  CustomDays,
			days:    []int{1, 4},              // Mon, Thu
			today:   date(2025, time.June, 3), // Tuesday
			want:    date(2025, time.June, 5), // Thursday
		},
		{
			name:    "custom days catches up over multiple weeks",
			current: date(2025, time.June, 2), // Monday
			policy:  CustomDays,
			days:    []int{1}, // Mondays only
			today:   date(2025, time.June, 20),
			want:    date(2025, time.June, 23),
		},
		{
			name:    "custom days with empty set behaves like daily",
			current: date(2025, time.June, 1),
			policy:  CustomDays,
			today:   date(2025, time.June, 4),
			want:    date(2025, time.June, 4),
		},
		{
			name:    "one-time never advances",
			current: date(2025, time.June, 1),
			policy:  None,
			today:   date(2025, time.June, 20),
			want:    date(2025, time.June, 1),
		},
		{
			name:    "time of day is ignored",
			current: time.Date(2025, time.June, 1, 23, 30, 0, 0, time.UTC),
			policy:  Daily,
			today:   time.Date(2025, time.June, 3, 8, 0, 0, 0, time.UTC),
			want:    date(2025, time.June, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(tt.current, tt.policy, tt.days, tt.today)
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate() = %v, want %v", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestNextDueDateIdempotent(t *testing.T) {
	today := date(2025, time.June, 20)
	for _, policy := range []Policy{Daily, Weekly, Monthly, CustomDays} {
		first := NextDueDate(date(2025, time.June, 1), policy, []int{2, 6}, today)
		second := NextDueDate(first, policy, []int{2, 6}, today)
		if !second.Equal(first) {
			t.Errorf("%s: second advance moved %v to %v", policy, first, second)
		}
		if first.Before(today) {
			t.Errorf("%s: advanced date %v is before today %v", policy, first, today)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != None {
		t.Errorf("ParsePolicy(\"\") = %v, %v; want none", p, err)
	}
	if p, err := ParsePolicy("weekly"); err != nil || p != Weekly {
		t.Errorf("ParsePolicy(weekly) = %v, %v", p, err)
	}
	if _, err := ParsePolicy("fortnightly"); err == nil {
		t.Error("ParsePolicy should reject unknown policies")
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("5,1,3,1")
	if err != nil {
		t.Fatalf("ParseDays: %v", err)
	}
	want := []int{1, 3, 5}
	if len(days) != len(want) {
		t.Fatalf("ParseDays = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("ParseDays = %v, want %v", days, want)
		}
	}

	if days, err := ParseDays(""); err != nil || days != nil {
		t.Errorf("ParseDays(\"\") = %v, %v; want empty", days, err)
	}
	if _, err := ParseDays("0,3"); err == nil {
		t.Error("ParseDays should reject weekday 0")
	}
	if _, err := ParseDays("8"); err == nil {
		t.Error("ParseDays should reject weekday 8")
	}
}

func TestISOWeekday(t *testing.T) {
	if got := ISOWeekday(date(2025, time.June, 2)); got != 1 { // Monday
		t.Errorf("Monday = %d, want 1", got)
	}
	if got := ISOWeekday(date(2025, time.June, 8)); got != 7 { // Sunday
		t.Errorf("Sunday = %d, want 7", got)
	}
}
