package handler

import (
	"log/slog"
	"testing"
)

func TestParseTaskRequestRepeatDays(t *testing.T) {
	h := NewTaskHandler(nil, nil, nil, slog.Default())

	// Family tasks skip the per-child ownership lookup, so no store is
	// needed to exercise the validation path.
	base := taskRequest{
		Title:        "Dishes",
		DueDate:      "2025-06-02",
		Points:       5,
		IsFamilyTask: true,
	}

	tests := []struct {
		name     string
		policy   string
		days     []int
		wantDays []int
	}{
		{"daily keeps weekday set", "daily", []int{1, 3, 5}, []int{1, 3, 5}},
		{"custom_days keeps weekday set", "custom_days", []int{2, 6}, []int{2, 6}},
		{"weekly drops weekday set", "weekly", []int{1, 3, 5}, nil},
		{"monthly drops weekday set", "monthly", []int{1}, nil},
		{"one-time drops weekday set", "none", []int{1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.RepeatPolicy = tt.policy
			req.RepeatDays = tt.days

			params, problem := h.parseTaskRequest(1, req)
			if problem != "" {
				t.Fatalf("unexpected validation error: %s", problem)
			}
			if len(params.RepeatDays) != len(tt.wantDays) {
				t.Fatalf("repeat days = %v, want %v", params.RepeatDays, tt.wantDays)
			}
			for i := range tt.wantDays {
				if params.RepeatDays[i] != tt.wantDays[i] {
					t.Fatalf("repeat days = %v, want %v", params.RepeatDays, tt.wantDays)
				}
			}
		})
	}
}

func TestParseTaskRequestValidation(t *testing.T) {
	h := NewTaskHandler(nil, nil, nil, slog.Default())

	// custom_days without a weekday set is rejected.
	_, problem := h.parseTaskRequest(1, taskRequest{
		Title:        "Laundry",
		DueDate:      "2025-06-02",
		RepeatPolicy: "custom_days",
		IsFamilyTask: true,
	})
	if problem == "" {
		t.Error("custom_days without repeat_days accepted")
	}

	// Daily without a set is fine: every day is allowed.
	_, problem = h.parseTaskRequest(1, taskRequest{
		Title:        "Laundry",
		DueDate:      "2025-06-02",
		RepeatPolicy: "daily",
		IsFamilyTask: true,
	})
	if problem != "" {
		t.Errorf("daily without repeat_days rejected: %s", problem)
	}

	// Out-of-range weekdays are rejected.
	_, problem = h.parseTaskRequest(1, taskRequest{
		Title:        "Laundry",
		DueDate:      "2025-06-02",
		RepeatPolicy: "daily",
		RepeatDays:   []int{0, 3},
		IsFamilyTask: true,
	})
	if problem == "" {
		t.Error("weekday 0 accepted")
	}
}
