package model

import "time"

// Task statuses. Completed is terminal for one-time tasks only; recurring
// tasks stay active and their due date advances instead.
const (
	TaskStatusActive    = "active"
	TaskStatusCompleted = "completed"
)

type Task struct {
	ID            int64      `json:"id"`
	ParentUserID  int64      `json:"parent_user_id"`
	Title         string     `json:"title"`
	Notes         string     `json:"notes"`
	ImageURL      string     `json:"image_url"`
	DueDate       time.Time  `json:"due_date"`
	Points        int        `json:"points"`
	RepeatPolicy  string     `json:"repeat_policy"`
	RepeatDays    []int      `json:"repeat_days"`
	IsFamilyTask  bool       `json:"is_family_task"`
	Status        string     `json:"status"`
	CompletedDate *time.Time `json:"completed_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TaskWithAssignments is a task joined with its assignment and current-period
// completion state, as returned by the list operation.
type TaskWithAssignments struct {
	Task
	AssignedChildIDs   []int64  `json:"assigned_children_ids"`
	AssignedChildNames []string `json:"assigned_children_names"`
	// CompletionCount counts completions whose date falls on or after the
	// task's current due date, i.e. completions for the current period.
	CompletionCount int `json:"completion_count"`
}

type TaskCompletion struct {
	ID            int64     `json:"id"`
	TaskID        int64     `json:"task_id"`
	ChildID       int64     `json:"child_id"`
	PointsAwarded int       `json:"points_awarded"`
	CompletedAt   time.Time `json:"completed_at"`
}

// ChildCompletion is a completion joined with its task, for a child's
// completion history view.
type ChildCompletion struct {
	TaskID       int64     `json:"task_id"`
	CompletedAt  time.Time `json:"completed_at"`
	Title        string    `json:"title"`
	ImageURL     string    `json:"image_url"`
	Points       int       `json:"points"`
	IsFamilyTask bool      `json:"is_family_task"`
	RepeatPolicy string    `json:"repeat_policy"`
	Notes        string    `json:"notes"`
}
