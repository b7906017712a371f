package store

import "errors"

// Business failures surfaced by the completion and claim transactions.
// Anything else coming out of a store is a storage fault: handlers log it
// and answer with a generic 500.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrChildNotFound  = errors.New("child not found")
	ErrRewardNotFound = errors.New("reward not found")

	// ErrRewardInactive means the reward exists but is hidden from the shop.
	ErrRewardInactive = errors.New("reward is not active")

	// ErrNotYetDue means a recurring task's cycle has not started.
	ErrNotYetDue = errors.New("task is not yet due")

	// ErrAlreadyCompleted means the child already completed the task's
	// current cycle (or, for a one-time task, the task is finished).
	ErrAlreadyCompleted = errors.New("task already completed for the current period")

	// ErrFamilyTaskClaimed means another family member won the race for a
	// shared task's current cycle.
	ErrFamilyTaskClaimed = errors.New("family task already completed by another family member")

	ErrInsufficientPoints = errors.New("not enough points")
)
