package model

import "time"

// Notification types.
const (
	NotificationTaskCompleted  = "task_completed_by_child"
	NotificationRewardClaimed  = "reward_claimed"
	NotificationPointsAdjusted = "points_adjusted"
)

type Notification struct {
	ID           int64     `json:"id"`
	ParentUserID int64     `json:"parent_user_id"`
	ChildID      *int64    `json:"child_id"`
	TaskID       *int64    `json:"task_id"`
	RewardID     *int64    `json:"reward_id"`
	Type         string    `json:"notification_type"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}
