package model

import "time"

type Reward struct {
	ID             int64     `json:"id"`
	ParentUserID   int64     `json:"parent_user_id"`
	Title          string    `json:"title"`
	ImageURL       string    `json:"image_url"`
	RequiredPoints int       `json:"required_points"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type ClaimedReward struct {
	ID          int64     `json:"id"`
	RewardID    int64     `json:"reward_id"`
	ChildID     int64     `json:"child_id"`
	PointsSpent int       `json:"points_spent"`
	ClaimedAt   time.Time `json:"claimed_at"`
}
