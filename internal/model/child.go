package model

import "time"

type Child struct {
	ID            int64     `json:"id"`
	ParentUserID  int64     `json:"parent_user_id"`
	Name          string    `json:"name"`
	ProfilePicURL string    `json:"profile_pic_url"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
