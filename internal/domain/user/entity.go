package user

import (
	"time"

	"channelbot/internal/translate"
)

// Profile is one end user, keyed by the externally assigned chat user id.
// Profiles are created on first contact and never deleted while purchase
// history references them.
type Profile struct {
	ID        int64          `gorm:"column:id;primaryKey" json:"id"`
	Username  string         `gorm:"column:username" json:"username,omitempty"`
	FirstName string         `gorm:"column:first_name" json:"first_name,omitempty"`
	Lang      translate.Lang `gorm:"column:lang;type:varchar(8);not null" json:"lang"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Profile) TableName() string { return "users" }
