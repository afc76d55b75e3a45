package models

import "time"

// OneTimeCode is the pending email verification code of a user. The unique
// index on UserID keeps at most one live code per user.
type OneTimeCode struct {
	BaseModel
	UserID    string    `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CodeHash  string    `gorm:"size:64;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
}

// Expired reports whether the code can no longer be redeemed at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
