package models

// User is an end-user account. Verified flips to true only after the owner
// proves control of Email with a one-time code.
type User struct {
	BaseModel
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Verified bool   `gorm:"default:false;not null" json:"verified"`
}
