package models

// Admin is a content administrator. Admins live in their own table and
// authenticate against their own session realm.
type Admin struct {
	BaseModel
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
}
