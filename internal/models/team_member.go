package models

// TeamMember is shown on the about page.
type TeamMember struct {
	BaseModel
	Name     string `gorm:"not null" json:"name"`
	Role     string `json:"role"`
	Bio      string `gorm:"type:text" json:"bio"`
	Photo    string `json:"photo"`
	LinkedIn string `gorm:"column:linkedin" json:"linkedin"`
}
