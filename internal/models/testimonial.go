package models

type Testimonial struct {
	BaseModel
	Name        string `gorm:"not null" json:"name"`
	Designation string `json:"designation"`
	Content     string `gorm:"type:text;not null" json:"content"`
	Image       string `json:"image"`
}
