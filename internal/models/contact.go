package models

// Contact is a message left through the contact form.
type Contact struct {
	BaseModel
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"index;not null" json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
}
