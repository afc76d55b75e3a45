package models

// Consult is a consultation request submitted from the public site.
type Consult struct {
	BaseModel
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"index;not null" json:"email"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Interest string `gorm:"not null" json:"interest"`
	Message  string `gorm:"type:text;not null" json:"message"`
}
