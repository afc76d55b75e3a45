package models

// Company is a partner or client organisation displayed with its logo.
type Company struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:191;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Logo        string `json:"logo"`
}
