package models

import "time"

// GalleryImage is a captioned photo in the public gallery.
type GalleryImage struct {
	BaseModel
	Image       string    `gorm:"not null" json:"image"`
	Title       string    `json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Date        time.Time `gorm:"index" json:"date"`
	AdminID     string    `gorm:"size:36;index" json:"adminId"`
}
