package models

import "gorm.io/datatypes"

// CourseModule is one unit of a course syllabus.
type CourseModule struct {
	Title         string   `json:"title"`
	DurationHours float64  `json:"durationHours"`
	Topics        []string `json:"topics"`
}

type Course struct {
	BaseModel
	Title       string                            `gorm:"not null" json:"title"`
	Heading     string                            `json:"heading"`
	Description string                            `gorm:"type:text" json:"description"`
	Tools       datatypes.JSONSlice[string]       `json:"tools"`
	Modules     datatypes.JSONSlice[CourseModule] `json:"modules"`
	CoverImage  string                            `json:"coverImage"`
	AdminID     string                            `gorm:"size:36;index" json:"adminId"`
	Order       int                               `gorm:"column:display_order;uniqueIndex;not null" json:"order"`
}

// SetOrder assigns the display position.
func (c *Course) SetOrder(order int) { c.Order = order }
