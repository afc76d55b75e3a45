package models

import "gorm.io/datatypes"

// Offering is a service the business sells. It is stored in the services table.
type Offering struct {
	BaseModel
	Name        string                      `gorm:"uniqueIndex;size:191;not null" json:"name"`
	Description datatypes.JSONSlice[string] `json:"description"`
	Process     datatypes.JSONSlice[string] `json:"process"`
	Benefits    datatypes.JSONSlice[string] `json:"benefits"`
	AdminID     string                      `gorm:"size:36;index" json:"adminId"`
	Order       int                         `gorm:"column:display_order;uniqueIndex;not null" json:"order"`
}

// TableName keeps the storage name aligned with the public resource name.
func (Offering) TableName() string { return "services" }

// SetOrder assigns the display position.
func (o *Offering) SetOrder(order int) { o.Order = order }
