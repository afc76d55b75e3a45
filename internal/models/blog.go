package models

import "gorm.io/datatypes"

// BlogStatus tracks moderation of a post.
type BlogStatus int

const (
	BlogPending  BlogStatus = 0
	BlogApproved BlogStatus = 1
	BlogRejected BlogStatus = 2
)

// MaxBlogImages caps the images attached to one post.
const MaxBlogImages = 10

// Blog is a user-authored post that becomes public once an admin approves it.
type Blog struct {
	BaseModel
	Title           string                      `gorm:"not null" json:"title"`
	Excerpt         string                      `json:"excerpt"`
	Content         string                      `gorm:"type:text;not null" json:"content"`
	Category        string                      `gorm:"index" json:"category"`
	Images          datatypes.JSONSlice[string] `json:"images"`
	UserID          string                      `gorm:"size:36;index;not null" json:"userId"`
	User            *User                       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Approved        bool                        `gorm:"index;default:false;not null" json:"approved"`
	ApprovedBy      *string                     `gorm:"size:36" json:"approvedBy,omitempty"`
	Status          BlogStatus                  `gorm:"default:0;not null" json:"status"`
	RejectionReason string                      `json:"rejectionReason,omitempty"`
}
