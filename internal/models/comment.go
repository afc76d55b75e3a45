package models

// Comment is a user's reply to a blog post, hidden until approved.
type Comment struct {
	BaseModel
	Content    string  `gorm:"type:text;not null" json:"content"`
	BlogID     string  `gorm:"size:36;index;not null" json:"blogId"`
	Blog       *Blog   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID     string  `gorm:"size:36;index;not null" json:"userId"`
	User       *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Approved   bool    `gorm:"index;default:false;not null" json:"approved"`
	ApprovedBy *string `gorm:"size:36" json:"approvedBy,omitempty"`
}
