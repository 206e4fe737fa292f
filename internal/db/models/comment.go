package models

import "gorm.io/gorm"

// Comment is attached to a document. Authors manage their own comments;
// admins may moderate any comment regardless of rank.
type Comment struct {
	gorm.Model
	Content    string `gorm:"not null"`
	AuthorID   uint   `gorm:"index;not null"`
	Author     *User
	DocumentID uint `gorm:"index;not null"`
}
