package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/docregistry/internal/authz"
)

type User struct {
	gorm.Model
	Username     string     `gorm:"unique;not null"`
	Email        string     `gorm:"unique;not null"`
	PasswordHash string     `gorm:"not null"` // Bcrypt hash of password
	Role         authz.Role `gorm:"not null;default:'USER'"`
	Admin        bool       `gorm:"not null;default:false"` // moderation capability, orthogonal to rank
	Rank         string
	Position     string
	Affiliation  string
	PhoneNumber  string
	Address      string
	ImageURL     string
	DepartmentID uint `gorm:"index"` // 0 for top-tier roles spanning all departments
	Department   *Department
	ActiveStatus bool `gorm:"not null;default:true"`
	LastLogin    time.Time
	Documents    []Document
	Comments     []Comment
}

// Principal projects the authorization-relevant fields of the user. It is
// constructed once per authenticated request and read-only afterwards.
func (u *User) Principal() authz.Principal {
	return authz.Principal{
		ID:           u.ID,
		Role:         u.Role,
		Admin:        u.Admin,
		DepartmentID: u.DepartmentID,
	}
}
