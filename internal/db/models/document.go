package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/docregistry/internal/authz"
)

type Document struct {
	gorm.Model
	Title           string `gorm:"not null"`
	Description     string
	DocumentNumber  string                     `gorm:"index"`
	DocumentType    authz.DocumentType         `gorm:"not null;index"`
	Confidentiality authz.ConfidentialityLevel `gorm:"not null;index"`
	FilePath        string
	FileType        string
	ReceivedDate    time.Time
	SenderUnitID    uint `gorm:"index"`
	SenderUnit      *Unit
	ReceiverUnitID  uint `gorm:"index"`
	ReceiverUnit    *Unit
	UserID          uint `gorm:"index;not null"` // uploader; grants no rights beyond role+department
	DepartmentID    uint `gorm:"index;not null"`
	Department      *Department
}

// AuthFields projects the attributes the policy evaluator needs, so
// callers can fetch and pass just these instead of the full row.
func (d *Document) AuthFields() authz.DocumentFields {
	return authz.DocumentFields{
		DocumentType:    d.DocumentType,
		Confidentiality: d.Confidentiality,
		DepartmentID:    d.DepartmentID,
	}
}
