package models

import "gorm.io/gorm"

// Unit is an external organization that sends or receives documents.
type Unit struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Address     string
	PhoneNumber string
}
