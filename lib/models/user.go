package models

import (
	"database/sql"

	"gorm.io/gorm"
)

const (
	RoleReader = "reader"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique"`
	PasswordHash string
	Role         string `gorm:"default:reader"`
	LastLoginAt  sql.NullTime

	Posts       []Post `gorm:"foreignKey:AuthorID"`
	Subscribers []Subscriber
}
