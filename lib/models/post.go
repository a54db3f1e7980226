package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	KindNews    = "news"
	KindArticle = "article"
)

type Post struct {
	gorm.Model
	AuthorID uint
	Title    string
	Body     string
	Category string `gorm:"index"`
	Kind     string // news or article, fixed at creation
	PostedAt time.Time

	Author User
}

type Posts []Post

func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.Category = NormalizeCategory(p.Category)
	return nil
}
