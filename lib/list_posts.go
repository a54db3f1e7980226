package lib

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/lib/models"
)

const defaultPageSize = 10

// PostFilter mirrors the list endpoint's query string. Zero values mean "no
// constraint".
type PostFilter struct {
	Category     string
	Kind         string
	AuthorID     uint
	TitleLike    string
	PostedAfter  time.Time
	PostedBefore time.Time
	Page         int
	PageSize     int
}

func (svc *publishing) ListPosts(ctx context.Context, filter PostFilter) (models.Posts, error) {
	q := svc.db.WithContext(ctx).Model(&models.Post{})

	if filter.Category != "" {
		q = q.Where("category = ?", models.NormalizeCategory(filter.Category))
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.TitleLike != "" {
		q = q.Where("title LIKE ?", "%"+filter.TitleLike+"%")
	}
	if !filter.PostedAfter.IsZero() {
		q = q.Where("posted_at >= ?", filter.PostedAfter)
	}
	if !filter.PostedBefore.IsZero() {
		q = q.Where("posted_at < ?", filter.PostedBefore)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	var posts models.Posts
	tx := q.
		Order("posted_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&posts)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (svc *publishing) FindPost(ctx context.Context, postID uint) (*models.Post, error) {
	post := &models.Post{}
	tx := svc.db.WithContext(ctx).First(post, postID)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return post, nil
}
