package lib

import (
	"context"
	"testing"
	"time"

	"github.com/newsdesk/newsdesk/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPosts(t *testing.T, svc *Service, db *gorm.DB) *models.User {
	t.Helper()
	author := seedAuthor(t, svc)

	fixtures := []struct {
		kind, title, category string
		postedAt              time.Time
	}{
		{models.KindNews, "Budget vote passes", "politics", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		{models.KindArticle, "Budget analysis", "politics", time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)},
		{models.KindNews, "Cup final recap", "sports", time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)},
	}
	for _, f := range fixtures {
		post, err := svc.CreatePost(context.Background(), author.ID, f.kind, f.title, "body", f.category)
		require.NoError(t, err)
		require.NoError(t, db.Model(post).Update("posted_at", f.postedAt).Error)
	}
	return author
}

func titles(posts models.Posts) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestListPostsNewestFirst(t *testing.T) {
	svc, _, db := newTestService(t)
	seedPosts(t, svc, db)

	posts, err := svc.ListPosts(context.Background(), PostFilter{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Cup final recap", "Budget analysis", "Budget vote passes"}, titles(posts))
}

func TestListPostsByCategory(t *testing.T) {
	svc, _, db := newTestService(t)
	seedPosts(t, svc, db)

	// Filter input is normalized the same way categories are stored.
	posts, err := svc.ListPosts(context.Background(), PostFilter{Category: " Politics "})
	require.NoError(t, err)

	assert.Equal(t, []string{"Budget analysis", "Budget vote passes"}, titles(posts))
}

func TestListPostsByKind(t *testing.T) {
	svc, _, db := newTestService(t)
	seedPosts(t, svc, db)

	posts, err := svc.ListPosts(context.Background(), PostFilter{Kind: models.KindArticle})
	require.NoError(t, err)

	assert.Equal(t, []string{"Budget analysis"}, titles(posts))
}

func TestListPostsByTitleSubstring(t *testing.T) {
	svc, _, db := newTestService(t)
	seedPosts(t, svc, db)

	posts, err := svc.ListPosts(context.Background(), PostFilter{TitleLike: "Budget"})
	require.NoError(t, err)

	assert.Len(t, posts, 2)
}

func TestListPostsByDateRange(t *testing.T) {
	svc, _, db := newTestService(t)
	seedPosts(t, svc, db)

	posts, err := svc.ListPosts(context.Background(), PostFilter{
		PostedAfter:  time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		PostedBefore: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Budget analysis"}, titles(posts))
}

func TestListPostsPagination(t *testing.T) {
	svc, _, db := newTestService(t)
	seedPosts(t, svc, db)

	page1, err := svc.ListPosts(context.Background(), PostFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	page2, err := svc.ListPosts(context.Background(), PostFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Cup final recap", "Budget analysis"}, titles(page1))
	assert.Equal(t, []string{"Budget vote passes"}, titles(page2))
}

func TestFindPostMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.FindPost(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
