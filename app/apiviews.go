package app

import (
	"time"

	"github.com/newsdesk/newsdesk/lib/models"
)

type UserView struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (view UserView) From(entity *models.User) UserView {
	return UserView{
		ID:    entity.ID,
		Email: entity.Email,
		Role:  entity.Role,
	}
}

type PostView struct {
	ID       uint   `json:"id"`
	AuthorID uint   `json:"author_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
	PostedAt string `json:"posted_at"`
}

func (view PostView) From(entity *models.Post) PostView {
	return PostView{
		ID:       entity.ID,
		AuthorID: entity.AuthorID,
		Title:    entity.Title,
		Body:     entity.Body,
		Category: entity.Category,
		Kind:     entity.Kind,
		PostedAt: entity.PostedAt.UTC().Format(time.RFC3339),
	}
}

type SubscriberView struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"user_id"`
	Category string `json:"category"`
	Platform string `json:"platform"`
	Address  string `json:"address,omitempty"`
}

func (view SubscriberView) From(entity *models.Subscriber) SubscriberView {
	return SubscriberView{
		ID:       entity.ID,
		UserID:   entity.UserID,
		Category: entity.Category,
		Platform: entity.Platform,
		Address:  entity.Address,
	}
}

type Fromable[Entity any, Repr any] interface {
	From(Entity) Repr
}

func FromMany[T any, U Fromable[*T, U]](elems []T) []U {
	out := make([]U, len(elems))
	for i := range elems {
		var u U
		out[i] = u.From(&elems[i])
	}
	return out
}
