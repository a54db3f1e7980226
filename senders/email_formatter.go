package senders

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/newsdesk/newsdesk/lib/models"
)

var (
	//go:embed templates/new_post.html
	newPostHTML     string
	newPostTemplate = template.Must(template.New("new_post.html").Parse(newPostHTML))

	//go:embed templates/subscribed.html
	subscribedHTML     string
	subscribedTemplate = template.Must(template.New("subscribed.html").Parse(subscribedHTML))
)

func mustFillTemplate(tmpl *template.Template, values any) string {
	buf := new(strings.Builder)
	err := tmpl.Execute(buf, values)
	if err != nil {
		return ""
	}
	return buf.String()
}

type NewPostEmail struct {
	Post           *models.Post
	Excerpt        string
	UnsubscribeURL string
}

func (ef *NewPostEmail) Subject() string {
	return fmt.Sprintf("Newsdesk: new post in %s", ef.Post.Category)
}

func (ef *NewPostEmail) Body() string {
	return mustFillTemplate(newPostTemplate, ef)
}

type SubscribedEmail struct {
	Category       string
	UnsubscribeURL string
}

func (ef *SubscribedEmail) Subject() string {
	return "Newsdesk: subscription confirmed"
}

func (ef *SubscribedEmail) Body() string {
	return mustFillTemplate(subscribedTemplate, ef)
}
