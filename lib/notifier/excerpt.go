package notifier

import (
	"strings"

	"github.com/antchfx/htmlquery"
)

// Excerpt reduces an HTML post body to a short plain-text preview for the
// notification message.
func Excerpt(body string, maxLen int) string {
	text := body
	if doc, err := htmlquery.Parse(strings.NewReader(body)); err == nil {
		text = htmlquery.InnerText(doc)
	}

	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxLen {
		return text
	}

	cut := strings.LastIndex(text[:maxLen], " ")
	if cut <= 0 {
		cut = maxLen
	}
	return text[:cut] + "…"
}
