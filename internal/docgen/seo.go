package docgen

import (
	"fmt"
	"html"
	"html/template"
)

// SEOTags returns the Open Graph and keywords meta tags for a page.
func SEOTags(title, description, keywords string) template.HTML {
	return template.HTML(fmt.Sprintf(
		"<meta property=\"og:title\" content=\"%s\">\n<meta property=\"og:description\" content=\"%s\">\n<meta name=\"keywords\" content=\"%s\">",
		html.EscapeString(title),
		html.EscapeString(description),
		html.EscapeString(keywords),
	))
}
