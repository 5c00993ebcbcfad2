package docgen

import (
	"strings"
)

const frontMatterDelimiter = "---"

// DescriptionLimit is the number of characters kept when a description is
// derived from the article body.
const DescriptionLimit = 150

// FrontMatter holds the recognized keys of an article's metadata block.
// Values are kept verbatim; list syntax such as "[a, b]" is not decoded.
type FrontMatter struct {
	Title       string
	Description string
	Tags        string
	Date        string
}

var frontMatterKeys = []string{"title", "description", "tags", "date"}

// ParseFrontMatter splits content into its front matter and body.
//
// The first line must be exactly "---" and the block ends at the next line
// that is exactly "---". Without a closing delimiter the whole content is
// treated as body and found is false. The returned body is trimmed.
func ParseFrontMatter(content string) (fm FrontMatter, body string, found bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != frontMatterDelimiter {
		return fm, strings.TrimSpace(content), false
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == frontMatterDelimiter {
			closing = i
			break
		}
	}
	if closing == -1 {
		return fm, strings.TrimSpace(content), false
	}

	seen := make(map[string]bool, len(frontMatterKeys))
	for _, line := range lines[1:closing] {
		for _, key := range frontMatterKeys {
			if seen[key] || !strings.HasPrefix(line, key+":") {
				continue
			}
			seen[key] = true
			value := strings.TrimSpace(line[len(key)+1:])
			switch key {
			case "title":
				fm.Title = value
			case "description":
				fm.Description = value
			case "tags":
				fm.Tags = value
			case "date":
				fm.Date = value
			}
		}
	}

	body = strings.TrimSpace(strings.Join(lines[closing+1:], "\n"))
	return fm, body, true
}

// DeriveDescription returns the first paragraph of body, cut to
// DescriptionLimit characters with a trailing "..." when it is longer.
func DeriveDescription(body string) string {
	paragraph, _, _ := strings.Cut(body, "\n\n")
	runes := []rune(paragraph)
	if len(runes) > DescriptionLimit {
		return string(runes[:DescriptionLimit]) + "..."
	}
	return paragraph
}
