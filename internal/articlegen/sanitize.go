package articlegen

import (
	"fmt"
	"strings"
	"unicode"
)

// Sanitize turns a topic into a file name fragment: letters, digits, '-'
// and '_' are kept, anything else becomes '_', runs of '_' collapse to one
// and leading or trailing '_' are dropped.
func Sanitize(topic string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range topic {
		keep := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
		if !keep {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "topic"
	}
	return name
}

// ArticleFileName is the file written for the index-th topic (1-based).
func ArticleFileName(index int, topic string) string {
	return fmt.Sprintf("%02d_%s.md", index, Sanitize(topic))
}
