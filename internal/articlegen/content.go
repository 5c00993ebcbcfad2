package articlegen

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/zellyn/langblog/internal/docgen"
)

// PromptData is what the prompt template receives.
type PromptData struct {
	Language string
	Topic    string
	Date     string
}

// Prompt is a parsed prompt template.
type Prompt struct {
	tmpl *template.Template
}

// LoadPrompt parses the prompt template at path.
func LoadPrompt(path string) (*Prompt, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt: %w", err)
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing prompt %s: %w", path, err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// Render fills in the prompt for one topic.
func (p *Prompt) Render(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// ArticleTitle is the title written into a generated article.
func ArticleTitle(language, topic string) string {
	return fmt.Sprintf("%s in %s", topic, language)
}

// FrontMatter renders the metadata block of a generated article. Values
// are written raw, one key per line, since the site builder reads them back
// verbatim without YAML unquoting.
func FrontMatter(language, topic, date string) []byte {
	language, topic = oneLine(language), oneLine(topic)

	var buf bytes.Buffer
	buf.WriteString("---\n")
	fmt.Fprintf(&buf, "title: %s\n", ArticleTitle(language, topic))
	fmt.Fprintf(&buf, "date: %s\n", date)
	fmt.Fprintf(&buf, "categories: [%s]\n", language)
	fmt.Fprintf(&buf, "tags: [AI, generated, %s, %s]\n", language, topic)
	buf.WriteString("---\n")
	return buf.Bytes()
}

// oneLine collapses runs of whitespace, newlines included, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlaceholderBody is written when no generated text is available.
func PlaceholderBody(language, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This article on %s in %s has not been written yet.\n\n", topic, language)
	fmt.Fprintf(&b, "# %s\n\n", ArticleTitle(language, topic))
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "<!-- Explain what %s is and why it matters when learning %s. -->\n\n", topic, language)
	b.WriteString("## Example\n\n")
	fmt.Fprintf(&b, "```%s\n```\n\n", strings.ToLower(language))
	b.WriteString("## Key points\n\n")
	b.WriteString("- \n- \n- \n")
	return b.String()
}

// CleanGenerated normalizes backend output into an article body: a
// surrounding Markdown code fence is removed and any front matter the
// backend produced is dropped in favour of ours.
func CleanGenerated(content string) string {
	content = stripMarkdownFence(content)
	if _, body, found := docgen.ParseFrontMatter(content); found {
		return body
	}
	return strings.TrimSpace(content)
}

func stripMarkdownFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	normalised := strings.ReplaceAll(trimmed, "\r\n", "\n")
	lines := strings.Split(normalised, "\n")
	if len(lines) < 3 {
		return trimmed
	}

	lang := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), "```")))
	if lang != "" && lang != "markdown" && lang != "md" {
		return trimmed
	}

	if strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return trimmed
	}

	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}
