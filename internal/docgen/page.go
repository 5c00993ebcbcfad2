package docgen

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
)

// Template and asset file names inside the templates directory.
const (
	BaseTemplate          = "base.html"
	MainIndexTemplate     = "main_index.html"
	LanguageIndexTemplate = "language_index.html"
	Stylesheet            = "style.css"
)

// ErrNoTemplates is returned when a required template cannot be loaded.
var ErrNoTemplates = errors.New("template not available")

// ArticleMeta describes one article for index listings.
type ArticleMeta struct {
	Title        string
	Description  string
	Tags         string
	Date         string
	Slug         string
	LanguageSlug string
	LanguageName string
}

// DisplayTitle falls back to the slug for untitled articles.
func (a ArticleMeta) DisplayTitle() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Slug
}

// Path is the article page location relative to the site root.
func (a ArticleMeta) Path() string {
	return a.LanguageSlug + "/" + a.Slug + ".html"
}

// Language is one language section of the site.
type Language struct {
	Name     string
	Slug     string
	Articles []ArticleMeta
}

// PageData is what every template receives. Fields that do not apply to a
// given page are left empty.
type PageData struct {
	Lang        string
	SiteTitle   string
	Title       string
	Description string
	SEO         template.HTML
	// Root is the relative path from the page back to the site root.
	Root string

	// Article pages
	Content template.HTML
	Article ArticleMeta

	// Index pages
	LanguageName string
	Languages    []Language
	Articles     []ArticleMeta
}

// Templates holds the parsed page templates.
type Templates struct {
	base          *template.Template
	mainIndex     *template.Template
	languageIndex *template.Template
	dir           string
}

// LoadTemplates parses the three page templates from dir.
func LoadTemplates(dir string) (*Templates, error) {
	load := func(name string) (*template.Template, error) {
		t, err := template.ParseFiles(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoTemplates, name, err)
		}
		return t, nil
	}

	base, err := load(BaseTemplate)
	if err != nil {
		return nil, err
	}
	mainIndex, err := load(MainIndexTemplate)
	if err != nil {
		return nil, err
	}
	languageIndex, err := load(LanguageIndexTemplate)
	if err != nil {
		return nil, err
	}

	return &Templates{
		base:          base,
		mainIndex:     mainIndex,
		languageIndex: languageIndex,
		dir:           dir,
	}, nil
}

// StylesheetPath is the stylesheet copied into the output root.
func (t *Templates) StylesheetPath() string {
	return filepath.Join(t.dir, Stylesheet)
}

func (t *Templates) RenderArticle(data PageData) ([]byte, error) {
	return execute(t.base, data)
}

func (t *Templates) RenderLanguageIndex(data PageData) ([]byte, error) {
	return execute(t.languageIndex, data)
}

func (t *Templates) RenderMainIndex(data PageData) ([]byte, error) {
	return execute(t.mainIndex, data)
}

func execute(t *template.Template, data PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}
