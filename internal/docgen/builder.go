// Package docgen turns the article tree into the static site.
package docgen

//go:generate go run generate.go

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	"github.com/zellyn/langblog/internal/config"
)

// languageIndexFile is never rendered as an article; its output name is
// taken by the language index page.
const languageIndexFile = "index.md"

// Options configures a site build.
type Options struct {
	ArticlesDir  string
	OutputDir    string
	TemplatesDir string
	Site         config.Site
	// Progress receives one line per written page. Defaults to os.Stdout.
	Progress io.Writer
}

// Site summarizes what a build produced.
type Site struct {
	Languages []Language
	Articles  []ArticleMeta
}

// Builder renders the article tree with one set of templates.
type Builder struct {
	opts      Options
	templates *Templates
	md        goldmark.Markdown
	langs     *languageDetector
}

// NewBuilder loads the templates named in opts.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Progress == nil {
		opts.Progress = os.Stdout
	}
	if err := checkOutputDir(opts); err != nil {
		return nil, err
	}

	templates, err := LoadTemplates(opts.TemplatesDir)
	if err != nil {
		return nil, err
	}

	return &Builder{
		opts:      opts,
		templates: templates,
		md:        newMarkdown(),
		langs:     newLanguageDetector(opts.Site.Language),
	}, nil
}

// Build performs a full rebuild with a fresh Builder.
func Build(opts Options) (*Site, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// Build deletes the output directory and regenerates every page.
// Any error aborts the run, leaving a partial output tree behind.
func (b *Builder) Build() (*Site, error) {
	out := b.opts.OutputDir
	if err := os.RemoveAll(out); err != nil {
		return nil, fmt.Errorf("removing output directory: %w", err)
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if err := copyFile(b.templates.StylesheetPath(), filepath.Join(out, Stylesheet)); err != nil {
		return nil, fmt.Errorf("copying stylesheet: %w", err)
	}

	entries, err := os.ReadDir(b.opts.ArticlesDir)
	if err != nil {
		return nil, fmt.Errorf("reading articles directory: %w", err)
	}

	site := &Site{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		lang, err := b.buildLanguage(entry.Name())
		if err != nil {
			return nil, err
		}
		site.Languages = append(site.Languages, lang)
		site.Articles = append(site.Articles, lang.Articles...)
	}

	page, err := b.templates.RenderMainIndex(PageData{
		Lang:        b.opts.Site.Language,
		SiteTitle:   b.opts.Site.Title,
		Title:       b.opts.Site.Title,
		Description: b.opts.Site.Description,
		SEO:         SEOTags(b.opts.Site.Title, b.opts.Site.Description, b.opts.Site.Keywords),
		Languages:   site.Languages,
		Articles:    site.Articles,
	})
	if err != nil {
		return nil, err
	}
	if err := b.writePage(filepath.Join(out, "index.html"), page); err != nil {
		return nil, err
	}

	return site, nil
}

func (b *Builder) buildLanguage(dirName string) (Language, error) {
	lang := Language{
		Name: DisplayName(dirName),
		Slug: strings.ToLower(dirName),
	}

	langOut := filepath.Join(b.opts.OutputDir, lang.Slug)
	if err := os.MkdirAll(langOut, 0755); err != nil {
		return lang, fmt.Errorf("creating output subdirectory: %w", err)
	}

	langDir := filepath.Join(b.opts.ArticlesDir, dirName)
	files, err := os.ReadDir(langDir)
	if err != nil {
		return lang, fmt.Errorf("reading language directory: %w", err)
	}

	for _, file := range files {
		if !file.Type().IsRegular() || filepath.Ext(file.Name()) != ".md" || file.Name() == languageIndexFile {
			continue
		}

		meta, page, err := b.ProcessArticle(filepath.Join(langDir, file.Name()), lang)
		if err != nil {
			return lang, err
		}
		if err := b.writePage(filepath.Join(langOut, meta.Slug+".html"), page); err != nil {
			return lang, err
		}
		lang.Articles = append(lang.Articles, meta)
	}

	site := b.opts.Site
	title := fmt.Sprintf(site.LanguageIndexTitle, lang.Name)
	description := fmt.Sprintf(site.LanguageIndexDescription, lang.Name)
	page, err := b.templates.RenderLanguageIndex(PageData{
		Lang:         site.Language,
		SiteTitle:    site.Title,
		Title:        title,
		Description:  description,
		SEO:          SEOTags(title, description, fmt.Sprintf(site.LanguageIndexKeywords, lang.Name)),
		Root:         "../",
		LanguageName: lang.Name,
		Articles:     lang.Articles,
	})
	if err != nil {
		return lang, err
	}
	if err := b.writePage(filepath.Join(langOut, "index.html"), page); err != nil {
		return lang, err
	}

	return lang, nil
}

// ProcessArticle reads one Markdown file and renders its page.
func (b *Builder) ProcessArticle(path string, lang Language) (ArticleMeta, []byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ArticleMeta{}, nil, fmt.Errorf("reading input file: %w", err)
	}

	fm, body, _ := ParseFrontMatter(string(content))
	meta := ArticleMeta{
		Title:        fm.Title,
		Description:  fm.Description,
		Tags:         fm.Tags,
		Date:         fm.Date,
		Slug:         strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		LanguageSlug: lang.Slug,
		LanguageName: lang.Name,
	}
	if meta.Description == "" && body != "" {
		meta.Description = DeriveDescription(body)
	}

	htmlContent, err := RenderMarkdown(b.md, body)
	if err != nil {
		return meta, nil, fmt.Errorf("%s: %w", path, err)
	}

	page, err := b.templates.RenderArticle(PageData{
		Lang:        b.langs.Detect(body),
		SiteTitle:   b.opts.Site.Title,
		Title:       meta.Title,
		Description: meta.Description,
		SEO:         SEOTags(meta.Title, meta.Description, meta.Tags),
		Root:        "../",
		Content:     template.HTML(htmlContent),
		Article:     meta,
	})
	if err != nil {
		return meta, nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, page, nil
}

func (b *Builder) writePage(path string, content []byte) error {
	fmt.Fprintf(b.opts.Progress, "Generating %s\n", path)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

// DisplayName capitalizes a language slug: first letter upper case, the
// rest lower case ("javaScript" -> "Javascript").
func DisplayName(slug string) string {
	r, size := utf8.DecodeRuneInString(slug)
	if r == utf8.RuneError {
		return slug
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(slug[size:])
}

// checkOutputDir refuses output locations that would wipe the inputs.
func checkOutputDir(opts Options) error {
	out, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}
	if opts.OutputDir == "" || out == filepath.Dir(out) {
		return fmt.Errorf("refusing to use %q as output directory", opts.OutputDir)
	}
	for _, input := range []string{opts.ArticlesDir, opts.TemplatesDir} {
		in, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", input, err)
		}
		if in == out || strings.HasPrefix(in, out+string(filepath.Separator)) {
			return fmt.Errorf("output directory %s contains input %s", opts.OutputDir, input)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
