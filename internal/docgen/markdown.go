package docgen

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// CodeBlockRenderer renders fenced code blocks inside a labelled wrapper so
// the stylesheet can show the language name above the code.
type CodeBlockRenderer struct{}

// RegisterFuncs implements renderer.NodeRenderer
func (r *CodeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *CodeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	cb, ok := node.(*ast.FencedCodeBlock)
	if !ok {
		return ast.WalkContinue, nil
	}

	lang := string(cb.Language(source))

	w.WriteString(`<div class="code-block">`)
	if lang != "" {
		w.WriteString(fmt.Sprintf(`<div class="code-label">%s</div>`, html.EscapeString(lang)))
	}
	w.WriteString("<pre><code")
	if lang != "" {
		w.WriteString(` class="language-`)
		w.WriteString(html.EscapeString(lang))
		w.WriteString(`"`)
	}
	w.WriteString(">")

	lines := cb.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		w.Write(util.EscapeHTML(line.Value(source)))
	}

	w.WriteString("</code></pre></div>\n")
	return ast.WalkContinue, nil
}

// newMarkdown returns the converter shared by every article of a build:
// fenced code, tables, heading anchors, and raw HTML passed through.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithUnsafe(), // Allow raw HTML in markdown
			renderer.WithNodeRenderers(
				util.Prioritized(&CodeBlockRenderer{}, 100),
			),
		),
	)
}

// RenderMarkdown converts an article body to an HTML fragment.
func RenderMarkdown(md goldmark.Markdown, body string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}
