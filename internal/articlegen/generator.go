// Package articlegen scaffolds article files for one language: it archives
// the current articles and writes one new file per topic, filled in by an
// optional text-generation backend.
package articlegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zellyn/langblog/internal/ledger"
)

// ErrUnknownLanguage is returned for a language missing from the topic list.
var ErrUnknownLanguage = errors.New("language not found in topics")

// Content sources recorded for each written article.
const (
	SourceAI          = "ai"
	SourcePlaceholder = "placeholder"
)

// Options configures a Generator.
type Options struct {
	ArticlesDir string
	Topics      Topics
	Prompt      *Prompt
	// Backend is optional; without it every article gets a placeholder body.
	Backend Backend
	Timeout time.Duration
	// Ledger is optional; without it runs are neither locked nor recorded.
	Ledger  *ledger.Ledger
	LockTTL time.Duration
	// Out receives progress lines. Defaults to os.Stdout.
	Out io.Writer
	Now func() time.Time
}

// Written describes one generated file.
type Written struct {
	Topic  string
	Path   string
	Source string
}

// Result summarizes a generation run.
type Result struct {
	Language string
	Dir      string
	Archived []string
	Articles []Written
}

// Generator writes article stubs into the article tree.
type Generator struct {
	opts Options
}

// New returns a Generator with defaults filled in.
func New(opts Options) *Generator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Minute
	}
	return &Generator{opts: opts}
}

// Generate archives the existing articles of language and writes one file
// per topic. Text-generation failures fall back to placeholder content;
// file system and ledger errors abort the run.
func (g *Generator) Generate(ctx context.Context, language string) (*Result, error) {
	name, topics, ok := g.opts.Topics.Lookup(language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
	if g.opts.Prompt == nil {
		return nil, errors.New("no prompt configured")
	}

	dir := filepath.Join(g.opts.ArticlesDir, strings.ToLower(name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating language directory: %w", err)
	}

	l := g.opts.Ledger
	var runID int64
	if l != nil {
		lock, err := l.AcquireLock(ctx, name, g.opts.LockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			// The run's context may already be cancelled; release regardless.
			if err := l.ReleaseLock(context.WithoutCancel(ctx), lock); err != nil {
				slog.Error("Failed to release language lock", "language", name, "error", err)
			}
		}()

		runID, err = l.StartRun(ctx, name)
		if err != nil {
			return nil, err
		}
	}

	result, err := g.run(ctx, name, topics, dir, runID)
	if l != nil {
		status := ledger.StatusCompleted
		if err != nil {
			status = ledger.StatusFailed
		}
		archived := 0
		if result != nil {
			archived = len(result.Archived)
		}
		if ferr := l.FinishRun(context.WithoutCancel(ctx), runID, status, archived); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(g.opts.Out, "%s article generation complete (%d articles)\n", name, len(result.Articles))
	return result, nil
}

func (g *Generator) run(ctx context.Context, name string, topics []string, dir string, runID int64) (*Result, error) {
	now := g.opts.Now()
	result := &Result{Language: name, Dir: dir}

	archived, err := Archive(dir, now)
	result.Archived = archived
	for _, path := range archived {
		fmt.Fprintf(g.opts.Out, "Archived %s\n", path)
	}
	if err != nil {
		return result, err
	}

	date := now.Format("2006-01-02")
	for i, topic := range topics {
		path := filepath.Join(dir, ArticleFileName(i+1, topic))

		body, source := g.body(ctx, name, topic, date)
		content := append(FrontMatter(name, topic, date), '\n')
		content = append(content, body...)
		content = append(content, '\n')
		if err := os.WriteFile(path, content, 0644); err != nil {
			return result, fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(g.opts.Out, "Generating %s (%s)\n", path, source)

		written := Written{Topic: topic, Path: path, Source: source}
		result.Articles = append(result.Articles, written)

		if g.opts.Ledger != nil {
			if err := g.opts.Ledger.RecordArticle(ctx, runID, ledger.Article(written)); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

// body asks the backend for article text, falling back to a placeholder.
func (g *Generator) body(ctx context.Context, language, topic, date string) (string, string) {
	placeholder := strings.TrimSpace(PlaceholderBody(language, topic))
	if g.opts.Backend == nil {
		return placeholder, SourcePlaceholder
	}

	prompt, err := g.opts.Prompt.Render(PromptData{Language: language, Topic: topic, Date: date})
	if err != nil {
		slog.Warn("Prompt rendering failed, using placeholder", "topic", topic, "error", err)
		return placeholder, SourcePlaceholder
	}

	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	text, err := g.opts.Backend.Complete(callCtx, prompt)
	if err != nil {
		slog.Warn("Text generation failed, using placeholder", "topic", topic, "error", err)
		return placeholder, SourcePlaceholder
	}

	text = CleanGenerated(text)
	if text == "" {
		slog.Warn("Text generation returned empty content, using placeholder", "topic", topic)
		return placeholder, SourcePlaceholder
	}
	return text, SourceAI
}
