package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/zellyn/langblog/internal/articlegen"
	"github.com/zellyn/langblog/internal/config"
	"github.com/zellyn/langblog/internal/docgen"
	"github.com/zellyn/langblog/internal/ledger"
	"github.com/zellyn/langblog/internal/preview"
)

func main() {
	app := &cli.App{
		Name:  "langblog",
		Usage: "build the language learning blog and scaffold its articles",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultSiteFile, Usage: "site configuration file"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
			&cli.BoolFlag{Name: "verbose", Usage: "log debug output"},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "render the articles into the output directory (full rebuild)",
				Flags:  dirFlags(),
				Action: buildAction,
			},
			{
				Name:      "generate",
				Usage:     "archive a language's articles and write a new stub per topic",
				ArgsUsage: "<language>",
				Flags: append(dirFlags(),
					&cli.StringFlag{Name: "prompt", Usage: "prompt template file"},
					&cli.StringFlag{Name: "topics", Usage: "topic list YAML file (default: built-in list)"},
					&cli.StringFlag{Name: "ledger", Usage: "generation ledger database"},
				),
				Action: generateAction,
			},
			{
				Name:  "serve",
				Usage: "serve the output directory for local preview",
				Flags: append(dirFlags(),
					&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "listen address"},
					&cli.BoolFlag{Name: "build", Usage: "rebuild the site before serving"},
				),
				Action: serveAction,
			},
			{
				Name:      "history",
				Usage:     "show recent generation runs for a language",
				ArgsUsage: "<language>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "ledger", Usage: "generation ledger database"},
					&cli.IntFlag{Name: "limit", Value: 10, Usage: "number of runs to show"},
				},
				Action: historyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging installs the structured logger for every command.
func setupLogging(c *cli.Context) error {
	level := slog.LevelInfo
	switch {
	case c.Bool("quiet"):
		level = slog.LevelError
	case c.Bool("verbose"):
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func dirFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "articles", Usage: "article store directory"},
		&cli.StringFlag{Name: "output", Usage: "site output directory"},
		&cli.StringFlag{Name: "templates", Usage: "templates directory"},
	}
}

// loadConfig reads the site configuration and applies command flags on top.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	override := func(dst *string, flag string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	override(&cfg.ArticlesDir, "articles")
	override(&cfg.OutputDir, "output")
	override(&cfg.TemplatesDir, "templates")
	override(&cfg.PromptPath, "prompt")
	override(&cfg.TopicsPath, "topics")
	override(&cfg.LedgerPath, "ledger")
	return cfg, nil
}

func buildSite(cfg config.Config) error {
	site, err := docgen.Build(docgen.Options{
		ArticlesDir:  cfg.ArticlesDir,
		OutputDir:    cfg.OutputDir,
		TemplatesDir: cfg.TemplatesDir,
		Site:         cfg.Site,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Site build complete! %d languages, %d articles -> %s\n", len(site.Languages), len(site.Articles), cfg.OutputDir)
	return nil
}

func buildAction(c *cli.Context) error {
	if c.Args().Present() {
		return cli.Exit("Usage: langblog build (takes no arguments)", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return buildSite(cfg)
}

func generateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("Usage: langblog generate <language>", 1)
	}
	language := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	topics, err := articlegen.LoadTopics(cfg.TopicsPath)
	if err != nil {
		return err
	}
	if _, _, ok := topics.Lookup(language); !ok {
		return cli.Exit(fmt.Sprintf("Error: Language '%s' not found in topics (available: %s)",
			language, strings.Join(topics.Languages(), ", ")), 1)
	}

	prompt, err := articlegen.LoadPrompt(cfg.PromptPath)
	if err != nil {
		return err
	}

	l, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.TextGen.Enabled() {
		slog.Info("No text generation backend configured, writing placeholders")
	}
	backend := articlegen.NewBackend(ctx, cfg.TextGen)

	gen := articlegen.New(articlegen.Options{
		ArticlesDir: cfg.ArticlesDir,
		Topics:      topics,
		Prompt:      prompt,
		Backend:     backend,
		Timeout:     cfg.TextGen.Timeout.Duration,
		Ledger:      l,
		LockTTL:     cfg.Generate.LockTTL.Duration,
	})

	_, err = gen.Generate(ctx, language)
	switch {
	case errors.Is(err, ledger.ErrLocked):
		return cli.Exit(fmt.Sprintf("Error: another generation run for '%s' is in progress", language), 1)
	case errors.Is(err, articlegen.ErrUnknownLanguage):
		return cli.Exit(fmt.Sprintf("Error: Language '%s' not found in topics", language), 1)
	}
	return err
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("build") {
		if err := buildSite(cfg); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return preview.Serve(ctx, c.String("addr"), cfg.OutputDir)
}

func historyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("Usage: langblog history <language>", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	topics, err := articlegen.LoadTopics(cfg.TopicsPath)
	if err != nil {
		return err
	}
	language, _, ok := topics.Lookup(c.Args().First())
	if !ok {
		language = c.Args().First()
	}

	l, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.Runs(c.Context, language, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("No generation runs recorded for %s\n", language)
		return nil
	}

	for _, run := range runs {
		finished := "-"
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("#%d  %s  started %s  finished %s  archived %d\n",
			run.ID, run.Status, run.StartedAt.Format("2006-01-02 15:04:05"), finished, run.Archived)

		articles, err := l.Articles(c.Context, run.ID)
		if err != nil {
			return err
		}
		for _, a := range articles {
			fmt.Printf("    %-11s %s\n", a.Source, a.Path)
		}
	}
	return nil
}
