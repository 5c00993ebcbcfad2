// Package config resolves runtime settings for the langblog commands.
//
// Values are layered: built-in defaults, then an optional site.toml, then
// environment variables (a .env file is loaded first if present). Command
// line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultSiteFile is the site configuration read when no path is given.
const DefaultSiteFile = "site.toml"

// Config contains everything the build, generate and serve commands need.
type Config struct {
	ArticlesDir  string `toml:"articles_dir"`
	OutputDir    string `toml:"output_dir"`
	TemplatesDir string `toml:"templates_dir"`
	PromptPath   string `toml:"prompt_path"`
	TopicsPath   string `toml:"topics_path"`
	LedgerPath   string `toml:"ledger_path"`

	Site     Site     `toml:"site"`
	TextGen  TextGen  `toml:"textgen"`
	Generate Generate `toml:"generate"`
}

// Site holds the values shown on the index pages.
type Site struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Keywords    string `toml:"keywords"`
	// Language is the <html lang> value used when detection is inconclusive.
	Language string `toml:"language"`
	// LanguageIndexTitle is a fmt pattern receiving the language display name.
	LanguageIndexTitle       string `toml:"language_index_title"`
	LanguageIndexDescription string `toml:"language_index_description"`
	LanguageIndexKeywords    string `toml:"language_index_keywords"`
}

// TextGen selects the optional text-generation backend.
type TextGen struct {
	Endpoint string   `toml:"endpoint"`
	Model    string   `toml:"model"`
	APIKey   string   `toml:"-"`
	Command  string   `toml:"command"`
	Timeout  Duration `toml:"timeout"`
}

// Enabled reports whether any backend is configured.
func (t TextGen) Enabled() bool {
	return t.Command != "" || (t.Endpoint != "" && t.APIKey != "")
}

// Generate tunes the article generator.
type Generate struct {
	LockTTL Duration `toml:"lock_ttl"`
}

// Duration is a time.Duration written as "90s" or "30m" in site.toml.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		ArticlesDir:  "articles",
		OutputDir:    "docs",
		TemplatesDir: "templates",
		PromptPath:   "roadmap/prompt.md",
		LedgerPath:   ".langblog/ledger.db",
		Site: Site{
			Title:                    "IT Learning Blog - Roadmap",
			Description:              "Programming language learning roadmaps, one language at a time.",
			Keywords:                 "IT, learning, programming, roadmap",
			Language:                 "en",
			LanguageIndexTitle:       "%s Learning Roadmap",
			LanguageIndexDescription: "The learning roadmap for %s.",
			LanguageIndexKeywords:    "%s, learning, roadmap",
		},
		TextGen: TextGen{
			Model:   "gpt-4o-mini",
			Timeout: Duration{90 * time.Second},
		},
		Generate: Generate{
			LockTTL: Duration{30 * time.Minute},
		},
	}
}

// Load builds a Config from defaults, the site file at path and the
// environment. A missing site file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Ignoring .env file", "error", err)
	}

	cfg := Default()
	if path == "" {
		path = DefaultSiteFile
	}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("No site file found, using defaults", "path", path)
	default:
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.ArticlesDir, "ARTICLES_DIR")
	setString(&c.OutputDir, "DOCS_DIR")
	setString(&c.TemplatesDir, "TEMPLATES_DIR")
	setString(&c.PromptPath, "PROMPT_PATH")
	setString(&c.TopicsPath, "TOPICS_PATH")
	setString(&c.LedgerPath, "LEDGER_PATH")

	setString(&c.TextGen.Endpoint, "TEXTGEN_ENDPOINT")
	setString(&c.TextGen.Model, "TEXTGEN_MODEL")
	setString(&c.TextGen.APIKey, "TEXTGEN_API_KEY")
	setString(&c.TextGen.Command, "TEXTGEN_COMMAND")

	if err := setDuration(&c.TextGen.Timeout, "TEXTGEN_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.Generate.LockTTL, "GENERATE_LOCK_TTL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// setDuration accepts either a Go duration ("90s") or a bare number of seconds.
func setDuration(dst *Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	if err := dst.UnmarshalText([]byte(v)); err == nil {
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: want a duration like 90s", key, v)
	}
	dst.Duration = time.Duration(secs) * time.Second
	return nil
}
