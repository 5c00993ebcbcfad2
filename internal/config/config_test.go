package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithoutSiteFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.ArticlesDir != want.ArticlesDir || cfg.OutputDir != want.OutputDir {
		t.Fatalf("dirs = %q/%q, want %q/%q", cfg.ArticlesDir, cfg.OutputDir, want.ArticlesDir, want.OutputDir)
	}
	if cfg.Generate.LockTTL.Duration != 30*time.Minute {
		t.Fatalf("LockTTL = %v, want 30m", cfg.Generate.LockTTL)
	}
}

func TestLoadSiteFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.toml")
	content := `articles_dir = "content"

[site]
title = "Roadmaps"
language = "ja"

[textgen]
timeout = "15s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCS_DIR", "public")
	t.Setenv("GENERATE_LOCK_TTL", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"articles dir from file", cfg.ArticlesDir, "content"},
		{"output dir from env", cfg.OutputDir, "public"},
		{"site title", cfg.Site.Title, "Roadmaps"},
		{"site language", cfg.Site.Language, "ja"},
		{"untouched default", cfg.TemplatesDir, "templates"},
		{"timeout", cfg.TextGen.Timeout.Duration, 15 * time.Second},
		{"lock ttl in seconds", cfg.Generate.LockTTL.Duration, 2 * time.Minute},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("TEXTGEN_TIMEOUT", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load accepted an invalid TEXTGEN_TIMEOUT")
	}
}

func TestTextGenEnabled(t *testing.T) {
	tests := []struct {
		name string
		tg   TextGen
		want bool
	}{
		{"nothing", TextGen{}, false},
		{"endpoint without key", TextGen{Endpoint: "http://x"}, false},
		{"endpoint with key", TextGen{Endpoint: "http://x", APIKey: "k"}, true},
		{"command", TextGen{Command: "gemini -p"}, true},
	}
	for _, tt := range tests {
		if got := tt.tg.Enabled(); got != tt.want {
			t.Errorf("%s: Enabled() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
