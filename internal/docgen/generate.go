//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/zellyn/langblog/internal/config"
	"github.com/zellyn/langblog/internal/docgen"
)

func main() {
	// Paths are relative to project root
	cfg := config.Default()
	opts := docgen.Options{
		ArticlesDir:  "../../" + cfg.ArticlesDir,
		OutputDir:    "../../" + cfg.OutputDir,
		TemplatesDir: "../../" + cfg.TemplatesDir,
		Site:         cfg.Site,
	}

	fmt.Println("Building site...")

	site, err := docgen.Build(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building site: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Site build complete! %d languages, %d articles\n", len(site.Languages), len(site.Articles))
}
