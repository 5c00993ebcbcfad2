package articlegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zellyn/langblog/internal/docgen"
)

func TestFrontMatterRoundTripsThroughBuilderParser(t *testing.T) {
	tests := []struct {
		language  string
		topic     string
		wantTitle string
		wantTags  string
	}{
		{
			language:  "Python",
			topic:     "Lists, Tuples and Dictionaries",
			wantTitle: "Lists, Tuples and Dictionaries in Python",
			wantTags:  "[AI, generated, Python, Lists, Tuples and Dictionaries]",
		},
		{
			language:  "Go",
			topic:     "Pointers: The Basics",
			wantTitle: "Pointers: The Basics in Go",
			wantTags:  "[AI, generated, Go, Pointers: The Basics]",
		},
		{
			language:  "Go",
			topic:     "'Quoted' strings",
			wantTitle: "'Quoted' strings in Go",
			wantTags:  "[AI, generated, Go, 'Quoted' strings]",
		},
		{
			language:  "Rust",
			topic:     "Traits\nand  Generics",
			wantTitle: "Traits and Generics in Rust",
			wantTags:  "[AI, generated, Rust, Traits and Generics]",
		},
	}

	for _, tt := range tests {
		fm := FrontMatter(tt.language, tt.topic, "2026-10-18")
		content := string(fm) + "\nBody.\n"

		parsed, body, found := docgen.ParseFrontMatter(content)
		if !found {
			t.Fatalf("front matter not recognized:\n%s", content)
		}
		if parsed.Title != tt.wantTitle {
			t.Errorf("%s: title = %q, want %q", tt.topic, parsed.Title, tt.wantTitle)
		}
		if parsed.Tags != tt.wantTags {
			t.Errorf("%s: tags = %q, want %q", tt.topic, parsed.Tags, tt.wantTags)
		}
		if parsed.Date != "2026-10-18" {
			t.Errorf("%s: date = %q", tt.topic, parsed.Date)
		}
		if !strings.Contains(string(fm), "categories: ["+tt.language+"]\n") {
			t.Errorf("%s: categories not written as a one-line list:\n%s", tt.topic, fm)
		}
		if body != "Body." {
			t.Errorf("%s: body = %q", tt.topic, body)
		}
	}
}

func TestCleanGenerated(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "  # Title\n\nBody\n", "# Title\n\nBody"},
		{"markdown fence", "```markdown\n# Title\n\nBody\n```", "# Title\n\nBody"},
		{"bare fence", "```\nBody\n```\n", "Body"},
		{"code fence of another language kept", "```go\nfmt.Println()\n```", "```go\nfmt.Println()\n```"},
		{"own front matter dropped", "---\ntitle: theirs\n---\n\nBody", "Body"},
		{"fenced front matter dropped", "```md\n---\ntitle: theirs\n---\nBody\n```", "Body"},
		{"whitespace only", " \n\t", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanGenerated(tt.in); got != tt.want {
				t.Fatalf("CleanGenerated() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPromptRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte("Write about {{.Topic}} in {{.Language}} as of {{.Date}}."), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPrompt(path)
	if err != nil {
		t.Fatalf("LoadPrompt returned error: %v", err)
	}
	got, err := p.Render(PromptData{Language: "Go", Topic: "Interfaces", Date: "2026-10-18"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if want := "Write about Interfaces in Go as of 2026-10-18."; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestLoadPromptMissing(t *testing.T) {
	if _, err := LoadPrompt(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatal("LoadPrompt accepted a missing file")
	}
}

func TestTopics(t *testing.T) {
	topics, err := LoadTopics("")
	if err != nil {
		t.Fatalf("LoadTopics returned error: %v", err)
	}

	name, list, ok := topics.Lookup("python")
	if !ok || name != "Python" || len(list) == 0 {
		t.Fatalf("Lookup(python) = %q, %d topics, %v", name, len(list), ok)
	}
	if _, _, ok := topics.Lookup("cobol"); ok {
		t.Fatal("Lookup(cobol) should fail")
	}

	langs := topics.Languages()
	for i := 1; i < len(langs); i++ {
		if langs[i-1] > langs[i] {
			t.Fatalf("Languages() not sorted: %v", langs)
		}
	}

	if _, err := ParseTopics([]byte("Go: []\n")); err == nil {
		t.Fatal("ParseTopics accepted a language with no topics")
	}
}
