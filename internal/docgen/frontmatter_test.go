package docgen

import (
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantFM    FrontMatter
		wantBody  string
		wantFound bool
	}{
		{
			name:    "full front matter",
			content: "---\ntitle: Python Basics\ndate: 2025-01-02\ncategories: [python]\ntags: [AI, python]\ndescription: Learn the basics\n---\n\n# Heading\n\nBody text.\n",
			wantFM: FrontMatter{
				Title:       "Python Basics",
				Date:        "2025-01-02",
				Tags:        "[AI, python]",
				Description: "Learn the basics",
			},
			wantBody:  "# Heading\n\nBody text.",
			wantFound: true,
		},
		{
			name:      "no front matter",
			content:   "Just a body.\n\nMore.",
			wantBody:  "Just a body.\n\nMore.",
			wantFound: false,
		},
		{
			name:      "missing closing delimiter",
			content:   "---\ntitle: Broken\n\nBody without end",
			wantBody:  "---\ntitle: Broken\n\nBody without end",
			wantFound: false,
		},
		{
			name:      "first occurrence wins",
			content:   "---\ntitle: First\ntitle: Second\n---\nbody",
			wantFM:    FrontMatter{Title: "First"},
			wantBody:  "body",
			wantFound: true,
		},
		{
			name:      "crlf line endings",
			content:   "---\r\ntitle: Windows\r\n---\r\nbody line\r\n",
			wantFM:    FrontMatter{Title: "Windows"},
			wantBody:  "body line",
			wantFound: true,
		},
		{
			name:      "delimiter must be the whole line",
			content:   "--- \ntitle: A\nnot---\n---\nbody",
			wantFM:    FrontMatter{Title: "A"},
			wantBody:  "body",
			wantFound: true,
		},
		{
			name:      "unrecognized keys ignored",
			content:   "---\nauthor: someone\ntitles: nope\ntitle: Yes\n---\nbody",
			wantFM:    FrontMatter{Title: "Yes"},
			wantBody:  "body",
			wantFound: true,
		},
		{
			name:      "title containing colon",
			content:   "---\ntitle: Go: the good parts\n---\n",
			wantFM:    FrontMatter{Title: "Go: the good parts"},
			wantBody:  "",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, found := ParseFrontMatter(tt.content)
			if fm != tt.wantFM {
				t.Errorf("front matter = %+v, want %+v", fm, tt.wantFM)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if found != tt.wantFound {
				t.Errorf("found = %v, want %v", found, tt.wantFound)
			}
		})
	}
}

func TestDeriveDescription(t *testing.T) {
	exact := strings.Repeat("a", DescriptionLimit)
	long := strings.Repeat("b", DescriptionLimit+1)
	japanese := strings.Repeat("日本語", 60)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"short paragraph", "Short intro.\n\nSecond paragraph.", "Short intro."},
		{"single line break stays", "Line one\nline two\n\nNext", "Line one\nline two"},
		{"exactly at limit", exact, exact},
		{"over limit", long, strings.Repeat("b", DescriptionLimit) + "..."},
		{"counts characters not bytes", japanese, string([]rune(japanese)[:DescriptionLimit]) + "..."},
		{"empty body", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveDescription(tt.body); got != tt.want {
				t.Fatalf("DeriveDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}
