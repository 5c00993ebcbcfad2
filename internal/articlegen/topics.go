package articlegen

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var defaultTopics []byte

// Topics maps a language name to its ordered topic list.
type Topics map[string][]string

// LoadTopics reads a topic list from path, or the built-in list when path
// is empty.
func LoadTopics(path string) (Topics, error) {
	content := defaultTopics
	if path != "" {
		var err error
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading topics: %w", err)
		}
	}
	return ParseTopics(content)
}

// ParseTopics decodes a YAML mapping of language to topic strings.
func ParseTopics(content []byte) (Topics, error) {
	var topics Topics
	if err := yaml.Unmarshal(content, &topics); err != nil {
		return nil, fmt.Errorf("parsing topics: %w", err)
	}
	for lang, list := range topics {
		if len(list) == 0 {
			return nil, fmt.Errorf("parsing topics: language %q has no topics", lang)
		}
	}
	return topics, nil
}

// Lookup finds language case-insensitively and returns the name as written
// in the topic list.
func (t Topics) Lookup(language string) (string, []string, bool) {
	if list, ok := t[language]; ok {
		return language, list, true
	}
	for name, list := range t {
		if strings.EqualFold(name, language) {
			return name, list, true
		}
	}
	return "", nil, false
}

// Languages returns the configured language names, sorted.
func (t Topics) Languages() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
