package frontmatter

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n(.*)|$)`)

// Frontmatter is the structured metadata at the beginning of a project document
type Frontmatter struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Status      string   `yaml:"status,omitempty"`
	Aliases     []string `yaml:"aliases,flow"`
	Tags        []string `yaml:"tags,flow"`
}

// Parse extracts frontmatter from content and returns the parsed data and body
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		// No frontmatter found
		return nil, content, nil
	}

	frontmatterStr := matches[1]
	bodyContent := matches[2]

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(frontmatterStr), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	// Ensure arrays are never nil
	if fm.Aliases == nil {
		fm.Aliases = []string{}
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	return &fm, bodyContent, nil
}

// LineCount returns how many leading lines of content belong to the
// frontmatter block, delimiters included. It is 0 when there is none.
func LineCount(content string) int {
	loc := frontmatterPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return 0
	}
	if loc[4] < 0 {
		// closing delimiter is the last line
		return strings.Count(content, "\n") + 1
	}
	return strings.Count(content[:loc[4]], "\n")
}

// ExtractTitle gets the title from the first level-one heading of a markdown body
func ExtractTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return ""
}
