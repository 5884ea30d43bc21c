package wiki

import (
	"regexp"
	"strings"

	"github.com/nao1215/mathglossary/internal/model"
)

// headingPattern matches a wiki-style heading line of level 2 to 6.
var headingPattern = regexp.MustCompile(`^(={2,6})\s*(.*?)\s*={2,6}\s*$`)

// splitSections splits a plain-text extract into sections.
// Text before the first heading is discarded.
func splitSections(extract string) []model.Section {
	var (
		sections []model.Section
		current  *model.Section
		body     []string
	)

	flush := func() {
		if current == nil {
			return
		}
		text := strings.TrimSpace(strings.Join(body, "\n"))
		current.Text = text
		current.HasText = text != ""
		sections = append(sections, *current)
	}

	for _, line := range strings.Split(extract, "\n") {
		if m := headingPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil && m[2] != "" {
			flush()
			current = &model.Section{Title: m[2]}
			body = body[:0]
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return sections
}
