package model

import "strings"

// CategoryNamespace is the namespace prefix of category titles.
// Category titles are stored without it throughout the program.
const CategoryNamespace = "Category:"

// MemberKind selects which members of a category are listed.
type MemberKind string

const (
	// MemberPage lists ordinary content pages.
	MemberPage MemberKind = "page"

	// MemberSubcategory lists nested categories.
	MemberSubcategory MemberKind = "subcat"
)

// Page represents a fetched wiki page.
// Sections keep the order in which they appear in the page source.
type Page struct {
	// Title is the canonical title reported by the wiki.
	// It can differ from the requested title (e.g. first-letter case).
	Title string `json:"title"`

	// Categories holds the titles of the categories the page declares,
	// without the "Category:" prefix.
	Categories []string `json:"categories,omitempty"`

	// Sections holds the page sections in declaration order.
	Sections []Section `json:"sections,omitempty"`
}

// Section is a named block of page text.
type Section struct {
	// Title is the heading text of the section.
	Title string `json:"title"`

	// Text is the plain-text body of the section, without its heading.
	Text string `json:"text,omitempty"`

	// HasText is false when the wiki did not return a body for the section.
	HasText bool `json:"has_text"`
}

// SectionTitles returns the section titles in declaration order.
func (p *Page) SectionTitles() []string {
	titles := make([]string, len(p.Sections))
	for i, s := range p.Sections {
		titles[i] = s.Title
	}
	return titles
}

// SectionText returns the body of the first section named title.
// The boolean is false when no such section exists or it has no body.
func (p *Page) SectionText(title string) (string, bool) {
	for _, s := range p.Sections {
		if s.Title == title {
			return s.Text, s.HasText
		}
	}
	return "", false
}

// TrimCategoryNamespace removes a leading "Category:" prefix from title.
func TrimCategoryNamespace(title string) string {
	return strings.TrimPrefix(title, CategoryNamespace)
}
