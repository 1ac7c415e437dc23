// Package itinerary parses, formats and fetches day-by-day travel plans.
package itinerary

import (
	"regexp"
	"strings"
)

// DefaultTitle names the single section of an itinerary without day headings.
const DefaultTitle = "Your Itinerary"

var dayHeading = regexp.MustCompile(`Day \d+: .*`)

// Section is one day of an itinerary.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Parse splits itinerary text on "Day N: ..." headings. Text before the first
// heading is dropped. Without any heading the whole text is one section.
func Parse(text string) []Section {
	matches := dayHeading.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{Title: DefaultTitle, Content: text}}
	}

	sections := make([]Section, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		sections[i] = Section{
			Title:   strings.TrimSpace(text[m[0]:m[1]]),
			Content: strings.TrimSpace(text[m[1]:end]),
		}
	}

	return sections
}
