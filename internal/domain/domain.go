package domain

import "fmt"

const pagePreviewChars = 50

// Page is the readable content extracted from a single document.
type Page struct {
	Title             string
	Body              string
	ImageDescriptions []string
}

func (p Page) String() string {
	preview := []rune(p.Body)
	if len(preview) > pagePreviewChars {
		preview = preview[:pagePreviewChars]
	}

	return fmt.Sprintf("Page(title: %s, body: %s..., images: %d)",
		p.Title, string(preview), len(p.ImageDescriptions))
}

// Summary is a summarized URL as handed to presentation layers.
type Summary struct {
	URL  string `json:"url"`
	Text string `json:"summary"`
}
