package scraper

import (
	"strings"

	"linkbrief/internal/apperror"
	"linkbrief/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// ExtractFeed reads a parsed RSS, Atom or JSON feed as a page: item texts
// become the body, item image titles the image descriptions.
func ExtractFeed(pageURL string, feed *gofeed.Feed) (domain.Page, error) {
	title := strings.TrimSpace(feed.Title)
	if title == "" {
		title = untitled
	}

	texts := make([]string, 0, len(feed.Items))
	descriptions := []string{}

	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		raw := item.Content
		if strings.TrimSpace(raw) == "" {
			raw = item.Description
		}

		if text := markupText(raw); text != "" {
			texts = append(texts, text)
		}

		if item.Image != nil {
			descriptions = append(descriptions, item.Image.Title)
		}
	}

	body := strings.Join(texts, " ")
	if strings.TrimSpace(body) == "" {
		return domain.Page{}, apperror.Newf(apperror.KindEmptyContent, "No content found at %s", pageURL)
	}

	return domain.Page{
		Title:             title,
		Body:              body,
		ImageDescriptions: descriptions,
	}, nil
}

func markupText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
