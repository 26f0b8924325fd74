package scraper

import (
	"fmt"
	"strings"

	"linkbrief/internal/apperror"
	"linkbrief/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const untitled = "Untitled"

// Body candidates in priority order. The first one with non-blank text wins.
//
//nolint:gochecknoglobals // Immutable lookup order.
var bodySelectors = []string{"article p", "main p", "p"}

// Extract turns raw HTML into a page. pageURL is used for validation and
// error messages only.
func Extract(pageURL string, html string) (domain.Page, error) {
	if _, err := ValidateURL(pageURL); err != nil {
		return domain.Page{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.Page{}, apperror.Wrap(apperror.KindEmptyContent, err,
			fmt.Sprintf("No content found at %s", pageURL))
	}

	return extractDocument(pageURL, doc)
}

func extractDocument(pageURL string, doc *goquery.Document) (domain.Page, error) {
	body := extractBody(doc)
	if strings.TrimSpace(body) == "" {
		return domain.Page{}, apperror.Newf(apperror.KindEmptyContent, "No content found at %s", pageURL)
	}

	return domain.Page{
		Title:             extractTitle(doc),
		Body:              body,
		ImageDescriptions: extractImageDescriptions(doc),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		return strings.TrimSpace(h1.Text())
	}

	if title := doc.Find("title").First(); title.Length() > 0 {
		return strings.TrimSpace(title.Text())
	}

	return untitled
}

func extractBody(doc *goquery.Document) string {
	var body string

	for _, selector := range bodySelectors {
		body = joinTexts(doc.Find(selector))
		if strings.TrimSpace(body) != "" {
			return body
		}
	}

	return body
}

func joinTexts(s *goquery.Selection) string {
	texts := make([]string, 0, s.Length())
	s.Each(func(_ int, p *goquery.Selection) {
		texts = append(texts, p.Text())
	})

	return strings.Join(texts, " ")
}

// Images without an alt attribute are skipped; an empty alt is kept.
func extractImageDescriptions(doc *goquery.Document) []string {
	descriptions := []string{}
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if alt, ok := img.Attr("alt"); ok {
			descriptions = append(descriptions, alt)
		}
	})

	return descriptions
}
