package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"manhwahub/pkg/apperr"
)

// Detail holds the fields extracted from a manga detail page.
type Detail struct {
	Title        string
	Summary      string
	CoverURL     string
	Rating       string
	Rank         string
	Alternative  string
	Genres       []string
	Type         string
	Status       string
	ChapterCount int
}

// ChapterItem is one row of the chapter listing. Label carries the "new"
// marker text when the site flags a recent chapter.
type ChapterItem struct {
	ChapterNo string
	Label     string
	URL       string
}

// SearchItem is one search result card.
type SearchItem struct {
	Title string
	URL   string
}

// ImagePolicy controls how an empty image set on a chapter page is treated.
type ImagePolicy int

const (
	// ErrorOnEmpty treats zero extracted images as a missing page.
	ErrorOnEmpty ImagePolicy = iota
	// AllowEmpty treats zero extracted images as a valid empty result.
	AllowEmpty
)

// ParseDetails extracts the metadata fields from a detail page. An absent
// title means the page does not exist or the selectors went stale, and is
// reported as not found rather than a partial record.
func ParseDetails(rawHTML string) (*Detail, error) {
	doc, err := newDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	title := cleanText(doc.Find(".post-title h1").First().Text())
	if title == "" {
		return nil, apperr.NotFound("manga/manhwa details not found")
	}

	detail := &Detail{
		Title:        title,
		Summary:      cleanText(doc.Find(".summary_content .post-content p").Text()),
		Rating:       cleanText(doc.Find(".post-total-rating .score").First().Text()),
		Rank:         summaryField(doc, "Rank"),
		Alternative:  summaryField(doc, "Alternative"),
		Type:         summaryField(doc, "Type"),
		Status:       summaryField(doc, "Status"),
		ChapterCount: doc.Find("li.wp-manga-chapter").Length(),
	}

	if src, ok := doc.Find(".summary_image img").First().Attr("src"); ok {
		detail.CoverURL = strings.TrimSpace(src)
	}

	doc.Find(".genres-content a").Each(func(_ int, sel *goquery.Selection) {
		if genre := cleanText(sel.Text()); genre != "" {
			detail.Genres = append(detail.Genres, genre)
		}
	})

	return detail, nil
}

// ParseChapterList extracts the ordered chapter listing. An empty listing is
// valid: a freshly published title may have no chapters yet.
func ParseChapterList(rawHTML string) ([]ChapterItem, error) {
	doc, err := newDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	var items []ChapterItem
	doc.Find("li.wp-manga-chapter").Each(func(_ int, sel *goquery.Selection) {
		anchor := sel.Find("a").First()
		chapterNo := cleanText(anchor.Text())
		if chapterNo == "" {
			return
		}

		item := ChapterItem{ChapterNo: chapterNo}
		if href, ok := anchor.Attr("href"); ok {
			item.URL = strings.TrimSpace(href)
		}
		if marker := cleanText(sel.Find(".c-new-tag").Text()); marker != "" {
			item.Label = marker
		} else if sel.Find(".c-new-tag").Length() > 0 {
			item.Label = "NEW"
		}
		items = append(items, item)
	})

	return items, nil
}

// ParseImages extracts the ordered image URLs from one chapter page.
func ParseImages(rawHTML string, policy ImagePolicy) ([]string, error) {
	doc, err := newDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	var images []string
	doc.Find(".page-break img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, _ = sel.Attr("data-src")
		}
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			images = append(images, trimmed)
		}
	})

	if len(images) == 0 && policy == ErrorOnEmpty {
		return nil, apperr.NotFound("no images found for the chapter")
	}
	return images, nil
}

// ParseSearchResults extracts (title, url) pairs from a search results page.
// Zero result cards is reported as not found.
func ParseSearchResults(rawHTML string) ([]SearchItem, error) {
	doc, err := newDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	var items []SearchItem
	doc.Find(".c-tabs-item__content").Each(func(_ int, sel *goquery.Selection) {
		title := cleanText(sel.Find(".post-title").First().Text())
		href, _ := sel.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)
		if title != "" && href != "" {
			items = append(items, SearchItem{Title: title, URL: href})
		}
	})

	if len(items) == 0 {
		return nil, apperr.NotFound("no results found for the search query")
	}
	return items, nil
}

func newDocument(rawHTML string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// summaryField pulls the value of a ".post-content_item" row by its heading
// text, e.g. Rank, Alternative, Type, Status.
func summaryField(doc *goquery.Document, heading string) string {
	var value string
	doc.Find(".post-content_item").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.EqualFold(cleanText(sel.Find(".summary-heading").Text()), heading) {
			value = cleanText(sel.Find(".summary-content").Text())
			return false
		}
		return true
	})
	return value
}

func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
