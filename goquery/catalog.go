// Package goquery parses bookstore catalog HTML using goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bookhaven"
)

// Ensure CatalogParser implements bookhaven.CatalogParser at compile time.
var _ bookhaven.CatalogParser = (*CatalogParser)(nil)

// CatalogParser extracts books from books.toscrape.com style markup.
// Listing pages hold one article.product_pod per book; product pages hold
// the description, product information table and category breadcrumb.
type CatalogParser struct{}

// NewCatalogParser creates a new CatalogParser.
func NewCatalogParser() *CatalogParser {
	return &CatalogParser{}
}

// ParseCatalog parses a listing page and returns its books in page order.
// Relative links are resolved against pageURL. Entries without a title or
// product link are skipped. Position is the index on the page.
func (p *CatalogParser) ParseCatalog(html string, pageURL string) ([]*bookhaven.Book, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, bookhaven.Errorf(bookhaven.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, bookhaven.Errorf(bookhaven.EINVALID, "failed to parse HTML: %v", err)
	}

	var books []*bookhaven.Book
	doc.Find("article.product_pod").Each(func(_ int, art *goquery.Selection) {
		link := art.Find("h3 a").First()
		title, _ := link.Attr("title")
		title = strings.TrimSpace(title)
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}
		href, _ := link.Attr("href")
		sourceURL := resolveURL(base, href)
		if title == "" || sourceURL == "" {
			return
		}

		book := &bookhaven.Book{
			Title:        title,
			Price:        bookhaven.ParsePrice(art.Find("p.price_color").First().Text()),
			Rating:       parseStarRating(art.Find("p.star-rating").First()),
			SourceURL:    sourceURL,
			Source:       bookhaven.SourceBooksToScrape,
			Availability: collapseSpace(art.Find("p.availability").First().Text()),
			Position:     len(books),
		}
		if src, ok := art.Find("img").First().Attr("src"); ok {
			book.ImageURL = resolveURL(base, src)
		}

		books = append(books, book)
	})

	return books, nil
}

// ParseDetail parses a product page.
// Missing sections leave the corresponding fields empty.
func (p *CatalogParser) ParseDetail(html string) (*bookhaven.BookDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, bookhaven.Errorf(bookhaven.EINVALID, "failed to parse HTML: %v", err)
	}

	detail := &bookhaven.BookDetail{}

	// The description paragraph follows the "Product Description" header.
	if desc := doc.Find("#product_description").NextFiltered("p"); desc.Length() > 0 {
		inner, err := goquery.OuterHtml(desc.First())
		if err == nil {
			detail.DescriptionHTML = inner
		}
	}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		key := strings.TrimSpace(row.Find("th").First().Text())
		value := collapseSpace(row.Find("td").First().Text())
		switch key {
		case "UPC":
			detail.UPC = value
		case "Availability":
			detail.Availability = value
		}
	})

	// Breadcrumb: Home > Books > Category > Title
	crumbs := doc.Find("ul.breadcrumb li a")
	if crumbs.Length() >= 3 {
		detail.Category = strings.TrimSpace(crumbs.Last().Text())
	}

	return detail, nil
}

// parseStarRating reads the rating word from a "star-rating Three" class list.
func parseStarRating(sel *goquery.Selection) int {
	class, ok := sel.Attr("class")
	if !ok {
		return 0
	}
	for _, c := range strings.Fields(class) {
		if c == "star-rating" {
			continue
		}
		if r := bookhaven.ParseRating(c); r > 0 {
			return r
		}
	}
	return 0
}

// resolveURL resolves href against base.
// Returns empty string if href is empty or cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
