// Package htmltomarkdown converts book description HTML to Markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/fwojciec/bookhaven"
)

// truncationMarker ends descriptions the catalog cut short.
const truncationMarker = "...more"

var blankLines = regexp.MustCompile(`\n{3,}`)

var _ bookhaven.Converter = (*Converter)(nil)

// Converter renders product descriptions as Markdown. Emphasis uses
// asterisks so descriptions read the same in the export and the API.
type Converter struct {
	md *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithEmDelimiter("*"),
					commonmark.WithStrongDelimiter("**"),
				),
			),
		),
	}
}

// Convert transforms description HTML into Markdown. The "...more" marker
// left by truncated descriptions is dropped, non-breaking spaces become
// plain spaces and runs of blank lines collapse to one.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", bookhaven.Errorf(bookhaven.EINVALID, "empty description HTML")
	}

	md, err := c.md.ConvertString(html)
	if err != nil {
		return "", bookhaven.Errorf(bookhaven.EINVALID, "convert description: %v", err)
	}

	md = strings.ReplaceAll(md, "\u00a0", " ")
	md = blankLines.ReplaceAllString(md, "\n\n")
	md = strings.TrimSpace(md)
	return strings.TrimSpace(strings.TrimSuffix(md, truncationMarker)), nil
}
