package mock

import "github.com/fwojciec/bookhaven"

var _ bookhaven.Converter = (*Converter)(nil)

// Converter is a mock implementation of bookhaven.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
