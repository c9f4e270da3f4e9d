// Package text prepares article text for synthesis.
package text

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Clean strips markup, decodes entities and collapses whitespace so only
// readable words reach the synthesis backend.
func Clean(s string) string {
	stripped := policy.Sanitize(s)
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}
