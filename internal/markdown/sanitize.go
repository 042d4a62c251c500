package markdown

import (
	"github.com/microcosm-cc/bluemonday"
)

// previewPolicy allows the tag set Convert emits plus the class attribute
// that carries the preview styling. Scripts, styles and event handlers
// are stripped.
var previewPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements(
		"div", "p", "h1", "h2", "h3",
		"strong", "em", "code", "pre",
		"ul", "ol", "li",
	)
	return p
}()

// Sanitize strips script/style/event-handler injection from an HTML
// fragment. Every fragment handed to a caller for display must go
// through here.
func Sanitize(fragment string) string {
	return previewPolicy.Sanitize(fragment)
}

// RenderPreview converts markdown to the in-app preview fragment and
// sanitizes it in one step.
func RenderPreview(md string) string {
	return Sanitize(Convert(md, StylePreview))
}
