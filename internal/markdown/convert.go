// Package markdown converts generated markdown into HTML using ordered
// pattern substitution. It is intentionally not a CommonMark parser: the
// conversion contract is a fixed sequence of regex rules, and later rules
// operate on the output of earlier ones, so rule order is part of the
// contract.
package markdown

import (
	"regexp"
	"strings"
)

// Style selects the output contract of Convert.
type Style int

const (
	// StylePreview produces a classed fragment for in-app display.
	// List items are emitted as standalone bullet-prefixed <li> elements
	// without an enclosing <ul>; fenced blocks are converted after
	// paragraph splitting.
	StylePreview Style = iota

	// StyleDocument produces plain tags for a standalone HTML document.
	// Every non-blank line is paragraph-wrapped and then headings, lists
	// and preformatted blocks are unwrapped again; consecutive list items
	// are grouped in a single <ul>.
	StyleDocument

	// StylePrint produces the same plain-tag conversion as StyleDocument;
	// the print-specific styling lives in the surrounding document
	// template, not in the fragment.
	StylePrint
)

var (
	reH1      = regexp.MustCompile(`(?m)^# (.*)$`)
	reH2      = regexp.MustCompile(`(?m)^## (.*)$`)
	reH3      = regexp.MustCompile(`(?m)^### (.*)$`)
	reStrong  = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reEm      = regexp.MustCompile(`\*(.*?)\*`)
	reCode    = regexp.MustCompile("`([^`\n]+)`")
	reBullet  = regexp.MustCompile(`(?m)^- (.*)$`)
	reOrdered = regexp.MustCompile(`(?m)^\d+\. (.*)$`)
	reFence   = regexp.MustCompile("(?s)```(.*?)```")
	reLiRun   = regexp.MustCompile(`(?s)(<li>.*</li>)`)
	reLine    = regexp.MustCompile(`(?m)^(.+)$`)
	reHClose  = regexp.MustCompile(`</h([123])></p>`)
)

// Convert renders markdown to an HTML string in the requested style.
// Deterministic and pure; the output is NOT sanitized, callers that
// display fragments must pass them through Sanitize first.
func Convert(md string, style Style) string {
	if style == StylePreview {
		return convertPreview(md)
	}
	return convertDocument(md)
}

// convertPreview produces the classed in-app fragment.
func convertPreview(md string) string {
	if md == "" {
		return `<div class="prose max-w-none"></div>`
	}

	out := md
	out = reH1.ReplaceAllString(out, `<h1 class="text-3xl font-bold mb-4 text-gray-800">${1}</h1>`)
	out = reH2.ReplaceAllString(out, `<h2 class="text-2xl font-semibold mb-3 text-gray-700 border-b pb-2">${1}</h2>`)
	out = reH3.ReplaceAllString(out, `<h3 class="text-xl font-medium mb-2 text-gray-600">${1}</h3>`)
	out = reStrong.ReplaceAllString(out, `<strong class="font-semibold">${1}</strong>`)
	out = reEm.ReplaceAllString(out, `<em class="italic">${1}</em>`)
	out = reCode.ReplaceAllString(out, `<code class="bg-gray-100 px-2 py-1 rounded text-sm font-mono">${1}</code>`)
	out = reBullet.ReplaceAllString(out, `<li class="ml-4 mb-1">• ${1}</li>`)
	out = reOrdered.ReplaceAllString(out, `<li class="ml-4 mb-1">${1}</li>`)
	out = strings.ReplaceAll(out, "\n\n", `</p><p class="mb-4">`)
	out = reFence.ReplaceAllString(out, `<pre class="bg-gray-900 text-green-400 p-4 rounded-lg overflow-x-auto mb-4"><code>${1}</code></pre>`)

	return `<div class="prose max-w-none"><p class="mb-4">` + out + `</p></div>`
}

// convertDocument produces the plain-tag conversion used by the export
// templates. Every non-blank line is paragraph-wrapped, then block
// elements are unwrapped again; the first-to-last run of list items is
// grouped in a single <ul>.
func convertDocument(md string) string {
	out := md
	out = reH1.ReplaceAllString(out, `<h1>${1}</h1>`)
	out = reH2.ReplaceAllString(out, `<h2>${1}</h2>`)
	out = reH3.ReplaceAllString(out, `<h3>${1}</h3>`)
	out = reStrong.ReplaceAllString(out, `<strong>${1}</strong>`)
	out = reEm.ReplaceAllString(out, `<em>${1}</em>`)
	out = reCode.ReplaceAllString(out, `<code>${1}</code>`)
	out = reBullet.ReplaceAllString(out, `<li>${1}</li>`)
	out = reOrdered.ReplaceAllString(out, `<li>${1}</li>`)
	out = reLiRun.ReplaceAllString(out, `<ul>${1}</ul>`)
	out = reFence.ReplaceAllString(out, `<pre><code>${1}</code></pre>`)
	out = strings.ReplaceAll(out, "\n\n", `</p><p>`)
	out = reLine.ReplaceAllString(out, `<p>${1}</p>`)
	out = strings.ReplaceAll(out, `<p><h`, `<h`)
	out = reHClose.ReplaceAllString(out, `</h${1}>`)
	out = strings.ReplaceAll(out, `<p><ul>`, `<ul>`)
	out = strings.ReplaceAll(out, `</ul></p>`, `</ul>`)
	out = strings.ReplaceAll(out, `<p><pre>`, `<pre>`)
	out = strings.ReplaceAll(out, `</pre></p>`, `</pre>`)
	return out
}
