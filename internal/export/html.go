package export

import (
	"fmt"

	"github.com/gitdocai/gitdocai/internal/markdown"
)

// htmlTemplate is the standalone document shell. The screen styles
// mirror the in-app preview palette (blue headings, dark code blocks).
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Generated Documentation</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 2rem;
            color: #333;
            background: #fff;
        }
        h1 { color: #2563eb; border-bottom: 2px solid #e5e7eb; padding-bottom: 0.5rem; }
        h2 { color: #374151; margin-top: 2rem; }
        h3 { color: #4b5563; }
        code {
            background: #f3f4f6;
            padding: 0.2rem 0.4rem;
            border-radius: 0.25rem;
            font-family: 'Courier New', monospace;
        }
        pre {
            background: #1f2937;
            color: #10b981;
            padding: 1rem;
            border-radius: 0.5rem;
            overflow-x: auto;
        }
        pre code {
            background: none;
            color: inherit;
            padding: 0;
        }
        ul, ol { padding-left: 1.5rem; }
        li { margin: 0.5rem 0; }
        blockquote {
            border-left: 4px solid #3b82f6;
            margin: 1rem 0;
            padding-left: 1rem;
            color: #6b7280;
        }
        .header {
            text-align: center;
            margin-bottom: 3rem;
            padding-bottom: 2rem;
            border-bottom: 1px solid #e5e7eb;
        }
        .generated-by {
            text-align: center;
            margin-top: 3rem;
            padding-top: 2rem;
            border-top: 1px solid #e5e7eb;
            color: #6b7280;
            font-size: 0.9rem;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>📚 Project Documentation</h1>
        <p>Generated on %s</p>
    </div>

    <div class="content">
        %s
    </div>

    <div class="generated-by">
        <p>Generated with ❤️ by <strong>GitDocAI</strong></p>
    </div>
</body>
</html>`

// HTMLExporter exports a standalone styled HTML document.
type HTMLExporter struct{}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Export renders the markdown through the plain-tag conversion and
// wraps it in the document shell.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	body := markdown.Convert(doc.Content, markdown.StyleDocument)
	html := fmt.Sprintf(htmlTemplate, doc.GeneratedAt.Format("January 2, 2006"), body)
	return []byte(html), nil
}

// Name returns the exporter name.
func (e *HTMLExporter) Name() string {
	return "HTML"
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// ContentType returns the HTML MIME type.
func (e *HTMLExporter) ContentType() string {
	return "text/html; charset=utf-8"
}
