package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/markdown"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// printTemplate is the print-oriented document shell rendered by
// headless Chrome. Page margins and break rules live in the CSS.
const printTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Documentation</title>
    <style>
        @page { margin: 2cm; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            font-size: 14px;
        }
        h1 {
            color: #2563eb;
            border-bottom: 2px solid #e5e7eb;
            padding-bottom: 0.5rem;
            page-break-after: avoid;
        }
        h2 {
            color: #374151;
            margin-top: 2rem;
            page-break-after: avoid;
        }
        h3 {
            color: #4b5563;
            page-break-after: avoid;
        }
        code {
            background: #f3f4f6;
            padding: 0.2rem 0.4rem;
            border-radius: 0.25rem;
            font-family: 'Courier New', monospace;
            font-size: 12px;
        }
        pre {
            background: #f8f9fa;
            border: 1px solid #e5e7eb;
            padding: 1rem;
            border-radius: 0.5rem;
            overflow-x: auto;
            page-break-inside: avoid;
            font-size: 12px;
        }
        pre code {
            background: none;
            padding: 0;
        }
        ul, ol { padding-left: 1.5rem; }
        li { margin: 0.3rem 0; }
        .header {
            text-align: center;
            margin-bottom: 2rem;
            padding-bottom: 1rem;
            border-bottom: 1px solid #e5e7eb;
        }
        .page-break { page-break-before: always; }
    </style>
</head>
<body>
    <div class="header">
        <h1>📚 Project Documentation</h1>
        <p>Generated on %s</p>
    </div>
    %s
</body>
</html>`

// PDFOptions configures PDF generation.
type PDFOptions struct {
	// Paper dimensions in inches (A4: 8.27 x 11.69)
	PaperWidth  float64
	PaperHeight float64

	// PrintBackground prints background colors and images
	PrintBackground bool

	// Scale of the page rendering (1.0 = 100%)
	Scale float64

	// Timeout bounds the whole Chrome session
	Timeout time.Duration

	// ChromePath overrides the Chrome binary location. Empty lets
	// chromedp resolve it.
	ChromePath string
}

// DefaultPDFOptions returns A4 defaults. Page margins come from the
// @page rule in the print CSS, not from Chrome.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:      8.27,
		PaperHeight:     11.69,
		PrintBackground: true,
		Scale:           1.0,
		Timeout:         120 * time.Second,
	}
}

// PDFExporter exports documents to PDF via headless Chrome.
type PDFExporter struct {
	options PDFOptions
}

// NewPDFExporter creates a PDF exporter with default options.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{options: DefaultPDFOptions()}
}

// NewPDFExporterWithOptions creates a PDF exporter with custom options.
func NewPDFExporterWithOptions(opts PDFOptions) *PDFExporter {
	return &PDFExporter{options: opts}
}

// Export renders the print HTML and prints it to PDF.
func (e *PDFExporter) Export(doc *Document) ([]byte, error) {
	start := time.Now()

	body := markdown.Convert(doc.Content, markdown.StylePrint)
	html := fmt.Sprintf(printTemplate, doc.GeneratedAt.Format("January 2, 2006"), body)

	logger.Debug("Starting PDF export",
		zap.Int("html_size", len(html)),
		zap.Duration("timeout", e.options.Timeout),
	)

	// Write HTML to a temporary file; file URLs avoid data URL size limits.
	tmpFile, err := os.CreateTemp("", "gitdocai-pdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(html); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	ctx, cancel := context.WithTimeout(context.Background(), e.options.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)
	if e.options.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.options.ChromePath))
	}
	opts = append(opts, chromedp.WSURLReadTimeout(60*time.Second))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var pdfData []byte
	fileURL := "file://" + tmpPath

	err = chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			pdfData, _, printErr = page.PrintToPDF().
				WithPaperWidth(e.options.PaperWidth).
				WithPaperHeight(e.options.PaperHeight).
				WithPrintBackground(e.options.PrintBackground).
				WithScale(e.options.Scale).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return printErr
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome PDF generation failed: %w", err)
	}

	logger.Info("PDF export completed",
		zap.Int("pdf_size", len(pdfData)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdfData, nil
}

// Name returns the exporter name.
func (e *PDFExporter) Name() string {
	return "PDF"
}

// FileExtension returns ".pdf".
func (e *PDFExporter) FileExtension() string {
	return ".pdf"
}

// ContentType returns the PDF MIME type.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}
