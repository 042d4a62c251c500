package export

// MarkdownExporter exports the raw markdown document unchanged.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export returns the document text as-is.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	return []byte(doc.Content), nil
}

// Name returns the exporter name.
func (e *MarkdownExporter) Name() string {
	return "Markdown"
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// ContentType returns the markdown MIME type.
func (e *MarkdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}
