// Package export renders generated documents into downloadable formats
// with pluggable exporters.
package export

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/consts"
	"github.com/gitdocai/gitdocai/internal/model"
	apperrors "github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// Format identifies an export format.
type Format string

const (
	// FormatMarkdown exports the raw markdown document
	FormatMarkdown Format = consts.ExportFormatMarkdown
	// FormatHTML exports a standalone styled HTML document
	FormatHTML Format = consts.ExportFormatHTML
	// FormatPDF exports a PDF rendered through headless Chrome
	FormatPDF Format = consts.ExportFormatPDF
)

// Document is the exportable view of a generation. Exporters read the
// current document text; they never mutate stored state.
type Document struct {
	// Content is the markdown text, post-edit if the document was edited.
	Content string
	// Kind distinguishes documentation from tutorial generations.
	Kind model.GenerationKind
	// TutorialType is set for tutorial generations and feeds the
	// filename contract.
	TutorialType string
	// GeneratedAt is stamped into the HTML/PDF header.
	GeneratedAt time.Time
}

// Exporter renders a document into one format.
type Exporter interface {
	// Export renders the document and returns the encoded bytes
	Export(doc *Document) ([]byte, error)
	// Name returns the human-readable exporter name (e.g. "Markdown")
	Name() string
	// FileExtension returns the extension including the dot (e.g. ".md")
	FileExtension() string
	// ContentType returns the MIME type served for downloads
	ContentType() string
}

// Manager holds the registered exporters.
type Manager struct {
	exporters map[Format]Exporter
	mu        sync.RWMutex
}

// NewManager creates a manager with the default exporters registered.
func NewManager() *Manager {
	m := &Manager{exporters: make(map[Format]Exporter)}
	m.Register(FormatMarkdown, NewMarkdownExporter())
	m.Register(FormatHTML, NewHTMLExporter())
	m.Register(FormatPDF, NewPDFExporter())
	return m
}

// NewEmptyManager creates a manager with no exporters, for callers that
// register their own set.
func NewEmptyManager() *Manager {
	return &Manager{exporters: make(map[Format]Exporter)}
}

// Register registers an exporter for a format, replacing any previous one.
func (m *Manager) Register(format Format, exp Exporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporters[format] = exp
	logger.Debug("Registered exporter",
		zap.String("format", string(format)),
		zap.String("name", exp.Name()),
	)
}

// Export renders the document in the requested format.
func (m *Manager) Export(doc *Document, format Format) ([]byte, error) {
	m.mu.RLock()
	exp, ok := m.exporters[format]
	m.mu.RUnlock()

	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeExportFormat,
			"unsupported export format: "+string(format))
	}

	start := time.Now()
	data, err := exp.Export(doc)
	if err != nil {
		logger.Error("Export failed",
			zap.String("format", string(format)),
			zap.String("exporter", exp.Name()),
			zap.Error(err),
		)
		return nil, apperrors.Wrap(apperrors.ErrCodeExportFailed,
			"failed to export with "+exp.Name()+" exporter", err)
	}

	logger.Debug("Document exported",
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

// Filename returns the download filename for a document in a format.
// Markdown documentation is always README.md; tutorials are named
// tutorial-<type> in every format.
func (m *Manager) Filename(doc *Document, format Format) string {
	base := "documentation"
	if doc.Kind == model.GenerationKindTutorial && doc.TutorialType != "" {
		base = "tutorial-" + doc.TutorialType
	} else if format == FormatMarkdown {
		base = "README"
	}

	m.mu.RLock()
	exp, ok := m.exporters[format]
	m.mu.RUnlock()
	if ok {
		return base + exp.FileExtension()
	}

	switch format {
	case FormatMarkdown:
		return base + ".md"
	case FormatHTML:
		return base + ".html"
	case FormatPDF:
		return base + ".pdf"
	default:
		return base + ".txt"
	}
}

// ContentType returns the MIME type for a format, or an empty string if
// no exporter is registered for it.
func (m *Manager) ContentType(format Format) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if exp, ok := m.exporters[format]; ok {
		return exp.ContentType()
	}
	return ""
}

// SupportedFormats lists the registered formats.
func (m *Manager) SupportedFormats() []Format {
	m.mu.RLock()
	defer m.mu.RUnlock()
	formats := make([]Format, 0, len(m.exporters))
	for format := range m.exporters {
		formats = append(formats, format)
	}
	return formats
}

// GetExporter returns the exporter registered for a format.
func (m *Manager) GetExporter(format Format) (Exporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.exporters[format]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeExportFormat,
			"no exporter registered for format: "+string(format))
	}
	return exp, nil
}

// ParseFormat validates a format string from the API.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMarkdown, FormatHTML, FormatPDF:
		return Format(s), nil
	default:
		return "", apperrors.New(apperrors.ErrCodeExportFormat,
			"unsupported export format: "+s)
	}
}
