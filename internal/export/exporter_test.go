package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitdocai/gitdocai/internal/model"
	apperrors "github.com/gitdocai/gitdocai/pkg/errors"
)

func docFixture() *Document {
	return &Document{
		Content:     "# Title\n\nBody text.",
		Kind:        model.GenerationKindDocumentation,
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func tutorialFixture(tutorialType string) *Document {
	return &Document{
		Content:      "# Tutorial\n\nSteps.",
		Kind:         model.GenerationKindTutorial,
		TutorialType: tutorialType,
		GeneratedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestNewManager tests that the default exporters are registered
func TestNewManager(t *testing.T) {
	m := NewManager()
	formats := m.SupportedFormats()
	assert.Len(t, formats, 3)
	for _, format := range []Format{FormatMarkdown, FormatHTML, FormatPDF} {
		exp, err := m.GetExporter(format)
		require.NoError(t, err)
		assert.NotNil(t, exp)
	}
}

// TestManager_Export_UnsupportedFormat tests the structured error for an
// unknown format
func TestManager_Export_UnsupportedFormat(t *testing.T) {
	m := NewManager()
	_, err := m.Export(docFixture(), Format("docx"))

	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeExportFormat, appErr.Code)
}

// TestManager_Filename tests the download filename contract
func TestManager_Filename(t *testing.T) {
	m := NewManager()

	tests := []struct {
		name   string
		doc    *Document
		format Format
		want   string
	}{
		{"documentation markdown", docFixture(), FormatMarkdown, "README.md"},
		{"documentation html", docFixture(), FormatHTML, "documentation.html"},
		{"documentation pdf", docFixture(), FormatPDF, "documentation.pdf"},
		{"tutorial markdown", tutorialFixture("getting-started"), FormatMarkdown, "tutorial-getting-started.md"},
		{"tutorial html", tutorialFixture("deployment"), FormatHTML, "tutorial-deployment.html"},
		{"tutorial pdf", tutorialFixture("troubleshooting"), FormatPDF, "tutorial-troubleshooting.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Filename(tt.doc, tt.format))
		})
	}
}

// TestMarkdownExporter tests the raw passthrough
func TestMarkdownExporter(t *testing.T) {
	exp := NewMarkdownExporter()
	assert.Equal(t, "Markdown", exp.Name())
	assert.Equal(t, ".md", exp.FileExtension())
	assert.Equal(t, "text/markdown; charset=utf-8", exp.ContentType())

	doc := docFixture()
	data, err := exp.Export(doc)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, string(data))
}

// TestHTMLExporter tests the standalone document shell
func TestHTMLExporter(t *testing.T) {
	exp := NewHTMLExporter()
	assert.Equal(t, "HTML", exp.Name())
	assert.Equal(t, ".html", exp.FileExtension())

	data, err := exp.Export(docFixture())
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "📚 Project Documentation")
	assert.Contains(t, html, "Generated on June 1, 2025")
	assert.Contains(t, html, "Generated with ❤️ by <strong>GitDocAI</strong>")
	// Body went through the plain-tag conversion.
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<p>Body text.</p>")
}

// TestPDFExporter_Metadata tests the PDF exporter identity without
// requiring a Chrome binary
func TestPDFExporter_Metadata(t *testing.T) {
	exp := NewPDFExporter()
	assert.Equal(t, "PDF", exp.Name())
	assert.Equal(t, ".pdf", exp.FileExtension())
	assert.Equal(t, "application/pdf", exp.ContentType())
}

func TestDefaultPDFOptions(t *testing.T) {
	opts := DefaultPDFOptions()
	assert.InDelta(t, 8.27, opts.PaperWidth, 0.001)
	assert.InDelta(t, 11.69, opts.PaperHeight, 0.001)
	assert.True(t, opts.PrintBackground)
	assert.Equal(t, 1.0, opts.Scale)
	assert.Equal(t, 120*time.Second, opts.Timeout)
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"markdown", "html", "pdf"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), format)
	}

	_, err := ParseFormat("docx")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeExportFormat, appErr.Code)
}

func TestManager_ContentType(t *testing.T) {
	m := NewManager()
	assert.Equal(t, "application/pdf", m.ContentType(FormatPDF))
	assert.Equal(t, "", m.ContentType(Format("docx")))
}

// TestManager_RegisterReplaces tests that registering a format twice
// replaces the exporter
func TestManager_RegisterReplaces(t *testing.T) {
	m := NewEmptyManager()
	m.Register(FormatMarkdown, NewMarkdownExporter())
	m.Register(FormatMarkdown, NewMarkdownExporter())
	assert.Len(t, m.SupportedFormats(), 1)
}
