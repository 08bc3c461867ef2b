package extract

import (
	"path/filepath"
	"strings"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

// Extractor turns supported document files into plain text. It is stateless
// and safe for reuse across files.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

var supportedFormats = map[string][]string{
	"text/plain":      {"txt", "md"},
	"application/pdf": {"pdf"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {"docx"},
}

// IsSupported reports whether the declared content type or the file extension
// maps to a supported format. It is a pure predicate; callers skip unsupported
// files rather than failing a batch.
func (e *Extractor) IsSupported(contentType, fileName string) bool {
	if _, ok := supportedFormats[normalizeContentType(contentType)]; ok {
		return true
	}
	ext := extension(fileName)
	for _, extensions := range supportedFormats {
		for _, candidate := range extensions {
			if ext == candidate {
				return true
			}
		}
	}
	return false
}

// Extract reads the file at path and returns its plain text. The declared
// content type wins; the extension is the fallback for absent or generic
// types. Failures wrap ErrExtraction; unknown formats wrap
// ErrUnsupportedFormat.
func (e *Extractor) Extract(path, contentType string) (string, error) {
	normalized := normalizeContentType(contentType)
	ext := extension(path)
	switch {
	case normalized == "text/plain" || ext == "txt" || ext == "md":
		return extractPlainText(path)
	case normalized == "application/pdf" || ext == "pdf":
		return extractPDF(path)
	case strings.Contains(normalized, "wordprocessingml") || ext == "docx":
		return extractDocx(path)
	default:
		return "", appErr.ErrUnsupportedFormat
	}
}

func normalizeContentType(contentType string) string {
	// Strip parameters like "; charset=utf-8".
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
