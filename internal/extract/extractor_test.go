package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestIsSupported(t *testing.T) {
	e := NewExtractor()
	require.True(t, e.IsSupported("text/plain", "notes.txt"))
	require.True(t, e.IsSupported("text/plain; charset=utf-8", "notes.txt"))
	require.True(t, e.IsSupported("application/pdf", "manual.pdf"))
	require.True(t, e.IsSupported("application/octet-stream", "readme.md"))
	require.True(t, e.IsSupported("", "policy.docx"))
	require.False(t, e.IsSupported("image/png", "image.png"))
	require.False(t, e.IsSupported("application/octet-stream", "archive.zip"))
	require.False(t, e.IsSupported("", ""))
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor()
	path := writeFile(t, "notes.txt", []byte("  refund policy\nline two  \n"))
	text, err := e.Extract(path, "text/plain")
	require.NoError(t, err)
	require.Equal(t, "refund policy\nline two", text)
}

func TestExtractPlainTextLatin1Fallback(t *testing.T) {
	e := NewExtractor()
	// "café" encoded as Latin-1, invalid as UTF-8.
	path := writeFile(t, "legacy.txt", []byte{'c', 'a', 'f', 0xe9})
	text, err := e.Extract(path, "text/plain")
	require.NoError(t, err)
	require.Equal(t, "café", text)
}

func TestExtractMarkdownByExtension(t *testing.T) {
	e := NewExtractor()
	path := writeFile(t, "guide.md", []byte("# Title\n\nbody text"))
	text, err := e.Extract(path, "application/octet-stream")
	require.NoError(t, err)
	require.Equal(t, "# Title\n\nbody text", text)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewExtractor()
	path := writeFile(t, "image.png", []byte{0x89, 'P', 'N', 'G'})
	_, err := e.Extract(path, "image/png")
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract(filepath.Join(t.TempDir(), "missing.txt"), "text/plain")
	require.ErrorIs(t, err, appErr.ErrExtraction)
}

func TestExtractBrokenPDF(t *testing.T) {
	e := NewExtractor()
	path := writeFile(t, "broken.pdf", []byte("not a pdf"))
	_, err := e.Extract(path, "application/pdf")
	require.ErrorIs(t, err, appErr.ErrExtraction)
}
