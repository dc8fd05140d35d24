package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestTextExtractor(t *testing.T) {
	e := &TextExtractor{}

	path := writeTemp(t, "notes.txt", []byte("hello world\nsecond line"))
	text, err := e.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world\nsecond line", text)
}

func TestTextExtractor_RejectsBinary(t *testing.T) {
	e := &TextExtractor{}

	path := writeTemp(t, "blob.txt", []byte{0x00, 0x01, 0x02})
	_, err := e.Extract(path)
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestTextExtractor_MissingFile(t *testing.T) {
	e := &TextExtractor{}

	_, err := e.Extract(filepath.Join(t.TempDir(), "absent.txt"))
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestPDFExtractor_RejectsGarbage(t *testing.T) {
	e := &PDFExtractor{}

	path := writeTemp(t, "fake.pdf", []byte("this is not a pdf"))
	_, err := e.Extract(path)
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestDispatcher_RoutesByExtension(t *testing.T) {
	e := New()

	// .txt goes through the text extractor.
	path := writeTemp(t, "doc.txt", []byte("plain content"))
	text, err := e.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "plain content", text)

	// .pdf (and .PDF) go through the PDF extractor, which rejects non-PDF bytes.
	for _, name := range []string{"doc.pdf", "doc.PDF"} {
		path := writeTemp(t, name, []byte("plain content"))
		_, err := e.Extract(path)
		assert.True(t, errors.Is(err, ErrUnreadable), "expected PDF parse failure for %s", name)
	}
}
