package pdftext_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/edikte-scraper/internal/pdftext"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "Gutachten über die Liegenschaft", pdftext.Preview("  Gutachten\nüber  die\n\nLiegenschaft ", 100))

	long := strings.Repeat("ö", 800)
	got := pdftext.Preview(long, pdftext.PreviewLength)
	assert.Equal(t, 500, utf8.RuneCountInString(got))
}

func TestExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gutachten_x.pdf")
	require.NoError(t, os.WriteFile(path, []byte("<html>error page</html>"), 0o644))

	_, err := pdftext.Extract(path)
	assert.Error(t, err)

	_, err = pdftext.Extract(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
