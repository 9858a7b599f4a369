// Package pdftext pulls plain text out of downloaded appraisal PDFs.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// PreviewLength is the rune count stored with a record after download.
const PreviewLength = 500

// Extract returns the plain text of the PDF at path. Scanned PDFs without a
// text layer yield "".
func Extract(path string) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("extract text %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read text %s: %w", path, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Preview returns at most n runes of text with whitespace collapsed.
func Preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}
