// Package pdftext extracts per-page plain text from PDF documents. The heavy
// lifting is delegated to github.com/ledongthuc/pdf; this package only cleans
// the output and drops pages too short to carry claims.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is the cleaned text of one PDF page.
type PageText struct {
	Number int // 1-based page number
	Text   string
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// ExtractPages reads a PDF from r and returns the total page count plus the
// cleaned text of every page whose text is at least minChars long. Pages the
// library cannot decode are skipped rather than failing the whole document.
// Parameters:
//   - r: PDF content.
//   - minChars: minimum cleaned-text length for a page to be kept.
//   - maxPages: upper bound on pages read; 0 means no limit.
// Returns:
//   - int: total pages in the document.
//   - []PageText: kept pages in order.
//   - error: non-nil if the document cannot be parsed at all.
func ExtractPages(r io.Reader, minChars, maxPages int) (int, []PageText, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read document: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	total := reader.NumPage()
	limit := total
	if maxPages > 0 && maxPages < limit {
		limit = maxPages
	}

	var pages []PageText
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single undecodable page should not sink the document.
			continue
		}
		cleaned := CleanText(text)
		if len(cleaned) < minChars {
			continue
		}
		pages = append(pages, PageText{Number: i, Text: cleaned})
	}

	return total, pages, nil
}
