package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the text layer of every page. Pages without a content
// stream contribute nothing; the document fails only when every page that
// has content fails to decode.
type PDFExtractor struct{}

func (PDFExtractor) Format() Format {
	return FormatPDF
}

func (PDFExtractor) ExtractFile(path string) (string, error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	var withContent, failed int
	var lastErr error
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}
		withContent++
		text, err := page.GetPlainText(nil)
		if err != nil {
			failed++
			lastErr = fmt.Errorf("page %d: %w", i, err)
			continue
		}
		textBuilder.WriteString(text)
	}
	// a partly damaged document keeps its readable pages
	if withContent > 0 && failed == withContent {
		return "", fmt.Errorf("no readable page in pdf: %w", lastErr)
	}
	return textBuilder.String(), nil
}
