package extractor

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxExtractor joins the non-empty body paragraphs of a docx with newlines.
type DocxExtractor struct{}

func (DocxExtractor) Format() Format {
	return FormatDOCX
}

func (DocxExtractor) ExtractFile(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	paras, err := bodyParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("failed to parse docx body: %w", err)
	}

	fullText := make([]string, 0, len(paras))
	for _, p := range paras {
		if p != "" {
			fullText = append(fullText, p)
		}
	}
	return strings.Join(fullText, "\n"), nil
}

// bodyParagraphs walks word/document.xml and returns the text of each w:p
// that is a direct child of w:body, in document order. Paragraphs inside
// tables and text boxes are not part of the paragraph sequence.
func bodyParagraphs(content string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		paras    []string
		stack    []string
		paraAt   = -1
		inText   bool
		paraText strings.Builder
	)

	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}
	// true when the current position is inside a paragraph nested in the
	// tracked one (e.g. text box content)
	nested := func() bool {
		for _, name := range stack[paraAt+1:] {
			if name == "p" {
				return true
			}
		}
		return false
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if paraAt < 0 {
				if name == "p" && parent() == "body" {
					paraAt = len(stack)
					paraText.Reset()
				}
			} else if parent() == "r" && !nested() {
				switch name {
				case "t":
					inText = true
				case "tab", "ptab":
					paraText.WriteByte('\t')
				case "cr":
					paraText.WriteByte('\n')
				case "br":
					// page and column breaks carry no text
					if breakType(t) == "textWrapping" {
						paraText.WriteByte('\n')
					}
				case "noBreakHyphen":
					paraText.WriteByte('-')
				}
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("unbalanced document xml")
			}
			stack = stack[:len(stack)-1]
			if paraAt >= 0 {
				switch {
				case len(stack) == paraAt:
					paras = append(paras, paraText.String())
					paraAt = -1
				case t.Name.Local == "t":
					inText = false
				}
			}

		case xml.CharData:
			if inText {
				paraText.Write(t)
			}
		}
	}
	return paras, nil
}

// breakType is the w:type of a w:br, defaulting to a line break.
func breakType(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == "type" && attr.Value != "" {
			return attr.Value
		}
	}
	return "textWrapping"
}
