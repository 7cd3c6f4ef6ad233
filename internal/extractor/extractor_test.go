package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		tag     string
		want    Format
		wantErr bool
	}{
		{"pdf", FormatPDF, false},
		{".pdf", FormatPDF, false},
		{".PDF", FormatPDF, false},
		{"docx", FormatDOCX, false},
		{".DocX", FormatDOCX, false},
		{".txt", "", true},
		{"doc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseFormat(tt.tag)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromFilename(t *testing.T) {
	got, err := FormatFromFilename("uploads/John_Resume.PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, got)

	got, err = FormatFromFilename("cv.final.docx")
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, got)

	_, err = FormatFromFilename("resume.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = FormatFromFilename("resume")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := New(WithTempDir(t.TempDir()))

	_, err := e.ExtractPath("resume.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = e.Extract(Document{Format: "txt", Data: []byte("hello")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var extractionErr *ExtractionError
	assert.False(t, errors.As(err, &extractionErr))
}

func TestExtractBytes_DocxSkipsEmptyParagraphs(t *testing.T) {
	dir := t.TempDir()
	e := New(WithTempDir(dir))

	data := buildDocx(t, docxParagraphs("Hello", "", "World"))
	text, err := e.ExtractBytes(FormatDOCX, data)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", text)
	assertDirEmpty(t, dir)
}

func TestExtractPath_Docx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.DOCX")
	require.NoError(t, os.WriteFile(path, buildDocx(t, docxParagraphs("Jane Doe", "Skills")), 0o600))

	text, err := New().ExtractPath(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills", text)
}

func TestExtractBytes_CorruptDocx(t *testing.T) {
	dir := t.TempDir()
	e := New(WithTempDir(dir))

	_, err := e.ExtractBytes(FormatDOCX, []byte("definitely not a zip archive"))
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, FormatDOCX, extractionErr.Format)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	assertDirEmpty(t, dir)
}

func TestExtractBytes_CorruptPDF(t *testing.T) {
	dir := t.TempDir()
	e := New(WithTempDir(dir))

	_, err := e.ExtractBytes(FormatPDF, []byte("garbage bytes that are not a pdf at all"))
	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, FormatPDF, extractionErr.Format)
	assertDirEmpty(t, dir)
}

func TestExtractBytes_PDF(t *testing.T) {
	dir := t.TempDir()
	e := New(WithTempDir(dir))

	text, err := e.ExtractBytes(FormatPDF, buildPDF("BT /F1 12 Tf 72 720 Td (Hello) Tj ET"))
	require.NoError(t, err)
	assert.Contains(t, text, "Hello")
	assertDirEmpty(t, dir)
}

func TestExtractBytes_PDFWithoutTextLayer(t *testing.T) {
	e := New(WithTempDir(t.TempDir()))

	text, err := e.ExtractBytes(FormatPDF, buildPDF(""))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractBytes_PDFUndecodableContent(t *testing.T) {
	dir := t.TempDir()
	e := New(WithTempDir(dir))

	// claims zlib compression but is not
	pdfBytes := buildPDF("BT /F1 12 Tf (Hello) Tj ET", "/Filter /FlateDecode")
	text, err := e.ExtractBytes(FormatPDF, pdfBytes)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, FormatPDF, extractionErr.Format)
	assert.Empty(t, text)
	assertDirEmpty(t, dir)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(Document{Format: FormatPDF, Path: filepath.Join(t.TempDir(), "gone.pdf")})
	var extractionErr *ExtractionError
	assert.True(t, errors.As(err, &extractionErr))
}

type panickingExtractor struct{}

func (panickingExtractor) Format() Format { return FormatPDF }

func (panickingExtractor) ExtractFile(string) (string, error) {
	panic("malformed xref")
}

func TestExtractBytes_ParserPanicRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	e := New(WithTempDir(dir), WithExtractor(panickingExtractor{}))

	_, err := e.ExtractBytes(FormatPDF, []byte("%PDF-1.4"))
	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Contains(t, err.Error(), "malformed xref")
	assertDirEmpty(t, dir)
}

// echoExtractor returns the file contents after a pause, so concurrent calls
// overlap while their temp files exist.
type echoExtractor struct {
	pause time.Duration
}

func (echoExtractor) Format() Format { return FormatDOCX }

func (e echoExtractor) ExtractFile(path string) (string, error) {
	time.Sleep(e.pause)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func TestExtractBytes_ConcurrentCallsUseDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	e := New(WithTempDir(dir), WithExtractor(echoExtractor{pause: 20 * time.Millisecond}))

	const n = 16
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := bytes.Repeat([]byte(fmt.Sprintf("doc-%02d;", i)), 64)
			results[i], errs[i] = e.ExtractBytes(FormatDOCX, payload)
		}(i)
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		want := string(bytes.Repeat([]byte(fmt.Sprintf("doc-%02d;", i)), 64))
		assert.Equal(t, want, results[i])
	}
	assertDirEmpty(t, dir)
}

func TestBodyParagraphs(t *testing.T) {
	body := `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Work</w:t></w:r><w:r><w:t xml:space="preserve"> Experience</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Acme</w:t><w:tab/><w:t>2020</w:t><w:br/><w:t>Engineer</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p/>` +
		`<w:p><w:hyperlink><w:r><w:t>jane@example.com</w:t></w:r></w:hyperlink></w:p>`

	paras, err := bodyParagraphs(docxBody(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Work Experience", "Acme\t2020\nEngineer", "", "jane@example.com"}, paras)
}

func TestBodyParagraphs_BreaksAndHyphens(t *testing.T) {
	body := `<w:p><w:r><w:t>Page one</w:t></w:r></w:p>` +
		`<w:p><w:r><w:br w:type="page"/></w:r></w:p>` +
		`<w:p><w:r><w:t>Left</w:t><w:br w:type="column"/><w:t>Right</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line</w:t><w:br w:type="textWrapping"/><w:t>wrap</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>e</w:t><w:noBreakHyphen/><w:t>mail</w:t><w:ptab w:alignment="right"/><w:t>x</w:t></w:r></w:p>`

	paras, err := bodyParagraphs(docxBody(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Page one", "", "LeftRight", "Line\nwrap", "e-mail\tx"}, paras)
}

func TestExtractBytes_DocxDropsPageBreakParagraphs(t *testing.T) {
	body := `<w:p><w:r><w:t>Page one</w:t></w:r></w:p>` +
		`<w:p><w:r><w:br w:type="page"/></w:r></w:p>` +
		`<w:p><w:r><w:t>Page two</w:t></w:r></w:p>`

	text, err := New(WithTempDir(t.TempDir())).ExtractBytes(FormatDOCX, buildDocx(t, docxBody(body)))
	require.NoError(t, err)
	assert.Equal(t, "Page one\nPage two", text)
}

func TestBodyParagraphs_MalformedXML(t *testing.T) {
	_, err := bodyParagraphs(`<w:document xmlns:w="` + wordNS + `"><w:body><w:p>`)
	assert.Error(t, err)
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}
