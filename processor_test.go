package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalPDFWithBadContentStream is buildMinimalPDF with a content
// stream that opens a dictionary operand ("<< /Key") and never supplies
// a value or closing ">>" before the stream ends: parseDict reads the
// key, then calls parseValue, which hits tokEOF and returns a ParseError
// ("unexpected end of file while parsing object") - the one way a
// content stream's own grammar (as opposed to a missing resource) can
// make extractRuns fail outright.
func buildMinimalPDFWithBadContentStream(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make(map[int]int64)

	obj := func(n int, body string) {
		offsets[n] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	obj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	content := "<< /Key"
	obj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xrefStart := int64(buf.Len())
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", 6)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= 5; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	buf.WriteString("trailer\n")
	buf.WriteString("<< /Size 6 /Root 1 0 R >>\n")
	buf.WriteString("startxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefStart)
	buf.WriteString("%%EOF")

	return buf.Bytes()
}

// buildTwoPagePDF builds a two-page PDF, each page rendering the text
// "Hello World" via its own content stream, sharing one Helvetica font
// resource. Used to exercise Processor's own MaxTotalChars accounting,
// which only bites across pages - a single page's text is already
// clipped to MaxTotalChars by assembleText before Processor ever sees
// it (see Page.Text), so a single-page document can never demonstrate
// the budget running out mid-document.
func buildTwoPagePDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make(map[int]int64)

	obj := func(n int, body string) {
		offsets[n] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [3 0 R 6 0 R] /Count 2 >>")
	obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	obj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	content := "BT /F1 12 Tf 100 700 Td (Hello World) Tj ET"
	obj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	obj(6, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 7 0 R >>")
	obj(7, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xrefStart := int64(buf.Len())
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", 8)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= 7; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	buf.WriteString("trailer\n")
	buf.WriteString("<< /Size 8 /Root 1 0 R >>\n")
	buf.WriteString("startxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefStart)
	buf.WriteString("%%EOF")

	return buf.Bytes()
}

func testConfig() Config {
	cfg := NewDefaultConfig()
	cfg.PerDocumentTimeout = 5 * time.Second
	return cfg
}

func TestProcessor_ExtractBytes_singlePageRoundTrip(t *testing.T) {
	p := NewProcessor(testConfig())
	data := buildMinimalPDF(t)

	res := p.ExtractBytes(context.Background(), data)
	require.NoError(t, res.Err)
	assert.Equal(t, "Hello World", res.Text)
	assert.False(t, res.Truncated)
}

func TestProcessor_ExtractBytes_malformedDataReturnsParseError(t *testing.T) {
	p := NewProcessor(testConfig())
	data := []byte("%PDF-1.4\nnot a valid xref section at all\n%%EOF")

	res := p.ExtractBytes(context.Background(), data)
	assert.Error(t, res.Err)
	_, isUnsupported := res.Err.(*UnsupportedError)
	assert.False(t, isUnsupported, "a malformed-bytes failure should surface as a ParseError, not UnsupportedError")
}

func TestProcessor_ExtractBytes_maxTotalCharsTruncates(t *testing.T) {
	// 15 chars lets page 0's full "Hello World" (11 chars) through
	// untouched, then leaves only 4 of the budget for page 1 - and since
	// the per-page clip happens before the paragraph separator is
	// written, the two pages' text runs together with no "\n\n" between
	// them.
	cfg := testConfig()
	cfg.MaxTotalChars = 15
	p := NewProcessor(cfg)
	data := buildTwoPagePDF(t)

	res := p.ExtractBytes(context.Background(), data)
	require.NoError(t, res.Err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "Hello WorldHell", res.Text)
}

func TestProcessor_ExtractFile_missingPathReturnsError(t *testing.T) {
	p := NewProcessor(testConfig())
	res := p.ExtractFile(context.Background(), "/no/such/file.pdf")
	assert.Error(t, res.Err)
}

func TestProcessor_ExtractBytes_strictModePropagatesPageError(t *testing.T) {
	cfg := testConfig()
	cfg.ParsingMode = StrictMode
	p := NewProcessor(cfg)

	data := buildMinimalPDFWithBadContentStream(t)
	res := p.ExtractBytes(context.Background(), data)
	assert.Error(t, res.Err)
}

func TestProcessor_ExtractBytes_bestEffortModeSwallowsPageError(t *testing.T) {
	cfg := testConfig()
	cfg.ParsingMode = BestEffortMode
	p := NewProcessor(cfg)

	data := buildMinimalPDFWithBadContentStream(t)
	res := p.ExtractBytes(context.Background(), data)
	assert.NoError(t, res.Err)
}

func TestNewProcessor_invalidConfigPanics(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrentPDFs = 0 // violates validate:"min=1"
	assert.Panics(t, func() { NewProcessor(cfg) })
}

func TestProcessor_ExtractBytes_respectsAlreadyCanceledContext(t *testing.T) {
	p := NewProcessor(testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.ExtractBytes(ctx, buildMinimalPDF(t))
	assert.Error(t, res.Err)
}
