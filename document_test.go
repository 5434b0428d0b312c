package pdftext

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalPDF assembles, byte-for-byte, a one-page PDF with a
// classic (non-stream) xref table: one Helvetica text run. Offsets are
// computed from the buffer being built rather than hand-counted, so
// the fixture can't drift out of sync with itself.
func buildMinimalPDF(t *testing.T) []byte {
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

	content := "BT /F1 12 Tf 100 700 Td (Hello World) Tj ET"
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

func TestDocument_New_endToEndPageCountAndText(t *testing.T) {
	data := buildMinimalPDF(t)
	doc, err := New(data, NewDefaultConfig())
	require.NoError(t, err)
	defer doc.Dispose()

	assert.Equal(t, 1, doc.PageCount())
	page := doc.Page(0)
	assert.Equal(t, "Hello World", page.Text())
	assert.NoError(t, page.Err())
}

func TestDocument_New_isDeterministicAcrossRuns(t *testing.T) {
	data := buildMinimalPDF(t)
	doc1, err := New(data, NewDefaultConfig())
	require.NoError(t, err)
	defer doc1.Dispose()
	doc2, err := New(data, NewDefaultConfig())
	require.NoError(t, err)
	defer doc2.Dispose()

	assert.Equal(t, doc1.Page(0).Text(), doc2.Page(0).Text())
}

func TestDocument_Page_mediaBoxFromPage(t *testing.T) {
	data := buildMinimalPDF(t)
	doc, err := New(data, NewDefaultConfig())
	require.NoError(t, err)
	defer doc.Dispose()

	box := doc.Page(0).MediaBox()
	assert.Equal(t, [4]float64{0, 0, 612, 792}, box)
}

func TestDocument_Dispose_invalidatesIssuedAndFuturePages(t *testing.T) {
	data := buildMinimalPDF(t)
	doc, err := New(data, NewDefaultConfig())
	require.NoError(t, err)

	loaded := doc.Page(0)
	require.Equal(t, "Hello World", loaded.Text())

	doc.Dispose()

	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, "", loaded.Text(), "a page handle read before Dispose must go empty afterward")
	assert.NoError(t, loaded.Err())
	assert.Empty(t, loaded.Lines())

	fresh := doc.Page(0)
	assert.Equal(t, "", fresh.Text(), "a page handle obtained after Dispose must not reparse")
}

func TestDocument_New_missingRootFallsBackToRecoveryOrErrors(t *testing.T) {
	data := []byte("%PDF-1.4\nnot a valid xref section at all\n%%EOF")
	_, err := New(data, NewDefaultConfig())
	assert.Error(t, err)
}
