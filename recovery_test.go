package pdftext

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDFWithBrokenXref writes the same objects as buildMinimalPDF but
// points startxref at garbage, forcing the full-file recovery scan.
func buildPDFWithBrokenXref(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	obj := func(n int, body string) {
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	obj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	content := "BT /F1 12 Tf 100 700 Td (Recovered) Tj ET"
	obj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	buf.WriteString("startxref\n0\n%%EOF")
	return buf.Bytes()
}

func TestRecovery_noValidXrefFallsBackToFullFileScan(t *testing.T) {
	data := buildPDFWithBrokenXref(t)
	doc, err := New(data, NewDefaultConfig())
	require.NoError(t, err)
	defer doc.Dispose()

	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, "Recovered", doc.Page(0).Text())
}

func TestRecovery_laterDuplicateObjectWins(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Marker (old) >>\nendobj\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Marker (new) >>\nendobj\n")
	buf.WriteString("startxref\n0\n%%EOF")

	d := &Document{data: buf.Bytes()}
	require.NoError(t, d.recoverByScanning("test"))

	v, parseErr := d.parseObjectAt(d.xref[objRef{num: 1}].offset, objRef{num: 1})
	require.NoError(t, parseErr)
	dict, ok := v.(cosDict)
	require.True(t, ok)
	assert.Equal(t, "new", dict["Marker"])
}

func TestRecovery_findCatalogByScanning_whenNoRootInTrailer(t *testing.T) {
	data := buildPDFWithBrokenXref(t)
	d := &Document{data: data}
	err := d.recoverByScanning("no startxref")
	require.NoError(t, err)
	ref, ok := d.trailer["Root"].(objRef)
	require.True(t, ok)
	assert.Equal(t, uint32(1), ref.num)
}
