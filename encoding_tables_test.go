package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseEncoding_winAnsi(t *testing.T) {
	r, ok := baseEncoding("WinAnsiEncoding", 'A')
	assert.True(t, ok)
	assert.Equal(t, 'A', r)
}

func TestBaseEncoding_standardEncoding_quoterightQuirk(t *testing.T) {
	r, ok := baseEncoding("StandardEncoding", 0x27) // quoteright, not apostrophe
	assert.True(t, ok)
	assert.Equal(t, '’', r)
}

func TestBaseEncoding_unmappedCodeFails(t *testing.T) {
	_, ok := baseEncoding("MacExpertEncoding", 0xFF)
	assert.False(t, ok)
}

func TestDecodeTextString_utf16BOM(t *testing.T) {
	s := string([]byte{0xFE, 0xFF, 0x00, 0x41, 0x00, 0x42})
	assert.Equal(t, "AB", decodeTextString(s))
}

func TestDecodeTextString_utf8BOM(t *testing.T) {
	s := string([]byte{0xEF, 0xBB, 0xBF}) + "hello"
	assert.Equal(t, "hello", decodeTextString(s))
}

func TestDecodeTextString_pdfDocEncodingHighByte(t *testing.T) {
	s := string([]byte{0x80}) // bullet in PDFDocEncoding
	assert.Equal(t, "•", decodeTextString(s))
}

func TestDecodeTextString_plainASCIIPassesThrough(t *testing.T) {
	assert.Equal(t, "Hello", decodeTextString("Hello"))
}
