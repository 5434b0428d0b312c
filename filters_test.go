package pdftext

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASCIIHexDecode(t *testing.T) {
	got := asciiHexDecode([]byte("48656C6C6F>"))
	assert.Equal(t, "Hello", string(got))
}

func TestASCIIHexDecode_whitespaceAndOddDigits(t *testing.T) {
	got := asciiHexDecode([]byte("48 65 6C 6C 6F 2>"))
	assert.Equal(t, "Hello\x20", string(got))
}

func TestASCII85Decode(t *testing.T) {
	// "Man " encodes to "9jqo^" in Adobe's ASCII85 variant.
	got := ascii85Decode([]byte("9jqo^~>"))
	assert.Equal(t, "Man ", string(got))
}

func TestASCII85Decode_zShortcut(t *testing.T) {
	got := ascii85Decode([]byte("z~>"))
	assert.Equal(t, []byte{0, 0, 0, 0}, got)
}

func TestRunLengthDecode(t *testing.T) {
	// length byte 4 means "copy next 5 literal bytes"
	input := []byte{4, 'h', 'e', 'l', 'l', 'o', 128}
	assert.Equal(t, "hello", string(runLengthDecode(input)))
}

func TestRunLengthDecode_repeat(t *testing.T) {
	// length byte 257-3=254 means "repeat next byte 3 times"
	input := []byte{254, 'x', 128}
	assert.Equal(t, "xxx", string(runLengthDecode(input)))
}

func TestPNGPredictor_subFilter(t *testing.T) {
	// One row, 1 color, 8 bpc, 3 columns: tag=1 (Sub), raw deltas [10,5,5]
	// should decode to cumulative [10,15,20].
	row := []byte{1, 10, 5, 5}
	out, err := applyPredictor(row, cosDict{"Predictor": int64(15), "Colors": int64(1), "BitsPerComponent": int64(8), "Columns": int64(3)})
	assert.NoError(t, err)
	assert.Equal(t, []byte{10, 15, 20}, out)
}

func TestPNGPredictor_upFilter(t *testing.T) {
	data := append([]byte{0, 10, 20, 30}, []byte{2, 1, 1, 1}...)
	out, err := applyPredictor(data, cosDict{"Predictor": int64(15), "Colors": int64(1), "BitsPerComponent": int64(8), "Columns": int64(3)})
	assert.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 11, 21, 31}, out)
}

func TestPredictor_noPredictorPassesThrough(t *testing.T) {
	data := []byte{1, 2, 3}
	out, err := applyPredictor(data, cosDict{})
	assert.NoError(t, err)
	assert.Equal(t, data, out)
}

// truncatedZlib builds a valid zlib stream for plaintext, then drops
// its final 4-byte Adler-32 trailer - the deflate data itself (and its
// final-block marker) stays intact, so a reader that doesn't check the
// trailer can still recover every byte.
func truncatedZlib(t *testing.T, plaintext string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte(plaintext))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	full := buf.Bytes()
	return full[:len(full)-4]
}

func TestStdlibInflate_rejectsTruncatedTrailer(t *testing.T) {
	_, err := stdlibInflate(truncatedZlib(t, "hello world, this is flate data"))
	assert.Error(t, err)
}

func TestStdlibInflateRelaxed_recoversDataDespiteTruncatedTrailer(t *testing.T) {
	got, err := stdlibInflateRelaxed(truncatedZlib(t, "hello world, this is flate data"))
	require.NoError(t, err)
	assert.Equal(t, "hello world, this is flate data", string(got))
}

func TestApplyFilter_flateFallsBackToRelaxedModeOnStrictFailure(t *testing.T) {
	d := &Document{crypto: DefaultCrypto()}
	out, err := d.applyFilter("FlateDecode", truncatedZlib(t, "recovered via relaxed inflate"), nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered via relaxed inflate", string(out))
}

func TestApplyFilter_flateFailsWhenRelaxedAlsoFails(t *testing.T) {
	d := &Document{crypto: DefaultCrypto()}
	_, err := d.applyFilter("FlateDecode", []byte{}, nil)
	assert.Error(t, err)
}

func TestLZWDecode_singleLiteralCodeThenEOD(t *testing.T) {
	// Two 9-bit codes packed MSB-first: 65 ('A', the literal-code
	// table entry) then 257 (end-of-data), padded to whole bytes.
	encoded := []byte{0x20, 0xC0, 0x40}
	got := lzwDecode(encoded, true)
	assert.Equal(t, "A", string(got))
}
