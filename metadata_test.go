package pdftext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePDFDate_fullPrecisionWithOffset(t *testing.T) {
	got := parsePDFDate("D:20230615143022+05'30'")
	require.NotNil(t, got)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.June, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, 22, got.Second())
	_, offset := got.Zone()
	assert.Equal(t, 5*3600+30*60, offset)
}

func TestParsePDFDate_yearOnly(t *testing.T) {
	got := parsePDFDate("D:2023")
	require.NotNil(t, got)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestParsePDFDate_negativeOffset(t *testing.T) {
	got := parsePDFDate("D:20230615120000-08'00'")
	require.NotNil(t, got)
	_, offset := got.Zone()
	assert.Equal(t, -8*3600, offset)
}

func TestParsePDFDate_tooShortIsNil(t *testing.T) {
	assert.Nil(t, parsePDFDate("D:12"))
	assert.Nil(t, parsePDFDate(""))
}

func TestParsePDFDate_noDPrefixStillParses(t *testing.T) {
	got := parsePDFDate("20230615120000")
	require.NotNil(t, got)
	assert.Equal(t, 2023, got.Year())
}

func TestReadMetadata_infoFields(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	d.trailer = cosDict{
		"Info": cosDict{
			"Title":  "My Document",
			"Author": "Jane Doe",
		},
	}
	d.root = newValue(d, cosDict{})
	md := d.readMetadata()
	assert.Equal(t, "My Document", md.Title)
	assert.Equal(t, "Jane Doe", md.Author)
}
