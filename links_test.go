package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLinks_uriActionSurfaced(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	page := cosDict{
		"Annots": cosArray{
			cosDict{
				"Subtype": cosName("Link"),
				"Rect":    cosArray{int64(10), int64(20), int64(100), int64(40)},
				"A":       cosDict{"S": cosName("URI"), "URI": "https://example.com"},
			},
		},
	}
	links := d.readLinks(page)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com", links[0].URI)
	assert.Equal(t, 10.0, links[0].X0)
	assert.Equal(t, 100.0, links[0].X1)
}

func TestReadLinks_internalGoToLinkNotSurfaced(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	page := cosDict{
		"Annots": cosArray{
			cosDict{
				"Subtype": cosName("Link"),
				"Rect":    cosArray{int64(0), int64(0), int64(10), int64(10)},
				"A":       cosDict{"S": cosName("GoTo"), "D": cosName("page2")},
			},
		},
	}
	assert.Empty(t, d.readLinks(page))
}

func TestReadLinks_nonLinkAnnotationSkipped(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	page := cosDict{
		"Annots": cosArray{
			cosDict{"Subtype": cosName("Widget")},
		},
	}
	assert.Empty(t, d.readLinks(page))
}

func TestReadLinks_noAnnotsIsEmpty(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	assert.Empty(t, d.readLinks(cosDict{}))
}

func TestReadLinks_rectNormalizesInvertedCoordinates(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	page := cosDict{
		"Annots": cosArray{
			cosDict{
				"Subtype": cosName("Link"),
				"Rect":    cosArray{int64(100), int64(40), int64(10), int64(20)}, // x1<x0, y1<y0
				"A":       cosDict{"S": cosName("URI"), "URI": "https://example.com"},
			},
		},
	}
	links := d.readLinks(page)
	require.Len(t, links, 1)
	assert.Equal(t, 10.0, links[0].X0)
	assert.Equal(t, 100.0, links[0].X1)
	assert.Equal(t, 20.0, links[0].Y0)
	assert.Equal(t, 40.0, links[0].Y1)
}
