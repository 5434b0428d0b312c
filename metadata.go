package pdftext

import (
	"strconv"
	"time"
)

// DocumentMetadata bundles the document-level /Info dictionary
// fields text extraction callers usually want alongside the page
// text, plus the raw XMP packet when the document carries one -
// XMP is returned as-is (it's already XML) rather than parsed; this
// package extracts page text/tables/markdown, not general XMP.
type DocumentMetadata struct {
	Title, Author, Subject, Keywords, Creator, Producer string
	CreationDate, ModDate                               *time.Time
	XMP                                                  string
}

func (d *Document) readMetadata() DocumentMetadata {
	var md DocumentMetadata
	if infoDict, ok := d.resolve(d.trailer["Info"]).raw.(cosDict); ok {
		md.Title = textField(d, infoDict, "Title")
		md.Author = textField(d, infoDict, "Author")
		md.Subject = textField(d, infoDict, "Subject")
		md.Keywords = textField(d, infoDict, "Keywords")
		md.Creator = textField(d, infoDict, "Creator")
		md.Producer = textField(d, infoDict, "Producer")
		md.CreationDate = parsePDFDate(textField(d, infoDict, "CreationDate"))
		md.ModDate = parsePDFDate(textField(d, infoDict, "ModDate"))
	}
	if xmp := d.root.Key("Metadata"); xmp.Kind() == KindStream {
		if data, ok := xmp.StreamBytes(); ok {
			md.XMP = string(data)
		}
	}
	return md
}

func textField(d *Document, dict cosDict, key string) string {
	v := d.resolve(dict[cosName(key)])
	if v.Kind() != KindString {
		return ""
	}
	return v.Text()
}

// parsePDFDate parses the "D:YYYYMMDDHHmmSSOHH'mm'" date string
// format from ISO 32000-1 §7.9.4. Every component past the 4-digit
// year is optional, and the trailing timezone offset ("O" is '+',
// '-', or 'Z') may be entirely absent, so this is a hand-rolled
// positional parse rather than a single time.Parse layout.
func parsePDFDate(s string) *time.Time {
	if len(s) >= 2 && s[:2] == "D:" {
		s = s[2:]
	}
	if len(s) < 4 {
		return nil
	}
	year, ok := atoiN(s, 0, 4)
	if !ok {
		return nil
	}
	month, day, hour, min, sec := 1, 1, 0, 0, 0
	pos := 4
	for _, field := range []struct {
		dst *int
		def int
	}{{&month, 1}, {&day, 1}, {&hour, 0}, {&min, 0}, {&sec, 0}} {
		if pos+2 > len(s) {
			break
		}
		v, ok := atoiN(s, pos, pos+2)
		if !ok {
			break
		}
		*field.dst = v
		pos += 2
	}
	loc := time.UTC
	if pos < len(s) {
		switch s[pos] {
		case '+', '-':
			sign := 1
			if s[pos] == '-' {
				sign = -1
			}
			oh, _ := atoiN(s, pos+1, pos+3)
			om := 0
			if pos+6 <= len(s) {
				om, _ = atoiN(s, pos+4, pos+6)
			}
			loc = time.FixedZone("", sign*(oh*3600+om*60))
		}
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, loc)
	return &t
}

func atoiN(s string, from, to int) (int, bool) {
	if from < 0 || to > len(s) || from >= to {
		return 0, false
	}
	n, err := strconv.Atoi(s[from:to])
	if err != nil {
		return 0, false
	}
	return n, true
}
