package pdftext

import "strings"

// objRef identifies an indirect object by number and generation.
type objRef struct {
	num uint32
	gen uint16
}

// objDef is a freshly parsed "N G obj ... endobj" body, before it is
// stored in the document's object cache.
type objDef struct {
	ref objRef
	obj interface{}
}

// cosName is a PDF name, stored without its leading slash and with
// #XX escapes already decoded.
type cosName string

// cosDict is a PDF dictionary. Keys are stored without the leading
// slash. Values are any of: nil, bool, int64, float64, string (raw
// bytes of a literal/hex string), cosName, cosArray, cosDict,
// *cosStream, objRef.
type cosDict map[cosName]interface{}

// cosArray is a PDF array.
type cosArray []interface{}

// cosStream pairs a stream dictionary with the raw (still encoded,
// still possibly encrypted) bytes of its payload. raw is a sub-slice
// of the document's resident buffer, not a copy; decodeStream returns
// the decoded bytes separately and leaves raw as it is.
type cosStream struct {
	dict cosDict
	ref  objRef
	raw  []byte
}

// Kind enumerates the COS object sum type described by the data
// model: every PDF object is exactly one of these.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindName
	KindArray
	KindDict
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Value is a resolved COS object: an indirect reference that appeared
// in the object graph has already been followed to its target before
// a Value is handed to a caller. doc is nil for Values built outside
// of a document (e.g. by the recovery scanner) that are resolved by
// hand.
type Value struct {
	doc *Document
	raw interface{}
}

func newValue(doc *Document, raw interface{}) Value {
	return Value{doc: doc, raw: raw}
}

// Kind reports the dynamic type of the object.
func (v Value) Kind() Kind {
	switch v.raw.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64, float64:
		return KindNumber
	case string:
		return KindString
	case cosName:
		return KindName
	case cosArray:
		return KindArray
	case cosDict:
		return KindDict
	case *cosStream:
		return KindStream
	default:
		return KindNull
	}
}

// IsNull reports whether the value is PDF null, including the
// "dangling reference" case where an indirect reference could not be
// resolved: a dangling reference behaves as null rather than as an
// error.
func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// Bool returns the boolean value, or false if the object is not a
// PDF boolean.
func (v Value) Bool() bool {
	b, _ := v.raw.(bool)
	return b
}

// Int64 returns the object's numeric value truncated to an integer,
// or 0 if the object is not a number.
func (v Value) Int64() int64 {
	switch n := v.raw.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Float64 returns the object's numeric value, or 0 if the object is
// not a number.
func (v Value) Float64() float64 {
	switch n := v.raw.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// RawString returns the raw bytes of a literal or hex string object
// as a Go string, with no text-encoding interpretation applied. For
// anything else it returns "".
func (v Value) RawString() string {
	s, _ := v.raw.(string)
	return s
}

// Name returns the object's name (without the leading slash), or ""
// if the object is not a PDF name.
func (v Value) Name() string {
	n, _ := v.raw.(cosName)
	return string(n)
}

// Len reports the element count of an array, or the entry count of a
// dict/stream dict. For anything else it reports 0.
func (v Value) Len() int {
	switch x := v.raw.(type) {
	case cosArray:
		return len(x)
	case cosDict:
		return len(x)
	case *cosStream:
		return len(x.dict)
	default:
		return 0
	}
}

// Index returns the i'th element of an array, resolving indirect
// references through the owning document. Out-of-range or
// non-array access returns a null Value rather than panicking — the
// reader tolerates malformed structure wherever it reasonably can.
func (v Value) Index(i int) Value {
	arr, ok := v.raw.(cosArray)
	if !ok || i < 0 || i >= len(arr) {
		return newValue(v.doc, nil)
	}
	return v.doc.resolve(arr[i])
}

// Key looks up a dictionary/stream-dictionary entry by name (without
// the leading slash), resolving indirect references. Missing keys
// and non-dict objects both yield a null Value.
func (v Value) Key(key string) Value {
	d := v.dictOf()
	if d == nil {
		return newValue(v.doc, nil)
	}
	val, ok := d[cosName(key)]
	if !ok {
		return newValue(v.doc, nil)
	}
	return v.doc.resolve(val)
}

// Keys returns the dictionary's entry names in unspecified order.
func (v Value) Keys() []string {
	d := v.dictOf()
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	return keys
}

func (v Value) dictOf() cosDict {
	switch x := v.raw.(type) {
	case cosDict:
		return x
	case *cosStream:
		return x.dict
	default:
		return nil
	}
}

// StreamBytes returns the decoded payload of a stream object, running
// its filter chain (see filters.go). For a non-stream object it
// returns nil, false.
func (v Value) StreamBytes() ([]byte, bool) {
	st, ok := v.raw.(*cosStream)
	if !ok {
		return nil, false
	}
	data, err := v.doc.decodeStream(st)
	if err != nil {
		logWarnf("stream decode failed for %d %d R: %v", st.ref.num, st.ref.gen, err)
		return nil, false
	}
	return data, true
}

// Text interprets a string object as PDF text: it detects a UTF-16BE
// BOM or a PDFDocEncoding-only byte pattern and decodes accordingly,
// per the text-string conventions used for /Title, /Author and
// similar metadata and annotation fields.
func (v Value) Text() string {
	s, ok := v.raw.(string)
	if !ok {
		return ""
	}
	return decodeTextString(s)
}

// isNameEqual is a small helper used throughout resolvers that branch
// on a dict's /Type or /Subtype or /Filter name.
func isNameEqual(v Value, want string) bool {
	return v.Kind() == KindName && strings.EqualFold(v.Name(), want)
}
