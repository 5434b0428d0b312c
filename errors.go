package pdftext

import "fmt"

// ParseError reports that the PDF bytes are malformed beyond what the
// recovery scan (see recovery.go) could repair: an unreadable xref chain
// with a failing full-file scan, a missing /Root, an unresolvable stream
// length with no trailing "endstream", or an undecodable Flate payload.
type ParseError struct {
	Message string
	Offset  int64 // -1 when no specific byte offset applies
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("malformed PDF: %s (at offset %d)", e.Message, e.Offset)
	}
	return fmt.Sprintf("malformed PDF: %s", e.Message)
}

func parseErrorf(offset int64, format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Offset: offset}
}

// UnsupportedError reports that the PDF is well-formed but asks for a
// feature this reader does not implement: a non-empty user password,
// AES-256/V5+, a non-Standard security filter, or missing crypto
// primitives for a document that turns out to be encrypted.
type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string {
	return e.Message
}

func unsupportedErrorf(format string, args ...interface{}) *UnsupportedError {
	return &UnsupportedError{Message: fmt.Sprintf(format, args...)}
}
