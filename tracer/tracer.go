// Package tracer accumulates a verbose trace that is too noisy for the
// normal logger but useful when a document fails to extract cleanly:
// logger.Debug appends its message here when the last argument is
// true. In this module the Processor's own decisions (initialization,
// document-open retries, best-effort page errors) are traced this way.
package tracer

import (
	"fmt"
	"io"
)

var traceMessages []string

// Log adds a message to the trace log.
func Log(msg string) {
	traceMessages = append(traceMessages, msg)
}

// Flush prints the accumulated trace log to stdout and resets it.
func Flush() {
	for _, msg := range traceMessages {
		fmt.Println(msg)
	}
	traceMessages = nil
}

// FlushTo writes the accumulated trace log to w and resets it.
func FlushTo(w io.Writer) {
	for _, msg := range traceMessages {
		fmt.Fprintln(w, msg)
	}
	traceMessages = nil
}

// Len reports how many trace messages are currently buffered.
func Len() int {
	return len(traceMessages)
}
