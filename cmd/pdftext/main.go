package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	pdftext "github.com/ragtext/pdftext"
	"github.com/ragtext/pdftext/tracer"
)

func main() {
	markdown := flag.Bool("markdown", false, "render pages as Markdown instead of plain text")
	maxChars := flag.Int("max-chars", 0, "truncate output after this many characters (0 = unlimited)")
	strict := flag.Bool("strict", false, "stop at the first page that fails to extract")
	stripPlaceholders := flag.Bool("strip-placeholders", false, "strip e-signature placeholder anchors from output")
	metadataOnly := flag.Bool("metadata", false, "print document metadata as JSON instead of text")
	timeout := flag.Duration("timeout", 30*time.Second, "per-document extraction timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pdftext [flags] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := pdftext.NewDefaultConfig()
	cfg.MaxConcurrentPDFs = 1
	cfg.PerDocumentTimeout = *timeout
	cfg.MaxTotalChars = *maxChars
	cfg.StripFormPlaceholders = *stripPlaceholders
	if *strict {
		cfg.ParsingMode = pdftext.StrictMode
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pdftext:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *metadataOnly {
		runMetadata(data, cfg, os.Stdout)
		return
	}

	if *markdown {
		runMarkdown(data, cfg)
		return
	}

	proc := pdftext.NewProcessor(cfg)
	result := proc.ExtractBytes(ctx, data)
	if result.Err != nil {
		tracer.Flush()
		fmt.Fprintln(os.Stderr, "pdftext:", result.Err)
		os.Exit(1)
	}
	if result.Truncated {
		fmt.Fprintln(os.Stderr, "pdftext: output truncated at", cfg.MaxTotalChars, "characters")
	}
	fmt.Println(result.Text)
}

func runMetadata(data []byte, cfg pdftext.Config, w *os.File) {
	doc, err := pdftext.New(data, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pdftext:", err)
		os.Exit(1)
	}
	defer doc.Dispose()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc.Metadata()); err != nil {
		fmt.Fprintln(os.Stderr, "pdftext:", err)
		os.Exit(1)
	}
}

// runMarkdown renders every page as Markdown; unlike ExtractBytes it
// doesn't go through Processor, since Markdown rendering is a
// single-document, interactive-use code path rather than a batch one.
func runMarkdown(data []byte, cfg pdftext.Config) {
	doc, err := pdftext.New(data, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pdftext:", err)
		os.Exit(1)
	}
	defer doc.Dispose()

	for i := 0; i < doc.PageCount(); i++ {
		if i > 0 {
			fmt.Println("\n---\n")
		}
		page := doc.Page(i)
		fmt.Println(page.Markdown())
		if err := page.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "pdftext: page %d: %v\n", i, err)
		}
	}
}
