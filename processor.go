package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/ragtext/pdftext/logger"
)

// Result is one document's extraction outcome.
type Result struct {
	Text      string
	Truncated bool
	Err       error
}

// pageExtractor decides how a single page's failure affects the
// document's overall result: StrictMode propagates it immediately,
// BestEffortMode records it on the page and moves on. Mirrors the
// per-page strategy split the single-document API already makes via
// Page.Err, but applied uniformly across a whole document's pages.
type pageExtractor interface {
	extractPage(page *Page) (string, error)
}

type strictPageExtractor struct{}

func (strictPageExtractor) extractPage(page *Page) (string, error) {
	text := page.Text()
	return text, page.Err()
}

type bestEffortPageExtractor struct{}

func (bestEffortPageExtractor) extractPage(page *Page) (string, error) {
	text := page.Text()
	if err := page.Err(); err != nil {
		logger.Debug(fmt.Sprintf("best-effort: page extraction error, keeping partial text: %v", err), true)
	}
	return text, nil
}

// Processor bounds how many Documents are processed concurrently and
// applies the configured ParsingMode/retry/truncation policy to each
// one. A single Document's pages are always walked sequentially by
// the goroutine processing that document - see the concurrency note
// on Document.
type Processor struct {
	cfg       Config
	sem       *semaphore.Weighted
	extractor pageExtractor
}

// NewProcessor validates cfg and builds a Processor. Panics on an
// invalid Config: a configuration mistake is a startup-time
// programming error, not a per-request one.
func NewProcessor(cfg Config) *Processor {
	if err := cfg.validate(); err != nil {
		panic(err)
	}
	cfg = cfg.withDefaults()

	var extractor pageExtractor
	switch cfg.ParsingMode {
	case StrictMode:
		extractor = strictPageExtractor{}
	default:
		extractor = bestEffortPageExtractor{}
	}

	logger.Debug(fmt.Sprintf("processor initialized: parsing_mode=%v max_concurrent_pdfs=%d", cfg.ParsingMode, cfg.MaxConcurrentPDFs), true)
	return &Processor{
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrentPDFs)),
		extractor: extractor,
	}
}

// ExtractFile reads path and extracts its text, respecting
// Config.MaxConcurrentPDFs across concurrent callers.
func (p *Processor) ExtractFile(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return p.ExtractBytes(ctx, data)
}

// ExtractBytes extracts text from an in-memory PDF, acquiring one of
// Config.MaxConcurrentPDFs slots for the duration of the call and
// retrying document construction up to Config.MaxRetries times when
// it fails with any error other than UnsupportedError.
func (p *Processor) ExtractBytes(ctx context.Context, data []byte) Result {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Result{Err: fmt.Errorf("acquire slot: %w", err)}
	}
	defer p.sem.Release(1)

	docCfg := p.cfg
	var doc *Document
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		docCtx, cancel := context.WithTimeout(ctx, p.cfg.PerDocumentTimeout)
		doc, err = newWithContext(docCtx, data, docCfg)
		cancel()
		if err == nil {
			break
		}
		if _, unsupported := err.(*UnsupportedError); unsupported {
			break // retrying won't help a document this reader can't open
		}
		logger.Debug(fmt.Sprintf("retrying document open: attempt=%d err=%v", attempt, err), true)
	}
	if err != nil {
		return Result{Err: err}
	}
	defer doc.Dispose()

	return p.extractDocument(ctx, doc)
}

// newWithContext is New with a deadline: document construction is
// pure CPU work with no I/O to cancel mid-flight, so the context is
// checked only around the call, matching how the rest of the package
// treats parsing as synchronous.
func newWithContext(ctx context.Context, data []byte, cfg Config) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return New(data, cfg)
}

func (p *Processor) extractDocument(ctx context.Context, doc *Document) Result {
	var out strings.Builder
	truncated := false

	for i := 0; i < doc.PageCount(); i++ {
		select {
		case <-ctx.Done():
			return Result{Text: out.String(), Truncated: true, Err: ctx.Err()}
		default:
		}

		page := doc.Page(i)
		text, err := p.extractor.extractPage(page)
		if err != nil {
			return Result{Text: out.String(), Truncated: truncated, Err: fmt.Errorf("page %d: %w", i, err)}
		}

		if p.cfg.MaxTotalChars > 0 {
			remaining := p.cfg.MaxTotalChars - out.Len()
			if remaining <= 0 {
				truncated = true
				break
			}
			if len(text) > remaining {
				out.WriteString(text[:remaining])
				truncated = true
				break
			}
		}
		if i > 0 {
			out.WriteString(p.cfg.PageSeparator)
		}
		out.WriteString(text)
	}

	return Result{Text: out.String(), Truncated: truncated}
}
