package pdftext

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ragtext/pdftext/logger"
)

// ParsingMode selects how the reader reacts to the first
// unrecoverable failure within a single document: StrictMode
// propagates it immediately, BestEffort keeps going page by page and
// collects per-page errors (see Page.Err).
type ParsingMode string

const (
	StrictMode     ParsingMode = "strict"
	BestEffortMode ParsingMode = "best-effort"
)

// Config is validated once, at Processor or Document construction
// time, and then treated as immutable for the lifetime of whatever it
// configures.
type Config struct {
	// MaxConcurrentPDFs bounds how many Documents Processor's
	// ExtractBytes/ExtractFile calls process at the same time; it has no effect on a single New()
	// call. A single document is always walked by one goroutine - the
	// object cache in Document is not safe for concurrent access.
	MaxConcurrentPDFs int `validate:"min=1,max=64"`

	// MaxFormDepth bounds Form XObject recursion in the content-stream
	// interpreter (content.go); a Form that invokes itself, directly
	// or through a chain, stops being expanded past this depth.
	MaxFormDepth int `validate:"min=1,max=64"`

	// PerDocumentTimeout sets a deadline on each of Processor's attempts
	// to open a document. The deadline is checked only before an attempt
	// starts: opening itself is not interrupted, and page extraction is
	// not bounded by it.
	PerDocumentTimeout time.Duration `validate:"required"`

	ParsingMode ParsingMode `validate:"oneof=strict best-effort"`

	MaxRetries int `validate:"min=0,max=3"`

	// MaxTotalChars caps the length of each page's assembled plain text
	// and, in Processor, the total text returned for one document
	// (text past the budget is cut and Result.Truncated is set); 0
	// means unbounded. Guards against pathological content
	// streams (e.g. a Form XObject bomb) blowing up memory.
	MaxTotalChars int `validate:"min=0"`

	// StripFormPlaceholders removes DocuSign-style anchor-tag runs
	// ("\\s*{{*}}\\s*" and similar bracket conventions) from assembled
	// text; see assembler.go. Defaults to true: most callers extracting
	// plain text from e-signature documents want the signed content,
	// not the template's placeholder tags.
	StripFormPlaceholders bool

	// PageSeparator joins consecutive pages' text in a multi-page
	// Processor.ExtractBytes/ExtractFile result; defaults to "\n\n".
	PageSeparator string

	// IncludeInvisibleText keeps text-rendering-mode-3/7 ("invisible")
	// show-text runs - the OCR text layer laid over a scanned image in
	// many searchable PDFs. Dropped by default since it duplicates
	// what a caller doing layout-aware extraction usually wants to see
	// once, not twice.
	IncludeInvisibleText bool

	DebugOn bool
	Logger  logger.LogFunc

	Crypto Crypto
}

// NewDefaultConfig returns the configuration used when a caller has
// no specific tuning needs: bounded concurrency across documents,
// best-effort parsing within one document, and the stdlib-backed
// Crypto from defaults.go.
func NewDefaultConfig() Config {
	return Config{
		MaxConcurrentPDFs:     5,
		MaxFormDepth:          10,
		PerDocumentTimeout:    30 * time.Second,
		ParsingMode:           BestEffortMode,
		MaxRetries:            1,
		MaxTotalChars:         0,
		StripFormPlaceholders: true,
		PageSeparator:         "\n\n",
		Crypto:                DefaultCrypto(),
	}
}

func (cfg Config) validate() error {
	logger.Debug("validating Config")
	return validator.New().Struct(&cfg)
}

// withDefaults fills in the zero-value fields a caller building a
// Config by hand is likely to have left unset: Crypto (or just its
// InflateRelaxed), ParsingMode, MaxFormDepth and PageSeparator. New
// and NewProcessor call validate first, so there an empty ParsingMode
// or a zero MaxFormDepth is rejected by validation before these
// defaults apply; the Crypto and PageSeparator defaults, which
// validation does not check, are the ones that take effect.
func (cfg Config) withDefaults() Config {
	if cfg.Crypto.Inflate == nil || cfg.Crypto.MD5 == nil || cfg.Crypto.AESCBC == nil {
		cfg.Crypto = DefaultCrypto()
	} else if cfg.Crypto.InflateRelaxed == nil {
		cfg.Crypto.InflateRelaxed = stdlibInflateRelaxed
	}
	if cfg.ParsingMode == "" {
		cfg.ParsingMode = BestEffortMode
	}
	if cfg.MaxFormDepth == 0 {
		cfg.MaxFormDepth = 10
	}
	if cfg.PageSeparator == "" {
		cfg.PageSeparator = "\n\n"
	}
	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}
	return cfg
}
