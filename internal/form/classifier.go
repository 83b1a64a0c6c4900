package form

import (
	"bytes"
)

// DefaultClassifyScanCap bounds how much of the document the classifier
// inspects. Signals relevant to form architecture live in the catalog
// and early object graph, so a prefix scan is enough.
const DefaultClassifyScanCap = 2 * 1024 * 1024

// DefaultSignalThreshold is the number of matches within one signal
// family that flips the verdict to complex.
const DefaultSignalThreshold = 2

// structuralSignals mark an XML-driven form data model, digital
// signatures, or appearance handling that makes blind mutation risky.
var structuralSignals = [][]byte{
	[]byte("/XFA"),
	[]byte("xfa:datasets"),
	[]byte("<xdp:xdp"),
	[]byte("/Type /Sig"),
	[]byte("/Type/Sig"),
	[]byte("/ByteRange"),
	[]byte("/DocMDP"),
	[]byte("/NeedAppearances false"),
	[]byte("/Perms"),
}

// DocumentClassifier declares a template simple or complex from its raw
// bytes. It never fails: empty or unreadable input classifies complex,
// the safest default.
type DocumentClassifier struct {
	scanCap       int
	threshold     int
	domainLexicon []string
}

// ClassifierOption customizes a DocumentClassifier.
type ClassifierOption func(*DocumentClassifier)

// WithScanCap overrides the prefix size inspected by Classify.
func WithScanCap(n int) ClassifierOption {
	return func(c *DocumentClassifier) {
		if n > 0 {
			c.scanCap = n
		}
	}
}

// WithSignalThreshold overrides the per-family match threshold.
func WithSignalThreshold(n int) ClassifierOption {
	return func(c *DocumentClassifier) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithDomainLexicon sets the caution lexicon of strings associated with
// known high-risk template families. It raises caution only; it never
// changes which discovery strategies run.
func WithDomainLexicon(words []string) ClassifierOption {
	return func(c *DocumentClassifier) {
		c.domainLexicon = words
	}
}

// NewDocumentClassifier creates a classifier with the default scan cap,
// threshold, and government-form caution lexicon.
func NewDocumentClassifier(opts ...ClassifierOption) *DocumentClassifier {
	c := &DocumentClassifier{
		scanCap:       DefaultClassifyScanCap,
		threshold:     DefaultSignalThreshold,
		domainLexicon: DefaultDomainLexicon(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultDomainLexicon returns boilerplate phrases of the government
// form family this engine most often meets in the wild.
func DefaultDomainLexicon() []string {
	return []string{
		"ANAF",
		"MINISTERUL",
		"Agentia Nationala",
		"Formular",
		"Cerere de",
		"Declaratie",
		"D112",
		"D230",
	}
}

// Classify inspects a bounded prefix of raw and returns the verdict plus
// the matched signals. Signals are diagnostics only.
func (c *DocumentClassifier) Classify(raw []byte) Classification {
	if len(raw) == 0 || !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return Classification{
			Complexity: ComplexityComplex,
			Signals:    []string{"unreadable input"},
		}
	}

	prefix := raw
	if len(prefix) > c.scanCap {
		prefix = prefix[:c.scanCap]
	}

	var structural, domain []string
	for _, sig := range structuralSignals {
		if bytes.Contains(prefix, sig) {
			structural = append(structural, string(sig))
		}
	}
	for _, word := range c.domainLexicon {
		if bytes.Contains(prefix, []byte(word)) {
			domain = append(domain, word)
		}
	}

	signals := append(structural, domain...)
	if len(structural) >= c.threshold || len(domain) >= c.threshold {
		return Classification{Complexity: ComplexityComplex, Signals: signals}
	}
	return Classification{Complexity: ComplexitySimple, Signals: signals}
}
