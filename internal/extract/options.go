package extract

// Options are the extractor's tunable heuristics. Zero fields take the
// defaults.
type Options struct {
	// TOC end detection: stop at the first window of TOCWindow paragraphs
	// with at least TOCThreshold non-TOC lines, scanning at most TOCScanCap
	// paragraphs and falling back to TOCFallbackSpan.
	TOCWindow       int `yaml:"toc_window" json:"toc_window"`
	TOCThreshold    int `yaml:"toc_threshold" json:"toc_threshold"`
	TOCScanCap      int `yaml:"toc_scan_cap" json:"toc_scan_cap"`
	TOCFallbackSpan int `yaml:"toc_fallback_span" json:"toc_fallback_span"`

	// Maximum length in characters for numbered paragraphs and for
	// paragraphs named like a chapter to count as headings.
	NumberedHeadingMaxLen int `yaml:"numbered_heading_max_len" json:"numbered_heading_max_len"`
	KeywordHeadingMaxLen  int `yaml:"keyword_heading_max_len" json:"keyword_heading_max_len"`
}

// DefaultOptions returns the standard heuristics.
func DefaultOptions() Options {
	return Options{
		TOCWindow:             8,
		TOCThreshold:          5,
		TOCScanCap:            500,
		TOCFallbackSpan:       250,
		NumberedHeadingMaxLen: 120,
		KeywordHeadingMaxLen:  60,
	}
}

// WithDefaults fills unset fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.TOCWindow <= 0 {
		o.TOCWindow = d.TOCWindow
	}
	if o.TOCThreshold <= 0 {
		o.TOCThreshold = d.TOCThreshold
	}
	if o.TOCScanCap <= 0 {
		o.TOCScanCap = d.TOCScanCap
	}
	if o.TOCFallbackSpan <= 0 {
		o.TOCFallbackSpan = d.TOCFallbackSpan
	}
	if o.NumberedHeadingMaxLen <= 0 {
		o.NumberedHeadingMaxLen = d.NumberedHeadingMaxLen
	}
	if o.KeywordHeadingMaxLen <= 0 {
		o.KeywordHeadingMaxLen = d.KeywordHeadingMaxLen
	}
	return o
}
