package core

import "time"

const defaultDueDays = 30

// Pipeline is the single entry point for document field extraction. It wires
// the date resolver, field extractor, amount resolver, and classifier into
// one pass and guarantees a complete, storable record for any input text.
type Pipeline struct {
	fields *FieldExtractor
	now    func() time.Time
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock overrides the pipeline's notion of "today". Used by tests and by
// batch replays of historical documents.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithPrefixes overrides the invoice-number prefix tables used for numeric
// date disambiguation.
func WithPrefixes(prefixes PrefixConfig) PipelineOption {
	return func(p *Pipeline) { p.fields = NewFieldExtractor(NewDateResolver(prefixes)) }
}

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fields: NewFieldExtractor(NewDateResolver(DefaultPrefixes)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract produces the full set of invoice fields for one decoded document.
// Unresolved dates default to today (invoice date) and today+30d (due date).
func (p *Pipeline) Extract(documentText, originalFilename string) InvoiceFields {
	f := p.fields.Extract(documentText, originalFilename)

	today := p.now().UTC().Truncate(24 * time.Hour)
	if f.InvoiceDate.IsZero() {
		f.InvoiceDate = today
	}
	if f.DueDate.IsZero() {
		f.DueDate = today.AddDate(0, 0, defaultDueDays)
	}

	f.InvoiceType, f.Frequency = Classify(f.Services, f.AmountDue)
	return f
}
