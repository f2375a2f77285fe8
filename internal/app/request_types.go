package app

// IngestDocumentRequest carries one decoded document into the pipeline.
// DocumentText is plain text produced by the upstream decoding step; the
// original filename feeds the filename-based client fallback.
type IngestDocumentRequest struct {
	DocumentText     string `json:"document_text"`
	OriginalFilename string `json:"original_filename"`
	// DryRun extracts and classifies without persisting anything.
	DryRun bool `json:"dry_run,omitempty"`
}
