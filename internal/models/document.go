// Package models defines the data passed between the stages of the document pipeline.
package models

// UploadRequest is a file payload plus the filename the client declared for it.
// It is owned by the boundary that received it and is not retained by the pipeline.
type UploadRequest struct {
	Filename string
	Payload  []byte
}

// StagedFile identifies an uploaded payload written to the staging location.
// Name never contains path separators or traversal segments.
type StagedFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Extraction methods recorded on ExtractionResult.
const (
	MethodOCR      = "ocr"
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodPDFEmpty = "pdf-empty"
)

// ExtractionResult is the unmodified output of the extraction stage.
type ExtractionResult struct {
	RawText string `json:"raw_text"`
	Method  string `json:"method"`
	Pages   int    `json:"pages"`
}

// DocumentResult is the response payload for one processed upload.
// Text is the verbatim extracted text; Lines holds its non-blank lines in order.
type DocumentResult struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

// Status describes a running docproc instance.
type Status struct {
	Engine       string        `json:"engine"`
	AllowedTypes []string      `json:"allowed_types"`
	MaxUploadMB  int64         `json:"max_upload_mb"`
	Staging      StagingStatus `json:"staging"`
}

// StagingStatus describes the staging namespace.
type StagingStatus struct {
	Directory string `json:"directory,omitempty"`
	Naming    string `json:"naming"`
	Files     int    `json:"files"`
	Bytes     int64  `json:"bytes"`
}
