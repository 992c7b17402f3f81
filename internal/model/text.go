package model

import "readable/internal/readability"

// ExtractedText is the normalized text of an upload.
type ExtractedText struct {
	Text       string `json:"text"`
	Pages      int    `json:"pages,omitempty"`
	EmptyPages int    `json:"empty_pages,omitempty"`
	// UploadID is set when the upload was archived.
	UploadID string `json:"upload_id,omitempty"`
}

// ScoredText pairs a text with its readability metrics.
type ScoredText struct {
	Text    string              `json:"text"`
	Metrics readability.Metrics `json:"metrics"`
}

// Simplification is the result of simplifying a text.
type Simplification struct {
	Original   ScoredText `json:"original"`
	Simplified ScoredText `json:"simplified"`
}
