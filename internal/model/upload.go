package model

import "time"

// Upload is the archive record of one file accepted by the upload endpoint.
// StoragePath is the object key; TextLength counts runes of the extracted text.
type Upload struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Kind        string    `json:"kind"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	TextLength  int       `json:"text_length"`
	CreatedAt   time.Time `json:"created_at"`
}
