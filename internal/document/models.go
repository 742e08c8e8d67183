package document

import (
	"errors"
	"time"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrMissingFile      = errors.New("file is required")
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
)

// MaxUploadBytes caps uploads; x-rays and scanned forms stay well under this.
const MaxUploadBytes = 20 << 20 // 20 MiB

// DocumentResponse is the document metadata returned to clients. Content is
// only ever streamed by the download endpoint.
type DocumentResponse struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentContent carries the stored bytes for a download.
type DocumentContent struct {
	DocumentResponse
	Content []byte
}
