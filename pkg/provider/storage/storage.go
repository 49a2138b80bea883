// Package storage defines where uploaded student documents are kept.
package storage

import (
	"context"
	"io"
)

// UploadParams describes one file to store.
type UploadParams struct {
	// Folder groups files, e.g. "documents/<studentId>".
	Folder   string
	FileName string
	Body     io.Reader
}

// StoredFile is the result of a successful upload.
type StoredFile struct {
	URL      string
	PublicID string
	Bytes    int64
}

// DocumentStore uploads and removes document files.
// Failures wrap domain.ErrStorage.
type DocumentStore interface {
	Upload(ctx context.Context, params UploadParams) (*StoredFile, error)
	Delete(ctx context.Context, publicID string) error
}
