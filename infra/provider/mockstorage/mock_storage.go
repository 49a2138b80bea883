package mockstorage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/provider/storage"
	"github.com/google/uuid"
)

// MockDocumentStore keeps uploaded files in memory for tests and local development.
type MockDocumentStore struct {
	mu    sync.Mutex
	files map[string][]byte

	// Set to make Upload or Delete fail.
	UploadErr error
	DeleteErr error
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{files: make(map[string][]byte)}
}

func (m *MockDocumentStore) Upload(_ context.Context, params storage.UploadParams) (*storage.StoredFile, error) {
	if m.UploadErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, m.UploadErr)
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	publicID := path.Join(params.Folder, uuid.NewString())
	m.mu.Lock()
	m.files[publicID] = body
	m.mu.Unlock()
	return &storage.StoredFile{
		URL:      "https://files.local/" + publicID + path.Ext(params.FileName),
		PublicID: publicID,
		Bytes:    int64(len(body)),
	}, nil
}

func (m *MockDocumentStore) Delete(_ context.Context, publicID string) error {
	if m.DeleteErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, m.DeleteErr)
	}
	m.mu.Lock()
	delete(m.files, publicID)
	m.mu.Unlock()
	return nil
}

// Has reports whether a file is currently stored.
func (m *MockDocumentStore) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[publicID]
	return ok
}

// Len returns the number of stored files.
func (m *MockDocumentStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

var _ storage.DocumentStore = (*MockDocumentStore)(nil)
