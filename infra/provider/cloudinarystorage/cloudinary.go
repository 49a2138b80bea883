package cloudinarystorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/provider/storage"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	uploadTimeout = 60 * time.Second
	deleteTimeout = 30 * time.Second
)

// Store keeps documents in Cloudinary.
type Store struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *slog.Logger
}

// New builds a Store from the Cloudinary credentials.
func New(cfg *config.Cloudinary, logger *slog.Logger) (*Store, error) {
	if cfg == nil || cfg.CloudName == "" {
		return nil, errors.New("cloudinary: CLOUDINARY_CLOUD_NAME is not set")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.ApiKey, cfg.ApiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &Store{
		cld:    cld,
		folder: cfg.Folder,
		logger: logger.With("provider", "cloudinary"),
	}, nil
}

// Upload stores the file under the configured root folder.
func (s *Store) Upload(ctx context.Context, params storage.UploadParams) (*storage.StoredFile, error) {
	const op = "cloudinary.Upload"
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	folder := joinFolder(s.folder, params.Folder)
	res, err := s.cld.Upload.Upload(ctx, params.Body, uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicIDFor(params.FileName),
		UniqueFilename: boolPtr(true),
	})
	if err != nil {
		s.logger.Error("upload failed", "op", op, "folder", folder, "error", err)
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
	if res.Error.Message != "" {
		s.logger.Error("upload rejected", "op", op, "folder", folder, "error", res.Error.Message)
		return nil, fmt.Errorf("%s: %w: %s", op, domain.ErrStorage, res.Error.Message)
	}

	s.logger.Info("📄 Document stored", "public_id", res.PublicID, "bytes", res.Bytes)
	return &storage.StoredFile{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Bytes:    int64(res.Bytes),
	}, nil
}

// Delete removes a stored file by its public id.
func (s *Store) Delete(ctx context.Context, publicID string) error {
	const op = "cloudinary.Delete"
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		s.logger.Error("delete failed", "op", op, "public_id", publicID, "error", err)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
	return nil
}

func joinFolder(root, sub string) string {
	return strings.Trim(path.Join(root, sub), "/")
}

// publicIDFor drops the extension; Cloudinary appends its own format.
func publicIDFor(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func boolPtr(b bool) *bool { return &b }

var _ storage.DocumentStore = (*Store)(nil)
