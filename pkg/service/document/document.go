// Package document records student verification documents and tells every
// admin about each new one.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"github.com/amirasaad/studentrelief/pkg/provider/storage"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// broadcastConcurrency bounds parallel emits during an admin broadcast.
const broadcastConcurrency = 8

type Service struct {
	uow    repository.UnitOfWork
	store  storage.DocumentStore
	bus    eventbus.Bus
	logger *slog.Logger
	now    func() time.Time
}

// New builds the document service. store may be nil when only out-of-band
// uploads are accepted.
func New(uow repository.UnitOfWork, store storage.DocumentStore, bus eventbus.Bus, logger *slog.Logger) *Service {
	return &Service{uow: uow, store: store, bus: bus, logger: logger, now: time.Now}
}

// UploadInput describes a file already stored elsewhere.
type UploadInput struct {
	Type     domain.DocumentType
	FileName string
	FileURL  string
	FileSize int64
	MimeType string
}

// FileInput is a file to store before recording it.
type FileInput struct {
	Type     domain.DocumentType
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

// Upload records a document for the caller's student profile and broadcasts
// a notification to every admin.
func (s *Service) Upload(ctx context.Context, id domain.Identity, in UploadInput) (*domain.Document, error) {
	student, err := s.studentProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, student, in)
}

// UploadFile stores the file, then records it like Upload. The stored file is
// removed again when the record cannot be persisted.
func (s *Service) UploadFile(ctx context.Context, id domain.Identity, in FileInput) (*domain.Document, error) {
	const op = "document.UploadFile"
	if s.store == nil {
		return nil, fmt.Errorf("%s: %w: no document store configured", op, domain.ErrStorage)
	}
	student, err := s.studentProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("handler", "UploadDocumentFile", "studentID", student.ID)

	stored, err := s.store.Upload(ctx, storage.UploadParams{
		Folder:   student.ID.String(),
		FileName: in.FileName,
		Body:     in.Body,
	})
	if err != nil {
		log.Error("failed to store document file", "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	size := in.Size
	if stored.Bytes > 0 {
		size = stored.Bytes
	}
	doc, err := s.record(ctx, student, UploadInput{
		Type:     in.Type,
		FileName: in.FileName,
		FileURL:  stored.URL,
		FileSize: size,
		MimeType: in.MimeType,
	})
	if err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), stored.PublicID); delErr != nil {
			log.Error("failed to remove orphaned document file", "public_id", stored.PublicID, "error", delErr)
		}
		return nil, err
	}
	return doc, nil
}

// ListMine returns the caller's documents.
func (s *Service) ListMine(ctx context.Context, id domain.Identity) ([]*domain.Document, error) {
	student, err := s.studentProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.uow.DocumentRepository().ListByStudent(ctx, student.ID)
}

func (s *Service) studentProfile(ctx context.Context, id domain.Identity) (*domain.StudentProfile, error) {
	student, err := s.uow.StudentRepository().GetByUserID(ctx, id.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrStudentProfileRequired
	}
	if err != nil {
		return nil, fmt.Errorf("load student profile: %w", err)
	}
	return student, nil
}

func (s *Service) record(ctx context.Context, student *domain.StudentProfile, in UploadInput) (*domain.Document, error) {
	log := s.logger.With("handler", "UploadDocument", "studentID", student.ID, "type", in.Type)

	doc := &domain.Document{
		ID:         uuid.New(),
		StudentID:  student.ID,
		Type:       in.Type,
		FileName:   in.FileName,
		FileURL:    in.FileURL,
		FileSize:   in.FileSize,
		MimeType:   in.MimeType,
		Status:     domain.DocumentPending,
		UploadedAt: s.now().UTC(),
	}
	if err := s.uow.DocumentRepository().Create(ctx, doc); err != nil {
		log.Error("failed to persist document", "error", err)
		return nil, fmt.Errorf("persist document: %w", err)
	}
	log.Info("📄 Document uploaded", "documentID", doc.ID)

	s.broadcast(ctx, student, doc, log)
	return doc, nil
}

// broadcast queues one notification per admin. Failures are logged per
// recipient and never reach the caller.
func (s *Service) broadcast(ctx context.Context, student *domain.StudentProfile, doc *domain.Document, log *slog.Logger) {
	if s.bus == nil {
		return
	}
	admins, err := s.uow.UserRepository().ListIDsByRole(ctx, domain.RoleAdmin)
	if err != nil {
		log.Error("failed to list admins for broadcast", "error", err)
		return
	}

	var g errgroup.Group
	g.SetLimit(broadcastConcurrency)
	for _, adminID := range admins {
		g.Go(func() error {
			n := domain.DocumentUploadNotification(adminID, student, doc)
			if err := s.bus.Emit(ctx, &events.NotificationRequested{Notification: *n}); err != nil {
				log.Error("failed to queue admin notification", "adminID", adminID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	log.Info("📣 Admins notified", "recipients", len(admins))
}
