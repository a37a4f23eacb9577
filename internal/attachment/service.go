package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

// Service stores attachment content in the blob store and its metadata in the
// database.
type Service struct {
	db    *gorm.DB
	store BlobStore
}

func NewService(db *gorm.DB, store BlobStore) *Service {
	return &Service{db: db, store: store}
}

// Upload saves the content and records the attachment against a pathway.
func (s *Service) Upload(ctx context.Context, pathwayID uuid.UUID, stepID, uploadedByID *uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*Attachment, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id := uuid.New()
	key := fmt.Sprintf("%s%s", id.String(), filepath.Ext(filename))

	if err := s.store.Save(ctx, key, reader, contentType); err != nil {
		return nil, fmt.Errorf("failed to store attachment content: %w", err)
	}

	url, err := s.store.GenerateURL(ctx, key, 0)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to clean up orphaned attachment", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to generate attachment URL: %w", err)
	}

	attachment := &Attachment{
		ID:           id,
		PathwayID:    pathwayID,
		StepID:       stepID,
		UploadedByID: uploadedByID,
		FileName:     filename,
		Key:          key,
		URL:          url,
		Size:         size,
		ContentType:  contentType,
	}
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to clean up orphaned attachment", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	slog.InfoContext(ctx, "Attachment uploaded", "id", id, "pathwayId", pathwayID, "key", key)
	return attachment, nil
}

// Download streams an attachment's content together with its content type.
func (s *Service) Download(ctx context.Context, attachmentID uuid.UUID) (io.ReadCloser, *Attachment, error) {
	attachment, err := s.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	reader, contentType, err := s.store.Get(ctx, attachment.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read attachment content: %w", err)
	}
	if contentType != "" {
		attachment.ContentType = contentType
	}
	return reader, attachment, nil
}

// GetByID retrieves attachment metadata.
func (s *Service) GetByID(ctx context.Context, attachmentID uuid.UUID) (*Attachment, error) {
	var attachment Attachment
	if err := s.db.WithContext(ctx).First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}
	return &attachment, nil
}

// ListForPathway returns a pathway's attachments, newest first.
func (s *Service) ListForPathway(ctx context.Context, pathwayID uuid.UUID) ([]Attachment, error) {
	var attachments []Attachment
	if err := s.db.WithContext(ctx).
		Where("pathway_id = ?", pathwayID).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, fmt.Errorf("failed to list attachments for pathway %s: %w", pathwayID, err)
	}
	return attachments, nil
}

// Delete removes both the metadata record and the stored content.
func (s *Service) Delete(ctx context.Context, attachmentID uuid.UUID) error {
	attachment, err := s.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&Attachment{}, "id = ?", attachmentID).Error; err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", attachmentID, err)
	}

	if err := s.store.Delete(ctx, attachment.Key); err != nil {
		slog.WarnContext(ctx, "failed to delete attachment content", "key", attachment.Key, "error", err)
	}
	return nil
}
