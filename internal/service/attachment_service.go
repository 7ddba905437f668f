package service

import (
	"context"
	"fmt"
	"io"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttachmentService handles file uploads tied to projects and invoices
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	projectRepo    *repository.ProjectRepository
	invoiceRepo    *repository.InvoiceRepository
	store          *storage.Storage
	logger         *zap.Logger
}

func NewAttachmentService(
	attachmentRepo *repository.AttachmentRepository,
	projectRepo *repository.ProjectRepository,
	invoiceRepo *repository.InvoiceRepository,
	store *storage.Storage,
	logger *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		projectRepo:    projectRepo,
		invoiceRepo:    invoiceRepo,
		store:          store,
		logger:         logger,
	}
}

// UploadInput describes one incoming file
type UploadInput struct {
	Filename    string
	ContentType string
	ProjectID   *uuid.UUID
	InvoiceID   *uuid.UUID
	Body        io.Reader
}

// Upload stores the blob and its metadata row. The parent project or
// invoice must exist in the caller's company.
func (s *AttachmentService) Upload(ctx context.Context, in *UploadInput) (*domain.AttachmentDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionFileWrite)
	if err != nil {
		return nil, err
	}
	if in.Filename == "" {
		return nil, fmt.Errorf("%w: filename required", ErrInvalidInput)
	}
	if in.ProjectID != nil {
		if _, err := s.projectRepo.GetByID(ctx, *in.ProjectID); err != nil {
			return nil, translateNotFound(err)
		}
	}
	if in.InvoiceID != nil {
		if _, err := s.invoiceRepo.GetByID(ctx, *in.InvoiceID); err != nil {
			return nil, translateNotFound(err)
		}
	}

	path, size, err := s.store.Save(user.CompanyID, in.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment := &domain.Attachment{
		CompanyID:   user.CompanyID,
		ProjectID:   in.ProjectID,
		InvoiceID:   in.InvoiceID,
		Filename:    in.Filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: path,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		s.store.Delete(path)
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	s.logger.Info("attachment uploaded",
		zap.String("attachment_id", attachment.ID.String()),
		zap.String("filename", attachment.Filename),
		zap.Int64("size", size),
	)

	dto := mapper.ToAttachmentDTO(attachment)
	return &dto, nil
}

// Download returns an attachment's metadata and content stream
func (s *AttachmentService) Download(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	if _, err := RequirePermission(ctx, domain.PermissionFileRead); err != nil {
		return nil, nil, err
	}
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, translateNotFound(err)
	}
	body, err := s.store.Open(attachment.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	return attachment, body, nil
}

// Delete removes the metadata row and the stored blob
func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionFileWrite); err != nil {
		return err
	}
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err)
	}
	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return s.store.Delete(attachment.StoragePath)
}

func (s *AttachmentService) List(ctx context.Context, p repository.Pagination, projectID, invoiceID *uuid.UUID) (*domain.ListResponse[domain.AttachmentDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionFileRead); err != nil {
		return nil, err
	}
	p.Normalize()

	attachments, total, err := s.attachmentRepo.List(ctx, p, projectID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	resp := &domain.ListResponse[domain.AttachmentDTO]{
		Items:      make([]domain.AttachmentDTO, 0, len(attachments)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range attachments {
		resp.Items = append(resp.Items, mapper.ToAttachmentDTO(&attachments[i]))
	}
	return resp, nil
}
