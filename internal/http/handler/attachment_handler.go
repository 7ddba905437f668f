package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/service"
	"go.uber.org/zap"
)

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	maxUploadBytes    int64
	logger            *zap.Logger
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, maxUploadBytes int64, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
	}
}

// Upload stores a multipart file attached to a project or invoice
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondJSON(w, http.StatusRequestEntityTooLarge, domain.ErrorResponse{
			Error:   "Request Entity Too Large",
			Message: fmt.Sprintf("File too large: maximum size is %d bytes", h.maxUploadBytes),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid file upload: file field is required",
		})
		return
	}
	defer file.Close()

	in := &service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	if pid := r.FormValue("projectId"); pid != "" {
		id, err := parseFormUUID(pid)
		if err != nil {
			respondInvalidID(w, "project")
			return
		}
		in.ProjectID = id
	}
	if iid := r.FormValue("invoiceId"); iid != "" {
		id, err := parseFormUUID(iid)
		if err != nil {
			respondInvalidID(w, "invoice")
			return
		}
		in.InvoiceID = id
	}

	attachment, err := h.attachmentService.Upload(r.Context(), in)
	if err != nil {
		respondServiceError(w, h.logger, err, "upload file")
		return
	}
	respondJSON(w, http.StatusCreated, attachment)
}

// Download streams a stored attachment back to the caller
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "attachment")
		return
	}

	attachment, reader, err := h.attachmentService.Download(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "download file")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+attachment.Filename+"\"")
	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))

	_, _ = io.Copy(w, reader)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "attachment")
		return
	}

	if err := h.attachmentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	projectID, err := parseOptionalUUID(r, "projectId")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}
	invoiceID, err := parseOptionalUUID(r, "invoiceId")
	if err != nil {
		respondInvalidID(w, "invoice")
		return
	}

	result, err := h.attachmentService.List(r.Context(), p, projectID, invoiceID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list files")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
