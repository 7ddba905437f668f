package handler

import (
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: logger}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	customerID, err := parseOptionalUUID(r, "customerId")
	if err != nil {
		respondInvalidID(w, "customer")
		return
	}
	filter := repository.ListFilter{
		Search:     r.URL.Query().Get("search"),
		Status:     r.URL.Query().Get("status"),
		CustomerID: customerID,
	}

	result, err := h.projectService.List(r.Context(), p, filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list projects")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Phases ---

func (h *ProjectHandler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	var req domain.CreatePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	phase, err := h.projectService.CreatePhase(r.Context(), projectID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create phase")
		return
	}
	respondJSON(w, http.StatusCreated, phase)
}

func (h *ProjectHandler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}
	phaseID, err := parseIDParam(r, "phaseId")
	if err != nil {
		respondInvalidID(w, "phase")
		return
	}

	var req domain.UpdatePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	phase, err := h.projectService.UpdatePhase(r.Context(), projectID, phaseID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update phase")
		return
	}
	respondJSON(w, http.StatusOK, phase)
}

func (h *ProjectHandler) DeletePhase(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}
	phaseID, err := parseIDParam(r, "phaseId")
	if err != nil {
		respondInvalidID(w, "phase")
		return
	}

	if err := h.projectService.DeletePhase(r.Context(), projectID, phaseID); err != nil {
		respondServiceError(w, h.logger, err, "delete phase")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Notes ---

func (h *ProjectHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	notes, err := h.projectService.ListNotes(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list notes")
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

func (h *ProjectHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	note, err := h.projectService.CreateNote(r.Context(), projectID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create note")
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

func (h *ProjectHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}
	noteID, err := parseIDParam(r, "noteId")
	if err != nil {
		respondInvalidID(w, "note")
		return
	}

	if err := h.projectService.DeleteNote(r.Context(), projectID, noteID); err != nil {
		respondServiceError(w, h.logger, err, "delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
