package service

import (
	"context"
	"fmt"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewProjectService(
	projectRepo *repository.ProjectRepository,
	customerRepo *repository.CustomerRepository,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionProjectWrite)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.ProjectStatusPlanned
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, status)
	}

	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, translateNotFound(err)
		}
	}

	project := &domain.Project{
		CompanyID:   user.CompanyID,
		CustomerID:  req.CustomerID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        pq.StringArray(req.Tags),
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// getVisible loads a project the caller may see. Client sessions only see
// projects belonging to their linked customer.
func (s *ProjectService) getVisible(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if user.IsClient() {
		if user.CustomerID == nil || project.CustomerID == nil || *project.CustomerID != *user.CustomerID {
			return nil, ErrNotFound
		}
	}
	return project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionProjectRead)
	if err != nil {
		return nil, err
	}
	project, err := s.getVisible(ctx, user, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionProjectWrite); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *req.Status)
		}
		project.Status = *req.Status
	}
	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
		}
		project.Progress = *req.Progress
	}
	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, translateNotFound(err)
		}
		project.CustomerID = req.CustomerID
	}
	if req.Budget != nil {
		project.Budget = req.Budget
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.Tags != nil {
		project.Tags = pq.StringArray(req.Tags)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionProjectWrite); err != nil {
		return err
	}
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		return translateNotFound(err)
	}
	return s.projectRepo.Delete(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, p repository.Pagination, filter repository.ListFilter) (*domain.ListResponse[domain.ProjectDTO], error) {
	user, err := RequirePermission(ctx, domain.PermissionProjectRead)
	if err != nil {
		return nil, err
	}
	p.Normalize()

	// Client sessions are pinned to their own customer regardless of filter
	if user.IsClient() {
		filter.CustomerID = user.CustomerID
		if filter.CustomerID == nil {
			return &domain.ListResponse[domain.ProjectDTO]{
				Items: []domain.ProjectDTO{}, Page: p.Page, PageSize: p.PageSize,
			}, nil
		}
	}

	projects, total, err := s.projectRepo.List(ctx, p, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	resp := &domain.ListResponse[domain.ProjectDTO]{
		Items:      make([]domain.ProjectDTO, 0, len(projects)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range projects {
		resp.Items = append(resp.Items, mapper.ToProjectDTO(&projects[i]))
	}
	return resp, nil
}

// --- Phases ---

func (s *ProjectService) CreatePhase(ctx context.Context, projectID uuid.UUID, req *domain.CreatePhaseRequest) (*domain.ProjectPhaseDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionProjectWrite); err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, translateNotFound(err)
	}

	taken, err := s.projectRepo.PhaseSortOrderExists(ctx, projectID, req.SortOrder, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check phase order: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: sort order %d already used", ErrConflict, req.SortOrder)
	}

	phase := &domain.ProjectPhase{
		ProjectID: projectID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		Status:    domain.PhaseStatusPending,
	}
	if err := s.projectRepo.CreatePhase(ctx, phase); err != nil {
		return nil, fmt.Errorf("failed to create phase: %w", err)
	}

	dto := mapper.ToPhaseDTO(phase)
	return &dto, nil
}

func (s *ProjectService) UpdatePhase(ctx context.Context, projectID, phaseID uuid.UUID, req *domain.UpdatePhaseRequest) (*domain.ProjectPhaseDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionProjectWrite); err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, translateNotFound(err)
	}
	phase, err := s.projectRepo.GetPhase(ctx, projectID, phaseID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if req.Name != nil {
		phase.Name = *req.Name
	}
	if req.SortOrder != nil && *req.SortOrder != phase.SortOrder {
		taken, err := s.projectRepo.PhaseSortOrderExists(ctx, projectID, *req.SortOrder, &phase.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check phase order: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("%w: sort order %d already used", ErrConflict, *req.SortOrder)
		}
		phase.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		phase.Status = *req.Status
	}

	if err := s.projectRepo.UpdatePhase(ctx, phase); err != nil {
		return nil, fmt.Errorf("failed to update phase: %w", err)
	}

	dto := mapper.ToPhaseDTO(phase)
	return &dto, nil
}

func (s *ProjectService) DeletePhase(ctx context.Context, projectID, phaseID uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionProjectWrite); err != nil {
		return err
	}
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return translateNotFound(err)
	}
	if _, err := s.projectRepo.GetPhase(ctx, projectID, phaseID); err != nil {
		return translateNotFound(err)
	}
	return s.projectRepo.DeletePhase(ctx, projectID, phaseID)
}

// --- Notes ---

func (s *ProjectService) CreateNote(ctx context.Context, projectID uuid.UUID, req *domain.CreateNoteRequest) (*domain.ProjectNoteDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionProjectWrite)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, translateNotFound(err)
	}

	note := &domain.ProjectNote{
		ProjectID: projectID,
		AuthorID:  user.UserID,
		Body:      req.Body,
	}
	if err := s.projectRepo.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	dto := mapper.ToNoteDTO(note)
	return &dto, nil
}

func (s *ProjectService) ListNotes(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectNoteDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionProjectRead)
	if err != nil {
		return nil, err
	}
	if _, err := s.getVisible(ctx, user, projectID); err != nil {
		return nil, err
	}

	notes, err := s.projectRepo.ListNotes(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	dtos := make([]domain.ProjectNoteDTO, 0, len(notes))
	for i := range notes {
		dtos = append(dtos, mapper.ToNoteDTO(&notes[i]))
	}
	return dtos, nil
}

func (s *ProjectService) DeleteNote(ctx context.Context, projectID, noteID uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionProjectWrite); err != nil {
		return err
	}
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return translateNotFound(err)
	}
	return s.projectRepo.DeleteNote(ctx, projectID, noteID)
}
