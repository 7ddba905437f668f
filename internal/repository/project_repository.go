package repository

import (
	"context"
	"strings"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Phases", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	return query.Delete(&domain.Project{}).Error
}

// ListFilter narrows project listing
type ListFilter struct {
	Search     string
	Status     string
	CustomerID *uuid.UUID
}

func (r *ProjectRepository) List(ctx context.Context, p Pagination, filter ListFilter) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Project{})
	query = ApplyCompanyScope(ctx, query)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = ApplyCustomerScope(query, filter.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Customer").
		Offset(p.Offset()).Limit(p.PageSize).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, total, err
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Count(&count).Error
	return count, err
}

// --- Phases ---

func (r *ProjectRepository) CreatePhase(ctx context.Context, phase *domain.ProjectPhase) error {
	return r.db.WithContext(ctx).Create(phase).Error
}

func (r *ProjectRepository) GetPhase(ctx context.Context, projectID, phaseID uuid.UUID) (*domain.ProjectPhase, error) {
	var phase domain.ProjectPhase
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", phaseID, projectID).
		First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *ProjectRepository) ListPhases(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectPhase, error) {
	var phases []domain.ProjectPhase
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sort_order ASC").
		Find(&phases).Error
	return phases, err
}

func (r *ProjectRepository) UpdatePhase(ctx context.Context, phase *domain.ProjectPhase) error {
	return r.db.WithContext(ctx).Save(phase).Error
}

func (r *ProjectRepository) DeletePhase(ctx context.Context, projectID, phaseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", phaseID, projectID).
		Delete(&domain.ProjectPhase{}).Error
}

func (r *ProjectRepository) PhaseSortOrderExists(ctx context.Context, projectID uuid.UUID, sortOrder int, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&domain.ProjectPhase{}).
		Where("project_id = ? AND sort_order = ?", projectID, sortOrder)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// --- Notes ---

func (r *ProjectRepository) CreateNote(ctx context.Context, note *domain.ProjectNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *ProjectRepository) ListNotes(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectNote, error) {
	var notes []domain.ProjectNote
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *ProjectRepository) DeleteNote(ctx context.Context, projectID, noteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", noteID, projectID).
		Delete(&domain.ProjectNote{}).Error
}
