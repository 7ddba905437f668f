package repository

import (
	"context"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *CompanyRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Company{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Company{}).Count(&count).Error
	return count, err
}

// --- Memberships ---

func (r *CompanyRepository) CreateMembership(ctx context.Context, m *domain.CompanyMembership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *CompanyRepository) GetMembership(ctx context.Context, userID, companyID uuid.UUID) (*domain.CompanyMembership, error) {
	var m domain.CompanyMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ?", userID, companyID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *CompanyRepository) ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]domain.CompanyMembership, error) {
	var memberships []domain.CompanyMembership
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error
	return memberships, err
}

func (r *CompanyRepository) ListMembers(ctx context.Context, companyID uuid.UUID) ([]domain.CompanyMembership, error) {
	var memberships []domain.CompanyMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&memberships).Error
	return memberships, err
}

func (r *CompanyRepository) UpdateMembershipRole(ctx context.Context, userID, companyID uuid.UUID, role domain.MembershipRole) error {
	return r.db.WithContext(ctx).
		Model(&domain.CompanyMembership{}).
		Where("user_id = ? AND company_id = ?", userID, companyID).
		Update("role", role).Error
}

func (r *CompanyRepository) DeleteMembership(ctx context.Context, userID, companyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ?", userID, companyID).
		Delete(&domain.CompanyMembership{}).Error
}

// ListUserIDsByRoles returns the user IDs of company members holding any of
// the given roles. Used to target notifications.
func (r *CompanyRepository) ListUserIDsByRoles(ctx context.Context, companyID uuid.UUID, roles []domain.MembershipRole) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.CompanyMembership{}).
		Where("company_id = ? AND role IN ?", companyID, roles).
		Pluck("user_id", &ids).Error
	return ids, err
}
