package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyService handles tenant lifecycle and membership management
type CompanyService struct {
	companyRepo *repository.CompanyRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

func NewCompanyService(
	companyRepo *repository.CompanyRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Create bootstraps a new tenant. When the caller is authenticated they
// become the owner; otherwise the owner account is created from the request.
func (s *CompanyService) Create(ctx context.Context, req *domain.CreateCompanyRequest) (*domain.CompanyDTO, error) {
	companySlug := slug.Make(req.Name)
	if companySlug == "" {
		return nil, fmt.Errorf("%w: name produces empty slug", ErrInvalidInput)
	}
	exists, err := s.companyRepo.SlugExists(ctx, companySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: company slug %q already taken", ErrConflict, companySlug)
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	company := &domain.Company{
		Name:     req.Name,
		Slug:     companySlug,
		Currency: currency,
		Settings: "{}",
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	ownerID, err := s.resolveOwner(ctx, req)
	if err != nil {
		return nil, err
	}
	membership := &domain.CompanyMembership{
		UserID:    ownerID,
		CompanyID: company.ID,
		Role:      domain.RoleOwner,
	}
	if err := s.companyRepo.CreateMembership(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("slug", company.Slug),
	)

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

func (s *CompanyService) resolveOwner(ctx context.Context, req *domain.CreateCompanyRequest) (uuid.UUID, error) {
	if userCtx, ok := auth.FromContext(ctx); ok && !userCtx.IsSystem && userCtx.UserID != uuid.Nil {
		return userCtx.UserID, nil
	}

	if req.OwnerEmail == "" || req.OwnerPassword == "" {
		return uuid.Nil, fmt.Errorf("%w: owner credentials required", ErrInvalidInput)
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.OwnerEmail)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up owner: %w", err)
	}

	hash, err := HashPassword(req.OwnerPassword)
	if err != nil {
		return uuid.Nil, err
	}
	owner := &domain.User{
		Email:        strings.ToLower(req.OwnerEmail),
		Name:         req.OwnerName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, owner); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create owner: %w", err)
	}
	return owner.ID, nil
}

// Get returns the caller's active company
func (s *CompanyService) Get(ctx context.Context) (*domain.CompanyDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionCompanyRead)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// Update modifies the caller's active company
func (s *CompanyService) Update(ctx context.Context, req *domain.UpdateCompanyRequest) (*domain.CompanyDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionCompanyWrite)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Currency != nil {
		company.Currency = strings.ToUpper(*req.Currency)
	}
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// ListMembers returns the company's members with their roles
func (s *CompanyService) ListMembers(ctx context.Context) ([]domain.MemberDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionCompanyRead)
	if err != nil {
		return nil, err
	}
	memberships, err := s.companyRepo.ListMembers(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]domain.MemberDTO, 0, len(memberships))
	for _, m := range memberships {
		member := domain.MemberDTO{UserID: m.UserID, Role: m.Role}
		if m.User != nil {
			member.Email = m.User.Email
			member.Name = m.User.Name
		}
		members = append(members, member)
	}
	return members, nil
}

// AddMember invites a user into the company. An unknown e-mail creates an
// inactive account that gets activated on first password setup.
func (s *CompanyService) AddMember(ctx context.Context, req *domain.AddMemberRequest) (*domain.MemberDTO, error) {
	userCtx, err := RequirePermission(ctx, domain.PermissionMemberManage)
	if err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, req.Role)
	}

	member, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		member = &domain.User{
			Email:    strings.ToLower(req.Email),
			Name:     req.Name,
			IsActive: false,
		}
		if err := s.userRepo.Create(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to create member account: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	if _, err := s.companyRepo.GetMembership(ctx, member.ID, userCtx.CompanyID); err == nil {
		return nil, fmt.Errorf("%w: user already a member", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	membership := &domain.CompanyMembership{
		UserID:    member.ID,
		CompanyID: userCtx.CompanyID,
		Role:      req.Role,
	}
	if err := s.companyRepo.CreateMembership(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	return &domain.MemberDTO{
		UserID: member.ID,
		Email:  member.Email,
		Name:   member.Name,
		Role:   req.Role,
	}, nil
}

// UpdateMemberRole changes a member's role
func (s *CompanyService) UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role domain.MembershipRole) error {
	userCtx, err := RequirePermission(ctx, domain.PermissionMemberManage)
	if err != nil {
		return err
	}
	if !role.IsValid() {
		return fmt.Errorf("%w: invalid role %q", ErrInvalidInput, role)
	}
	if _, err := s.companyRepo.GetMembership(ctx, memberID, userCtx.CompanyID); err != nil {
		return translateNotFound(err)
	}
	return s.companyRepo.UpdateMembershipRole(ctx, memberID, userCtx.CompanyID, role)
}

// RemoveMember deletes a member's company membership
func (s *CompanyService) RemoveMember(ctx context.Context, memberID uuid.UUID) error {
	userCtx, err := RequirePermission(ctx, domain.PermissionMemberManage)
	if err != nil {
		return err
	}
	if memberID == userCtx.UserID {
		return fmt.Errorf("%w: cannot remove own membership", ErrInvalidInput)
	}
	if _, err := s.companyRepo.GetMembership(ctx, memberID, userCtx.CompanyID); err != nil {
		return translateNotFound(err)
	}
	return s.companyRepo.DeleteMembership(ctx, memberID, userCtx.CompanyID)
}
