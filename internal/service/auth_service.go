package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles login, session issuance and company switching
type AuthService struct {
	userRepo     *repository.UserRepository
	companyRepo  *repository.CompanyRepository
	customerRepo *repository.CustomerRepository
	tokens       *auth.TokenManager
	logger       *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	companyRepo *repository.CompanyRepository,
	customerRepo *repository.CustomerRepository,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		tokens:       tokens,
		logger:       logger,
	}
}

// Login verifies credentials and issues a session token. When the user
// belongs to several companies and no companyId is given, the first
// membership is used.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	memberships, err := s.companyRepo.ListMembershipsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, ErrPermissionDenied
	}

	membership := &memberships[0]
	if req.CompanyID != nil {
		membership = nil
		for i := range memberships {
			if memberships[i].CompanyID == *req.CompanyID {
				membership = &memberships[i]
				break
			}
		}
		if membership == nil {
			return nil, ErrPermissionDenied
		}
	}

	return s.issueSession(ctx, user, membership, memberships)
}

// SwitchCompany issues a new session for another of the user's memberships
func (s *AuthService) SwitchCompany(ctx context.Context, companyID uuid.UUID) (*domain.LoginResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	membership, err := s.companyRepo.GetMembership(ctx, user.ID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}

	memberships, err := s.companyRepo.ListMembershipsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	return s.issueSession(ctx, user, membership, memberships)
}

// Me returns the authenticated user's profile and active membership
func (s *AuthService) Me(ctx context.Context) (*domain.MeResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	memberships, err := s.companyRepo.ListMembershipsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	resp := &domain.MeResponse{
		User:        mapper.ToUserDTO(user),
		Role:        userCtx.Role,
		Permissions: domain.PermissionsForRole(userCtx.Role),
	}
	for i := range memberships {
		resp.Memberships = append(resp.Memberships, mapper.ToMembershipDTO(&memberships[i]))
		if memberships[i].CompanyID == userCtx.CompanyID && memberships[i].Company != nil {
			c := mapper.ToCompanyDTO(memberships[i].Company)
			resp.Company = &c
		}
	}
	return resp, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User, membership *domain.CompanyMembership, memberships []domain.CompanyMembership) (*domain.LoginResponse, error) {
	sessionCtx := &auth.UserContext{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CompanyID: membership.CompanyID,
		Role:      membership.Role,
	}

	// Client sessions carry their linked customer so portal queries can be
	// scoped to it.
	if membership.Role == domain.RoleClient {
		customer, err := s.customerRepo.GetByLinkedUser(ctx, membership.CompanyID, user.ID)
		if err == nil {
			sessionCtx.CustomerID = &customer.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to resolve linked customer: %w", err)
		}
	}

	token, expiresAt, err := s.tokens.Issue(sessionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	resp := &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      mapper.ToUserDTO(user),
		Role:      membership.Role,
	}
	for i := range memberships {
		resp.Memberships = append(resp.Memberships, mapper.ToMembershipDTO(&memberships[i]))
	}
	if membership.Company != nil {
		c := mapper.ToCompanyDTO(membership.Company)
		resp.Company = &c
	} else if company, err := s.companyRepo.GetByID(ctx, membership.CompanyID); err == nil {
		c := mapper.ToCompanyDTO(company)
		resp.Company = &c
	}

	s.logger.Info("session issued",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", membership.CompanyID.String()),
		zap.String("role", string(membership.Role)),
		zap.Time("expires_at", expiresAt),
	)
	return resp, nil
}

// HashPassword hashes a password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
