package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	userRepo     *repository.UserRepository
	companyRepo  *repository.CompanyRepository
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	userRepo *repository.UserRepository,
	companyRepo *repository.CompanyRepository,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionCustomerWrite)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		CompanyID: user.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionCustomerRead); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionCustomerWrite); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionCustomerWrite); err != nil {
		return err
	}
	if _, err := s.customerRepo.GetByID(ctx, id); err != nil {
		return translateNotFound(err)
	}
	return s.customerRepo.Delete(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, p repository.Pagination, search string) (*domain.ListResponse[domain.CustomerDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionCustomerRead); err != nil {
		return nil, err
	}
	p.Normalize()

	customers, total, err := s.customerRepo.List(ctx, p, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	resp := &domain.ListResponse[domain.CustomerDTO]{
		Items:      make([]domain.CustomerDTO, 0, len(customers)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range customers {
		resp.Items = append(resp.Items, mapper.ToCustomerDTO(&customers[i]))
	}
	return resp, nil
}

// LinkClientAccount ties a customer record to a portal login. The account is
// matched by e-mail once and the link stored explicitly; later e-mail edits
// on either side do not move the link.
func (s *CustomerService) LinkClientAccount(ctx context.Context, req *domain.LinkClientAccountRequest) (*domain.CustomerDTO, error) {
	userCtx, err := RequirePermission(ctx, domain.PermissionMemberManage)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if customer.LinkedUserID != nil {
		return nil, fmt.Errorf("%w: customer already linked", ErrConflict)
	}

	account, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = &domain.User{
			Email:    req.Email,
			Name:     customer.Name,
			IsActive: false,
		}
		if err := s.userRepo.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create portal account: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up portal account: %w", err)
	}

	if _, err := s.companyRepo.GetMembership(ctx, account.ID, userCtx.CompanyID); errors.Is(err, gorm.ErrRecordNotFound) {
		membership := &domain.CompanyMembership{
			UserID:    account.ID,
			CompanyID: userCtx.CompanyID,
			Role:      domain.RoleClient,
		}
		if err := s.companyRepo.CreateMembership(ctx, membership); err != nil {
			return nil, fmt.Errorf("failed to create client membership: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	customer.LinkedUserID = &account.ID
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to link customer: %w", err)
	}

	s.logger.Info("client account linked",
		zap.String("customer_id", customer.ID.String()),
		zap.String("user_id", account.ID.String()),
	)

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}
