package service

import (
	"context"
	"fmt"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkOrderService handles equipment, subcontractors and subcontracted work
type WorkOrderService struct {
	equipmentRepo *repository.EquipmentRepository
	subRepo       *repository.SubcontractorRepository
	projectRepo   *repository.ProjectRepository
	logger        *zap.Logger
}

func NewWorkOrderService(
	equipmentRepo *repository.EquipmentRepository,
	subRepo *repository.SubcontractorRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *WorkOrderService {
	return &WorkOrderService{
		equipmentRepo: equipmentRepo,
		subRepo:       subRepo,
		projectRepo:   projectRepo,
		logger:        logger,
	}
}

// --- Equipment ---

func (s *WorkOrderService) CreateEquipment(ctx context.Context, req *domain.CreateEquipmentRequest) (*domain.EquipmentDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionEquipmentWrite)
	if err != nil {
		return nil, err
	}

	equipment := &domain.Equipment{
		CompanyID:    user.CompanyID,
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Status:       domain.EquipmentStatusAvailable,
	}
	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	dto := mapper.ToEquipmentDTO(equipment)
	return &dto, nil
}

func (s *WorkOrderService) GetEquipment(ctx context.Context, id uuid.UUID) (*domain.EquipmentDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionEquipmentRead); err != nil {
		return nil, err
	}
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToEquipmentDTO(equipment)
	return &dto, nil
}

// UpdateEquipment edits an equipment record. Assigning a project moves the
// status to in_use; clearing it makes the equipment available again.
func (s *WorkOrderService) UpdateEquipment(ctx context.Context, id uuid.UUID, req *domain.UpdateEquipmentRequest) (*domain.EquipmentDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionEquipmentWrite); err != nil {
		return nil, err
	}
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if req.Name != nil {
		equipment.Name = *req.Name
	}
	if req.SerialNumber != nil {
		equipment.SerialNumber = *req.SerialNumber
	}
	if req.ProjectID != nil {
		if *req.ProjectID == uuid.Nil {
			equipment.ProjectID = nil
			if equipment.Status == domain.EquipmentStatusInUse {
				equipment.Status = domain.EquipmentStatusAvailable
			}
		} else {
			if _, err := s.projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
				return nil, translateNotFound(err)
			}
			equipment.ProjectID = req.ProjectID
			equipment.Status = domain.EquipmentStatusInUse
		}
	}
	if req.Status != nil {
		equipment.Status = *req.Status
	}

	if err := s.equipmentRepo.Update(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	dto := mapper.ToEquipmentDTO(equipment)
	return &dto, nil
}

func (s *WorkOrderService) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionEquipmentWrite); err != nil {
		return err
	}
	if _, err := s.equipmentRepo.GetByID(ctx, id); err != nil {
		return translateNotFound(err)
	}
	return s.equipmentRepo.Delete(ctx, id)
}

func (s *WorkOrderService) ListEquipment(ctx context.Context, p repository.Pagination, search, status string) (*domain.ListResponse[domain.EquipmentDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionEquipmentRead); err != nil {
		return nil, err
	}
	p.Normalize()

	equipment, total, err := s.equipmentRepo.List(ctx, p, search, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	resp := &domain.ListResponse[domain.EquipmentDTO]{
		Items:      make([]domain.EquipmentDTO, 0, len(equipment)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range equipment {
		resp.Items = append(resp.Items, mapper.ToEquipmentDTO(&equipment[i]))
	}
	return resp, nil
}

// --- Subcontractors ---

func (s *WorkOrderService) CreateSubcontractor(ctx context.Context, req *domain.CreateSubcontractorRequest) (*domain.SubcontractorDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionWorkOrderWrite)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subcontractor{
		CompanyID: user.CompanyID,
		Name:      req.Name,
		Trade:     req.Trade,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subcontractor: %w", err)
	}

	dto := mapper.ToSubcontractorDTO(sub)
	return &dto, nil
}

func (s *WorkOrderService) GetSubcontractor(ctx context.Context, id uuid.UUID) (*domain.SubcontractorDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionWorkOrderRead); err != nil {
		return nil, err
	}
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToSubcontractorDTO(sub)
	return &dto, nil
}

func (s *WorkOrderService) ListSubcontractors(ctx context.Context, p repository.Pagination, search string) (*domain.ListResponse[domain.SubcontractorDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionWorkOrderRead); err != nil {
		return nil, err
	}
	p.Normalize()

	subs, total, err := s.subRepo.List(ctx, p, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcontractors: %w", err)
	}

	resp := &domain.ListResponse[domain.SubcontractorDTO]{
		Items:      make([]domain.SubcontractorDTO, 0, len(subs)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range subs {
		resp.Items = append(resp.Items, mapper.ToSubcontractorDTO(&subs[i]))
	}
	return resp, nil
}

func (s *WorkOrderService) DeleteSubcontractor(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionWorkOrderWrite); err != nil {
		return err
	}
	if _, err := s.subRepo.GetByID(ctx, id); err != nil {
		return translateNotFound(err)
	}
	return s.subRepo.Delete(ctx, id)
}

// --- Work orders ---

func (s *WorkOrderService) CreateWorkOrder(ctx context.Context, req *domain.CreateWorkOrderRequest) (*domain.WorkOrderDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionWorkOrderWrite)
	if err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", ErrInvalidInput)
	}

	sub, err := s.subRepo.GetByID(ctx, req.SubcontractorID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if req.ProjectID != nil {
		if _, err := s.projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
			return nil, translateNotFound(err)
		}
	}

	wo := &domain.WorkOrder{
		CompanyID:       user.CompanyID,
		SubcontractorID: sub.ID,
		ProjectID:       req.ProjectID,
		Description:     req.Description,
		Amount:          req.Amount,
		Status:          domain.WorkOrderStatusPending,
	}
	if err := s.subRepo.CreateWorkOrder(ctx, wo); err != nil {
		return nil, fmt.Errorf("failed to create work order: %w", err)
	}

	wo.Subcontractor = sub
	dto := mapper.ToWorkOrderDTO(wo)
	return &dto, nil
}

func (s *WorkOrderService) GetWorkOrder(ctx context.Context, id uuid.UUID) (*domain.WorkOrderDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionWorkOrderRead); err != nil {
		return nil, err
	}
	wo, err := s.subRepo.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToWorkOrderDTO(wo)
	return &dto, nil
}

// workOrderTransitions defines the forward-only status flow
var workOrderTransitions = map[domain.WorkOrderStatus][]domain.WorkOrderStatus{
	domain.WorkOrderStatusPending:    {domain.WorkOrderStatusInProgress},
	domain.WorkOrderStatusInProgress: {domain.WorkOrderStatusCompleted},
	domain.WorkOrderStatusCompleted:  {domain.WorkOrderStatusPaid},
	domain.WorkOrderStatusPaid:       {},
}

func (s *WorkOrderService) UpdateWorkOrder(ctx context.Context, id uuid.UUID, req *domain.UpdateWorkOrderRequest) (*domain.WorkOrderDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionWorkOrderWrite); err != nil {
		return nil, err
	}
	wo, err := s.subRepo.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if req.Description != nil {
		wo.Description = *req.Description
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount cannot be negative", ErrInvalidInput)
		}
		wo.Amount = *req.Amount
	}
	if req.Status != nil && *req.Status != wo.Status {
		allowed := false
		for _, next := range workOrderTransitions[wo.Status] {
			if next == *req.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: cannot move work order from %s to %s", ErrInvalidState, wo.Status, *req.Status)
		}
		wo.Status = *req.Status
		if wo.Status == domain.WorkOrderStatusPaid {
			now := time.Now().UTC()
			wo.PaidDate = &now
		}
	}

	if err := s.subRepo.UpdateWorkOrder(ctx, wo); err != nil {
		return nil, fmt.Errorf("failed to update work order: %w", err)
	}

	dto := mapper.ToWorkOrderDTO(wo)
	return &dto, nil
}

func (s *WorkOrderService) ListWorkOrders(ctx context.Context, p repository.Pagination, status string, projectID *uuid.UUID) (*domain.ListResponse[domain.WorkOrderDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionWorkOrderRead); err != nil {
		return nil, err
	}
	p.Normalize()

	orders, total, err := s.subRepo.ListWorkOrders(ctx, p, status, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}

	resp := &domain.ListResponse[domain.WorkOrderDTO]{
		Items:      make([]domain.WorkOrderDTO, 0, len(orders)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range orders {
		resp.Items = append(resp.Items, mapper.ToWorkOrderDTO(&orders[i]))
	}
	return resp, nil
}
