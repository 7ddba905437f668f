package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService handles materials, stock movements, suppliers and
// purchase orders.
type InventoryService struct {
	materialRepo *repository.MaterialRepository
	supplierRepo *repository.SupplierRepository
	poRepo       *repository.PurchaseOrderRepository
	projectRepo  *repository.ProjectRepository
	notification *NotificationService
	logger       *zap.Logger
}

func NewInventoryService(
	materialRepo *repository.MaterialRepository,
	supplierRepo *repository.SupplierRepository,
	poRepo *repository.PurchaseOrderRepository,
	projectRepo *repository.ProjectRepository,
	notification *NotificationService,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		materialRepo: materialRepo,
		supplierRepo: supplierRepo,
		poRepo:       poRepo,
		projectRepo:  projectRepo,
		notification: notification,
		logger:       logger,
	}
}

// --- Materials ---

func (s *InventoryService) CreateMaterial(ctx context.Context, req *domain.CreateMaterialRequest) (*domain.MaterialDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionInventoryWrite)
	if err != nil {
		return nil, err
	}
	if req.UnitPrice.IsNegative() || req.StockQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: price and stock cannot be negative", ErrInvalidInput)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}

	material := &domain.Material{
		CompanyID:     user.CompanyID,
		Name:          req.Name,
		SKU:           req.SKU,
		Unit:          unit,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
	}
	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

func (s *InventoryService) GetMaterial(ctx context.Context, id uuid.UUID) (*domain.MaterialDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryRead); err != nil {
		return nil, err
	}
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

func (s *InventoryService) UpdateMaterial(ctx context.Context, id uuid.UUID, req *domain.UpdateMaterialRequest) (*domain.MaterialDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryWrite); err != nil {
		return nil, err
	}
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if req.Name != nil {
		material.Name = *req.Name
	}
	if req.SKU != nil {
		material.SKU = *req.SKU
	}
	if req.Unit != nil {
		material.Unit = *req.Unit
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
		}
		material.UnitPrice = *req.UnitPrice
	}
	if req.MinStockLevel != nil {
		material.MinStockLevel = req.MinStockLevel
	}

	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

func (s *InventoryService) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryWrite); err != nil {
		return err
	}
	if _, err := s.materialRepo.GetByID(ctx, id); err != nil {
		return translateNotFound(err)
	}
	return s.materialRepo.Delete(ctx, id)
}

func (s *InventoryService) ListMaterials(ctx context.Context, p repository.Pagination, search string) (*domain.ListResponse[domain.MaterialDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryRead); err != nil {
		return nil, err
	}
	p.Normalize()

	materials, total, err := s.materialRepo.List(ctx, p, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	resp := &domain.ListResponse[domain.MaterialDTO]{
		Items:      make([]domain.MaterialDTO, 0, len(materials)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range materials {
		resp.Items = append(resp.Items, mapper.ToMaterialDTO(&materials[i]))
	}
	return resp, nil
}

// ListLowStock returns materials at or below their minimum stock level
func (s *InventoryService) ListLowStock(ctx context.Context) ([]domain.MaterialDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionInventoryRead)
	if err != nil {
		return nil, err
	}
	materials, err := s.materialRepo.ListLowStock(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}

	dtos := make([]domain.MaterialDTO, 0, len(materials))
	for i := range materials {
		dtos = append(dtos, mapper.ToMaterialDTO(&materials[i]))
	}
	return dtos, nil
}

// RecordUsage consumes stock against a project. The decrement and the usage
// row commit atomically; a shortfall rejects the whole operation and leaves
// stock unchanged. The usage row snapshots the material's current unit price.
func (s *InventoryService) RecordUsage(ctx context.Context, req *domain.RecordUsageRequest) (*domain.MaterialUsageDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryWrite); err != nil {
		return nil, err
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	material, err := s.materialRepo.GetByID(ctx, req.MaterialID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		return nil, translateNotFound(err)
	}

	usage := &domain.MaterialUsage{
		MaterialID: material.ID,
		ProjectID:  req.ProjectID,
		Quantity:   req.Quantity,
		UnitPrice:  material.UnitPrice,
		UsedAt:     time.Now().UTC(),
		Notes:      req.Notes,
	}
	if err := s.materialRepo.RecordUsage(ctx, usage); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: %s has %s %s available", ErrInsufficientStock,
				material.Name, material.StockQuantity.String(), material.Unit)
		}
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	s.logger.Info("material usage recorded",
		zap.String("material_id", material.ID.String()),
		zap.String("project_id", req.ProjectID.String()),
		zap.String("quantity", req.Quantity.String()),
	)

	// Alert when the usage drove stock to or below the minimum
	if s.notification != nil && material.MinStockLevel != nil {
		remaining := material.StockQuantity.Sub(req.Quantity)
		if remaining.LessThanOrEqual(*material.MinStockLevel) {
			updated := *material
			updated.StockQuantity = remaining
			s.notification.NotifyLowStock(ctx, &updated)
		}
	}

	usage.Material = material
	dto := mapper.ToUsageDTO(usage)
	return &dto, nil
}

func (s *InventoryService) ListUsage(ctx context.Context, p repository.Pagination, projectID *uuid.UUID) (*domain.ListResponse[domain.MaterialUsageDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryRead); err != nil {
		return nil, err
	}
	p.Normalize()

	usages, total, err := s.materialRepo.ListUsage(ctx, p, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}

	resp := &domain.ListResponse[domain.MaterialUsageDTO]{
		Items:      make([]domain.MaterialUsageDTO, 0, len(usages)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range usages {
		resp.Items = append(resp.Items, mapper.ToUsageDTO(&usages[i]))
	}
	return resp, nil
}

// --- Suppliers ---

func (s *InventoryService) CreateSupplier(ctx context.Context, req *domain.CreateSupplierRequest) (*domain.SupplierDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionInventoryWrite)
	if err != nil {
		return nil, err
	}

	supplier := &domain.Supplier{
		CompanyID: user.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	dto := mapper.ToSupplierDTO(supplier)
	return &dto, nil
}

func (s *InventoryService) GetSupplier(ctx context.Context, id uuid.UUID) (*domain.SupplierDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryRead); err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToSupplierDTO(supplier)
	return &dto, nil
}

func (s *InventoryService) ListSuppliers(ctx context.Context, p repository.Pagination, search string) (*domain.ListResponse[domain.SupplierDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryRead); err != nil {
		return nil, err
	}
	p.Normalize()

	suppliers, total, err := s.supplierRepo.List(ctx, p, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	resp := &domain.ListResponse[domain.SupplierDTO]{
		Items:      make([]domain.SupplierDTO, 0, len(suppliers)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range suppliers {
		resp.Items = append(resp.Items, mapper.ToSupplierDTO(&suppliers[i]))
	}
	return resp, nil
}

func (s *InventoryService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryWrite); err != nil {
		return err
	}
	if _, err := s.supplierRepo.GetByID(ctx, id); err != nil {
		return translateNotFound(err)
	}
	return s.supplierRepo.Delete(ctx, id)
}

// --- Purchase orders ---

func (s *InventoryService) CreatePurchaseOrder(ctx context.Context, req *domain.CreatePurchaseOrderRequest) (*domain.PurchaseOrderDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionInventoryWrite)
	if err != nil {
		return nil, err
	}

	supplier, err := s.supplierRepo.GetByID(ctx, req.SupplierID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	po := &domain.PurchaseOrder{
		CompanyID:   user.CompanyID,
		SupplierID:  supplier.ID,
		OrderNumber: req.OrderNumber,
		Status:      domain.PurchaseOrderStatusDraft,
	}
	for i, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidInput, i+1)
		}
		if item.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: item %d cost cannot be negative", ErrInvalidInput, i+1)
		}
		if _, err := s.materialRepo.GetByID(ctx, item.MaterialID); err != nil {
			return nil, translateNotFound(err)
		}
		po.Items = append(po.Items, domain.PurchaseOrderItem{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			UnitCost:   item.UnitCost,
		})
	}

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	po.Supplier = supplier
	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}

func (s *InventoryService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrderDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryRead); err != nil {
		return nil, err
	}
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}

func (s *InventoryService) ListPurchaseOrders(ctx context.Context, p repository.Pagination, status string) (*domain.ListResponse[domain.PurchaseOrderDTO], error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryRead); err != nil {
		return nil, err
	}
	p.Normalize()

	pos, total, err := s.poRepo.List(ctx, p, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	resp := &domain.ListResponse[domain.PurchaseOrderDTO]{
		Items:      make([]domain.PurchaseOrderDTO, 0, len(pos)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range pos {
		resp.Items = append(resp.Items, mapper.ToPurchaseOrderDTO(&pos[i]))
	}
	return resp, nil
}

// MarkOrdered transitions a draft purchase order to ordered
func (s *InventoryService) MarkOrdered(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrderDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryWrite); err != nil {
		return nil, err
	}
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	err = s.poRepo.UpdateStatus(ctx, id,
		[]domain.PurchaseOrderStatus{domain.PurchaseOrderStatusDraft},
		domain.PurchaseOrderStatusOrdered)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: purchase order is %s", ErrInvalidState, po.Status)
		}
		return nil, fmt.Errorf("failed to mark ordered: %w", err)
	}

	po.Status = domain.PurchaseOrderStatusOrdered
	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}

// ReceivePurchaseOrder books the order into stock. Every item's material is
// incremented in one transaction; receiving twice is rejected.
func (s *InventoryService) ReceivePurchaseOrder(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrderDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryWrite); err != nil {
		return nil, err
	}
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if err := s.poRepo.Receive(ctx, po); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: purchase order is %s", ErrInvalidState, po.Status)
		}
		return nil, fmt.Errorf("failed to receive purchase order: %w", err)
	}

	s.logger.Info("purchase order received",
		zap.String("purchase_order_id", po.ID.String()),
		zap.Int("items", len(po.Items)),
	)

	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}

// CancelPurchaseOrder voids a draft or ordered purchase order
func (s *InventoryService) CancelPurchaseOrder(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrderDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInventoryWrite); err != nil {
		return nil, err
	}
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	err = s.poRepo.UpdateStatus(ctx, id,
		[]domain.PurchaseOrderStatus{domain.PurchaseOrderStatusDraft, domain.PurchaseOrderStatusOrdered},
		domain.PurchaseOrderStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: purchase order is %s", ErrInvalidState, po.Status)
		}
		return nil, fmt.Errorf("failed to cancel purchase order: %w", err)
	}

	po.Status = domain.PurchaseOrderStatusCancelled
	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}
