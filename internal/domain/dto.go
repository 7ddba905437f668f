package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for API requests and responses. Monetary amounts travel as decimal
// strings, never floats.

// --- Auth ---

type LoginRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8"`
	CompanyID *uuid.UUID `json:"companyId,omitempty"`
}

type LoginResponse struct {
	Token       string          `json:"token"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	User        UserDTO         `json:"user"`
	Company     *CompanyDTO     `json:"company,omitempty"`
	Role        MembershipRole  `json:"role,omitempty"`
	Memberships []MembershipDTO `json:"memberships"`
}

type SwitchCompanyRequest struct {
	CompanyID uuid.UUID `json:"companyId" validate:"required"`
}

type MeResponse struct {
	User        UserDTO         `json:"user"`
	Company     *CompanyDTO     `json:"company,omitempty"`
	Role        MembershipRole  `json:"role,omitempty"`
	Permissions []Permission    `json:"permissions"`
	Memberships []MembershipDTO `json:"memberships"`
}

type UserDTO struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
}

type MembershipDTO struct {
	CompanyID   uuid.UUID      `json:"companyId"`
	CompanyName string         `json:"companyName"`
	CompanySlug string         `json:"companySlug"`
	Role        MembershipRole `json:"role"`
}

// --- Company ---

type CompanyDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	// Owner bootstrap; ignored when the caller is already authenticated
	OwnerEmail    string `json:"ownerEmail" validate:"omitempty,email"`
	OwnerName     string `json:"ownerName" validate:"omitempty,max=200"`
	OwnerPassword string `json:"ownerPassword" validate:"omitempty,min=8"`
}

type UpdateCompanyRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Currency *string `json:"currency" validate:"omitempty,len=3"`
}

type AddMemberRequest struct {
	Email string         `json:"email" validate:"required,email"`
	Name  string         `json:"name" validate:"omitempty,max=200"`
	Role  MembershipRole `json:"role" validate:"required,oneof=owner admin manager staff client"`
}

type UpdateMemberRoleRequest struct {
	Role MembershipRole `json:"role" validate:"required,oneof=owner admin manager staff client"`
}

type MemberDTO struct {
	UserID uuid.UUID      `json:"userId"`
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Role   MembershipRole `json:"role"`
}

// --- Customer ---

type CustomerDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	LinkedUserID *uuid.UUID `json:"linkedUserId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type LinkClientAccountRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
}

// --- Project ---

type ProjectDTO struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  *uuid.UUID        `json:"customerId,omitempty"`
	Customer    *CustomerDTO      `json:"customer,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      ProjectStatus     `json:"status"`
	Progress    int               `json:"progress"`
	Budget      *decimal.Decimal  `json:"budget,omitempty"`
	StartDate   *time.Time        `json:"startDate,omitempty"`
	EndDate     *time.Time        `json:"endDate,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Phases      []ProjectPhaseDTO `json:"phases,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ProjectPhaseDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	SortOrder int         `json:"sortOrder"`
	Status    PhaseStatus `json:"status"`
}

type ProjectNoteDTO struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateProjectRequest struct {
	CustomerID  *uuid.UUID       `json:"customerId"`
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"omitempty,max=5000"`
	Status      ProjectStatus    `json:"status" validate:"omitempty,oneof=planned in_progress on_hold completed cancelled"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	Tags        []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

type UpdateProjectRequest struct {
	CustomerID  *uuid.UUID       `json:"customerId"`
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Status      *ProjectStatus   `json:"status" validate:"omitempty,oneof=planned in_progress on_hold completed cancelled"`
	Progress    *int             `json:"progress"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	Tags        []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

type CreatePhaseRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type UpdatePhaseRequest struct {
	Name      *string      `json:"name" validate:"omitempty,max=200"`
	SortOrder *int         `json:"sortOrder" validate:"omitempty,gte=0"`
	Status    *PhaseStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

type CreateNoteRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// --- Quotes and invoices ---

type LineItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Type        LineItemType    `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	SortOrder   int             `json:"sortOrder"`
}

type LineItemInput struct {
	Description string          `json:"description" validate:"required,max=500"`
	Type        LineItemType    `json:"type" validate:"omitempty,oneof=material labor equipment other"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"required"`
	SortOrder   int             `json:"sortOrder"`
}

type QuoteDTO struct {
	ID                 uuid.UUID       `json:"id"`
	CustomerID         *uuid.UUID      `json:"customerId,omitempty"`
	ProjectID          *uuid.UUID      `json:"projectId,omitempty"`
	QuoteNumber        string          `json:"quoteNumber,omitempty"`
	Title              string          `json:"title"`
	Status             QuoteStatus     `json:"status"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxAmount          decimal.Decimal `json:"taxAmount"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	Total              decimal.Decimal `json:"total"`
	ValidUntil         *time.Time      `json:"validUntil,omitempty"`
	ConvertedInvoiceID *uuid.UUID      `json:"convertedInvoiceId,omitempty"`
	Items              []LineItemDTO   `json:"items,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type CreateQuoteRequest struct {
	CustomerID     *uuid.UUID      `json:"customerId"`
	ProjectID      *uuid.UUID      `json:"projectId"`
	Title          string          `json:"title" validate:"required,max=200"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	ValidUntil     *time.Time      `json:"validUntil"`
	Items          []LineItemInput `json:"items" validate:"omitempty,dive"`
}

type UpdateQuoteRequest struct {
	CustomerID     *uuid.UUID       `json:"customerId"`
	ProjectID      *uuid.UUID       `json:"projectId"`
	Title          *string          `json:"title" validate:"omitempty,max=200"`
	TaxAmount      *decimal.Decimal `json:"taxAmount"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	ValidUntil     *time.Time       `json:"validUntil"`
	Items          []LineItemInput  `json:"items" validate:"omitempty,dive"`
}

type InvoiceDTO struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     *uuid.UUID      `json:"customerId,omitempty"`
	ProjectID      *uuid.UUID      `json:"projectId,omitempty"`
	QuoteID        *uuid.UUID      `json:"quoteId,omitempty"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	Status         InvoiceStatus   `json:"status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	Balance        decimal.Decimal `json:"balance"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	PaidDate       *time.Time      `json:"paidDate,omitempty"`
	Items          []LineItemDTO   `json:"items,omitempty"`
	Payments       []PaymentDTO    `json:"payments,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type CreateInvoiceRequest struct {
	CustomerID     *uuid.UUID      `json:"customerId"`
	ProjectID      *uuid.UUID      `json:"projectId"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DueDate        *time.Time      `json:"dueDate"`
	Items          []LineItemInput `json:"items" validate:"omitempty,dive"`
}

type UpdateInvoiceRequest struct {
	CustomerID     *uuid.UUID       `json:"customerId"`
	ProjectID      *uuid.UUID       `json:"projectId"`
	TaxAmount      *decimal.Decimal `json:"taxAmount"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	DueDate        *time.Time       `json:"dueDate"`
	Items          []LineItemInput  `json:"items" validate:"omitempty,dive"`
}

type PaymentDTO struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paidAt"`
}

type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Method    PaymentMethod   `json:"method" validate:"required,oneof=cash check bank_transfer card other"`
	Reference string          `json:"reference" validate:"omitempty,max=200"`
	PaidAt    *time.Time      `json:"paidAt"`
}

// --- Inventory ---

type MaterialDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku,omitempty"`
	Unit          string           `json:"unit"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	StockQuantity decimal.Decimal  `json:"stockQuantity"`
	MinStockLevel *decimal.Decimal `json:"minStockLevel,omitempty"`
	LowStock      bool             `json:"lowStock"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type CreateMaterialRequest struct {
	Name          string           `json:"name" validate:"required,max=200"`
	SKU           string           `json:"sku" validate:"omitempty,max=100"`
	Unit          string           `json:"unit" validate:"omitempty,max=50"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	StockQuantity decimal.Decimal  `json:"stockQuantity"`
	MinStockLevel *decimal.Decimal `json:"minStockLevel"`
}

type UpdateMaterialRequest struct {
	Name          *string          `json:"name" validate:"omitempty,max=200"`
	SKU           *string          `json:"sku" validate:"omitempty,max=100"`
	Unit          *string          `json:"unit" validate:"omitempty,max=50"`
	UnitPrice     *decimal.Decimal `json:"unitPrice"`
	MinStockLevel *decimal.Decimal `json:"minStockLevel"`
}

type RecordUsageRequest struct {
	MaterialID uuid.UUID       `json:"materialId" validate:"required"`
	ProjectID  uuid.UUID       `json:"projectId" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
	Notes      string          `json:"notes" validate:"omitempty,max=2000"`
}

type MaterialUsageDTO struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"materialId"`
	MaterialName string          `json:"materialName,omitempty"`
	ProjectID    uuid.UUID       `json:"projectId"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	UsedAt       time.Time       `json:"usedAt"`
	Notes        string          `json:"notes,omitempty"`
}

type SupplierDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateSupplierRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=50"`
}

type PurchaseOrderDTO struct {
	ID           uuid.UUID              `json:"id"`
	SupplierID   uuid.UUID              `json:"supplierId"`
	SupplierName string                 `json:"supplierName,omitempty"`
	OrderNumber  string                 `json:"orderNumber,omitempty"`
	Status       PurchaseOrderStatus    `json:"status"`
	ReceivedAt   *time.Time             `json:"receivedAt,omitempty"`
	Items        []PurchaseOrderItemDTO `json:"items,omitempty"`
	TotalCost    decimal.Decimal        `json:"totalCost"`
	CreatedAt    time.Time              `json:"createdAt"`
}

type PurchaseOrderItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"materialId"`
	MaterialName string          `json:"materialName,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unitCost"`
}

type PurchaseOrderItemInput struct {
	MaterialID uuid.UUID       `json:"materialId" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost   decimal.Decimal `json:"unitCost"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID  uuid.UUID                `json:"supplierId" validate:"required"`
	OrderNumber string                   `json:"orderNumber" validate:"omitempty,max=50"`
	Items       []PurchaseOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// --- Equipment, subcontractors, work orders ---

type EquipmentDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SerialNumber string          `json:"serialNumber,omitempty"`
	Status       EquipmentStatus `json:"status"`
	ProjectID    *uuid.UUID      `json:"projectId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type CreateEquipmentRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	SerialNumber string `json:"serialNumber" validate:"omitempty,max=100"`
}

type UpdateEquipmentRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=200"`
	SerialNumber *string          `json:"serialNumber" validate:"omitempty,max=100"`
	Status       *EquipmentStatus `json:"status" validate:"omitempty,oneof=available in_use maintenance retired"`
	ProjectID    *uuid.UUID       `json:"projectId"`
}

type SubcontractorDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Trade     string    `json:"trade,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateSubcontractorRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Trade string `json:"trade" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=50"`
}

type WorkOrderDTO struct {
	ID                uuid.UUID       `json:"id"`
	SubcontractorID   uuid.UUID       `json:"subcontractorId"`
	SubcontractorName string          `json:"subcontractorName,omitempty"`
	ProjectID         *uuid.UUID      `json:"projectId,omitempty"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	Status            WorkOrderStatus `json:"status"`
	PaidDate          *time.Time      `json:"paidDate,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type CreateWorkOrderRequest struct {
	SubcontractorID uuid.UUID       `json:"subcontractorId" validate:"required"`
	ProjectID       *uuid.UUID      `json:"projectId"`
	Description     string          `json:"description" validate:"required,max=500"`
	Amount          decimal.Decimal `json:"amount"`
}

type UpdateWorkOrderRequest struct {
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	Status      *WorkOrderStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed paid"`
}

// --- Chat ---

type ChatMessageDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// --- Attachments ---

type AttachmentDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	InvoiceID   *uuid.UUID `json:"invoiceId,omitempty"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// --- Notifications ---

type NotificationDTO struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// --- Analytics ---

type InvoiceAnalyticsDTO struct {
	TotalInvoiced     decimal.Decimal `json:"totalInvoiced"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	TotalOutstanding  decimal.Decimal `json:"totalOutstanding"`
	CountByStatus     map[string]int  `json:"countByStatus"`
	OverdueCount      int             `json:"overdueCount"`
	OverdueAmount     decimal.Decimal `json:"overdueAmount"`
	AverageInvoice    decimal.Decimal `json:"averageInvoice"`
	PaidInvoiceCount  int             `json:"paidInvoiceCount"`
	TotalInvoiceCount int             `json:"totalInvoiceCount"`
}

type MaterialCostDTO struct {
	MaterialID   uuid.UUID       `json:"materialId"`
	MaterialName string          `json:"materialName"`
	TotalQty     decimal.Decimal `json:"totalQuantity"`
	TotalCost    decimal.Decimal `json:"totalCost"`
}

type MaterialAnalyticsDTO struct {
	TotalUsageCost decimal.Decimal   `json:"totalUsageCost"`
	TotalLaborCost decimal.Decimal   `json:"totalLaborCost"`
	TotalCost      decimal.Decimal   `json:"totalCost"`
	TopMaterials   []MaterialCostDTO `json:"topMaterials"`
	LowStockCount  int               `json:"lowStockCount"`
}

type ProjectAnalyticsDTO struct {
	ProjectID    uuid.UUID        `json:"projectId"`
	ProjectName  string           `json:"projectName"`
	Status       ProjectStatus    `json:"status"`
	Budget       *decimal.Decimal `json:"budget,omitempty"`
	Revenue      decimal.Decimal  `json:"revenue"`
	MaterialCost decimal.Decimal  `json:"materialCost"`
	LaborCost    decimal.Decimal  `json:"laborCost"`
	Profit       decimal.Decimal  `json:"profit"`
}

type RevenueBucketDTO struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

type RevenueAnalyticsDTO struct {
	TotalRevenue decimal.Decimal    `json:"totalRevenue"`
	ByMonth      []RevenueBucketDTO `json:"byMonth"`
}

type AdminStatsDTO struct {
	TotalUsers     int64           `json:"totalUsers"`
	TotalCompanies int64           `json:"totalCompanies"`
	TotalProjects  int64           `json:"totalProjects"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

// --- Listing ---

// ListResponse wraps paginated collection results
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}
