package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Company represents a tenant. All business data is scoped to a company.
type Company struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	Slug     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Currency string `gorm:"type:varchar(3);not null;default:'USD'"`
	Settings string `gorm:"type:jsonb;default:'{}'"`
}

// User represents a login account. A user may belong to several companies
// through CompanyMembership rows.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(200);not null"`
	PasswordHash string `gorm:"type:varchar(200);not null;column:password_hash" json:"-"`
	IsActive     bool   `gorm:"not null;default:true;column:is_active"`
}

// MembershipRole represents a user's role within one company
type MembershipRole string

const (
	RoleOwner   MembershipRole = "owner"
	RoleAdmin   MembershipRole = "admin"
	RoleManager MembershipRole = "manager"
	RoleStaff   MembershipRole = "staff"
	RoleClient  MembershipRole = "client"
)

// IsValid checks if the MembershipRole is a valid enum value
func (r MembershipRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleStaff, RoleClient:
		return true
	}
	return false
}

// CompanyMembership grants a user a role within a company.
// Authorization is always evaluated per membership, never globally per user.
type CompanyMembership struct {
	BaseModel
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_company;column:user_id"`
	User      *User          `gorm:"foreignKey:UserID"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_company;column:company_id"`
	Company   *Company       `gorm:"foreignKey:CompanyID"`
	Role      MembershipRole `gorm:"type:varchar(50);not null;default:'staff'"`
}

// Customer represents a client organization or person of a company
type Customer struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Name      string    `gorm:"type:varchar(200);not null;index"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
	Address   string    `gorm:"type:varchar(500)"`
	// LinkedUserID ties a portal login account to this customer record.
	// Set once by the account-linking flow, not re-derived per request.
	LinkedUserID *uuid.UUID `gorm:"type:uuid;index;column:linked_user_id"`
	Projects     []Project  `gorm:"foreignKey:CustomerID"`
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project represents work being performed for a customer
type Project struct {
	BaseModel
	CompanyID   uuid.UUID        `gorm:"type:uuid;not null;index;column:company_id"`
	CustomerID  *uuid.UUID       `gorm:"type:uuid;index;column:customer_id"`
	Customer    *Customer        `gorm:"foreignKey:CustomerID"`
	Name        string           `gorm:"type:varchar(200);not null;index"`
	Description string           `gorm:"type:text"`
	Status      ProjectStatus    `gorm:"type:varchar(50);not null;default:'planned';index"`
	Progress    int              `gorm:"not null;default:0"`
	Budget      *decimal.Decimal `gorm:"type:decimal(15,2)"`
	StartDate   *time.Time       `gorm:"type:date;column:start_date"`
	EndDate     *time.Time       `gorm:"type:date;column:end_date"`
	Tags        pq.StringArray   `gorm:"type:text[]"`
	Phases      []ProjectPhase   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Notes       []ProjectNote    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// PhaseStatus represents the status of a project phase
type PhaseStatus string

const (
	PhaseStatusPending    PhaseStatus = "pending"
	PhaseStatusInProgress PhaseStatus = "in_progress"
	PhaseStatusCompleted  PhaseStatus = "completed"
)

// ProjectPhase is an ordered stage of a project.
// SortOrder is unique within a project and defines display order.
type ProjectPhase struct {
	BaseModel
	ProjectID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_phase_project_order;column:project_id"`
	Name      string      `gorm:"type:varchar(200);not null"`
	SortOrder int         `gorm:"not null;uniqueIndex:idx_phase_project_order;column:sort_order"`
	Status    PhaseStatus `gorm:"type:varchar(50);not null;default:'pending'"`
}

// ProjectNote is a free-form note on a project. Notes are hard-deletable.
type ProjectNote struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;column:author_id"`
	Body      string    `gorm:"type:text;not null"`
}

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// Quote represents a priced proposal that may be converted into an invoice
type Quote struct {
	BaseModel
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index;column:company_id"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index;column:customer_id"`
	Customer       *Customer       `gorm:"foreignKey:CustomerID"`
	ProjectID      *uuid.UUID      `gorm:"type:uuid;index;column:project_id"`
	QuoteNumber    string          `gorm:"type:varchar(50);index;column:quote_number"`
	Title          string          `gorm:"type:varchar(200);not null"`
	Status         QuoteStatus     `gorm:"type:varchar(50);not null;default:'draft';index"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	ValidUntil     *time.Time      `gorm:"type:date;column:valid_until"`
	// ConvertedInvoiceID is set when the quote has been converted; a quote
	// converts at most once.
	ConvertedInvoiceID *uuid.UUID `gorm:"type:uuid;column:converted_invoice_id"`
	Items              []LineItem `gorm:"polymorphic:Parent;polymorphicValue:quote"`
}

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the InvoiceStatus is a valid enum value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice represents a bill issued to a customer
type Invoice struct {
	BaseModel
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_company_number;column:company_id"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index;column:customer_id"`
	Customer       *Customer       `gorm:"foreignKey:CustomerID"`
	ProjectID      *uuid.UUID      `gorm:"type:uuid;index;column:project_id"`
	QuoteID        *uuid.UUID      `gorm:"type:uuid;index;column:quote_id"`
	InvoiceNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_company_number;column:invoice_number"`
	Status         InvoiceStatus   `gorm:"type:varchar(50);not null;default:'draft';index"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	DueDate        *time.Time      `gorm:"type:date;column:due_date"`
	PaidDate       *time.Time      `gorm:"column:paid_date"`
	Items          []LineItem      `gorm:"polymorphic:Parent;polymorphicValue:invoice"`
	Payments       []Payment       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// LineItemParent represents the type of entity a line item belongs to
type LineItemParent string

const (
	LineItemParentQuote   LineItemParent = "quote"
	LineItemParentInvoice LineItemParent = "invoice"
)

// LineItemType classifies a billable row
type LineItemType string

const (
	LineItemTypeMaterial  LineItemType = "material"
	LineItemTypeLabor     LineItemType = "labor"
	LineItemTypeEquipment LineItemType = "equipment"
	LineItemTypeOther     LineItemType = "other"
)

// IsValid checks if the LineItemType is a valid enum value
func (t LineItemType) IsValid() bool {
	switch t {
	case LineItemTypeMaterial, LineItemTypeLabor, LineItemTypeEquipment, LineItemTypeOther:
		return true
	}
	return false
}

// LineItem is a billable row on a quote or invoice
type LineItem struct {
	BaseModel
	ParentType  LineItemParent  `gorm:"type:varchar(20);not null;index:idx_line_item_parent;column:parent_type"`
	ParentID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_line_item_parent;column:parent_id"`
	Description string          `gorm:"type:varchar(500);not null"`
	Type        LineItemType    `gorm:"type:varchar(50);not null;default:'other'"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	SortOrder   int             `gorm:"not null;default:0;column:sort_order"`
}

// PaymentMethod enumerates supported payment methods
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the PaymentMethod is a valid enum value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// Payment records money received against an invoice
type Payment struct {
	BaseModel
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index;column:invoice_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Method    PaymentMethod   `gorm:"type:varchar(50);not null"`
	Reference string          `gorm:"type:varchar(200)"`
	PaidAt    time.Time       `gorm:"not null;column:paid_at"`
}

// Material represents a stocked construction material
type Material struct {
	BaseModel
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index;column:company_id"`
	Name          string           `gorm:"type:varchar(200);not null;index"`
	SKU           string           `gorm:"type:varchar(100);column:sku"`
	Unit          string           `gorm:"type:varchar(50);not null;default:'pcs'"`
	UnitPrice     decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	StockQuantity decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:0;column:stock_quantity"`
	MinStockLevel *decimal.Decimal `gorm:"type:decimal(12,3);column:min_stock_level"`
}

// MaterialUsage records consumption of a material on a project.
// UnitPrice is a snapshot taken at recording time; later price changes
// never alter historical usage cost.
type MaterialUsage struct {
	BaseModel
	MaterialID uuid.UUID       `gorm:"type:uuid;not null;index;column:material_id"`
	Material   *Material       `gorm:"foreignKey:MaterialID"`
	ProjectID  uuid.UUID       `gorm:"type:uuid;not null;index;column:project_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(15,2);not null;column:unit_price"`
	UsedAt     time.Time       `gorm:"not null;column:used_at"`
	Notes      string          `gorm:"type:text"`
}

// Supplier represents a vendor materials are purchased from
type Supplier struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
}

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the PurchaseOrderStatus is a valid enum value
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusOrdered, PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder represents an order of materials from a supplier.
// Receiving an order increments stock for every item exactly once.
type PurchaseOrder struct {
	BaseModel
	CompanyID   uuid.UUID           `gorm:"type:uuid;not null;index;column:company_id"`
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index;column:supplier_id"`
	Supplier    *Supplier           `gorm:"foreignKey:SupplierID"`
	OrderNumber string              `gorm:"type:varchar(50);column:order_number"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	ReceivedAt  *time.Time          `gorm:"column:received_at"`
	Items       []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// PurchaseOrderItem is one material line on a purchase order
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index;column:purchase_order_id"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;column:material_id"`
	Material        *Material       `gorm:"foreignKey:MaterialID"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:unit_cost"`
}

// EquipmentStatus represents the status of an equipment record
type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "available"
	EquipmentStatusInUse       EquipmentStatus = "in_use"
	EquipmentStatusMaintenance EquipmentStatus = "maintenance"
	EquipmentStatusRetired     EquipmentStatus = "retired"
)

// Equipment represents a machine or tool owned by a company
type Equipment struct {
	BaseModel
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index;column:company_id"`
	Name         string          `gorm:"type:varchar(200);not null"`
	SerialNumber string          `gorm:"type:varchar(100);column:serial_number"`
	Status       EquipmentStatus `gorm:"type:varchar(50);not null;default:'available'"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid;index;column:project_id"`
}

// Subcontractor represents an external trade partner
type Subcontractor struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Trade     string    `gorm:"type:varchar(100)"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
}

// WorkOrderStatus represents the status of a work order
type WorkOrderStatus string

const (
	WorkOrderStatusPending    WorkOrderStatus = "pending"
	WorkOrderStatusInProgress WorkOrderStatus = "in_progress"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusPaid       WorkOrderStatus = "paid"
)

// IsValid checks if the WorkOrderStatus is a valid enum value
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderStatusPending, WorkOrderStatusInProgress, WorkOrderStatusCompleted, WorkOrderStatusPaid:
		return true
	}
	return false
}

// WorkOrder represents subcontracted work commissioned by a company
type WorkOrder struct {
	BaseModel
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index;column:company_id"`
	SubcontractorID uuid.UUID       `gorm:"type:uuid;not null;index;column:subcontractor_id"`
	Subcontractor   *Subcontractor  `gorm:"foreignKey:SubcontractorID"`
	ProjectID       *uuid.UUID      `gorm:"type:uuid;index;column:project_id"`
	Description     string          `gorm:"type:varchar(500);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Status          WorkOrderStatus `gorm:"type:varchar(50);not null;default:'pending'"`
	PaidDate        *time.Time      `gorm:"column:paid_date"`
}

// ChatRoom is the single discussion room of a project
type ChatRoom struct {
	BaseModel
	ProjectID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex;column:project_id"`
	Messages  []ChatMessage `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// ChatMessage is one message in a project chat room
type ChatMessage struct {
	BaseModel
	RoomID uuid.UUID `gorm:"type:uuid;not null;index;column:room_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;column:user_id"`
	Body   string    `gorm:"type:varchar(2000);not null"`
}

// Attachment represents an uploaded file. Attachments are hard-deletable.
type Attachment struct {
	BaseModel
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;index;column:company_id"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index;column:project_id"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index;column:invoice_id"`
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique;column:storage_path"`
}

// SequenceKind names a per-company document number sequence
type SequenceKind string

const (
	SequenceKindInvoice SequenceKind = "invoice"
	SequenceKindQuote   SequenceKind = "quote"
)

// NumberSequence is a per-company monotonic counter for document numbers
type NumberSequence struct {
	BaseModel
	CompanyID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_company_kind;column:company_id"`
	Kind      SequenceKind `gorm:"type:varchar(50);not null;uniqueIndex:idx_sequence_company_kind"`
	LastValue int64        `gorm:"not null;default:0;column:last_value"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeLowStock       NotificationType = "low_stock"
	NotificationTypeInvoiceOverdue NotificationType = "invoice_overdue"
	NotificationTypeInvoicePaid    NotificationType = "invoice_paid"
	NotificationTypeQuoteApproved  NotificationType = "quote_approved"
)

// Notification represents a user notification
type Notification struct {
	BaseModel
	CompanyID uuid.UUID        `gorm:"type:uuid;not null;index;column:company_id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id"`
	Type      NotificationType `gorm:"type:varchar(50);not null"`
	Title     string           `gorm:"type:varchar(200);not null"`
	Message   string           `gorm:"type:varchar(500);not null"`
	Read      bool             `gorm:"column:read;not null;default:false;index"`
	ReadAt    *time.Time
}
