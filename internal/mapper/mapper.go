package mapper

import (
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Mapping between persistence models and API DTOs.

func ToUserDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		IsActive: u.IsActive,
	}
}

func ToCompanyDTO(c *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Currency:  c.Currency,
		CreatedAt: c.CreatedAt,
	}
}

func ToMembershipDTO(m *domain.CompanyMembership) domain.MembershipDTO {
	dto := domain.MembershipDTO{
		CompanyID: m.CompanyID,
		Role:      m.Role,
	}
	if m.Company != nil {
		dto.CompanyName = m.Company.Name
		dto.CompanySlug = m.Company.Slug
	}
	return dto
}

func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		LinkedUserID: c.LinkedUserID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func ToProjectDTO(p *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Progress:    p.Progress,
		Budget:      p.Budget,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Tags:        []string(p.Tags),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Customer != nil {
		c := ToCustomerDTO(p.Customer)
		dto.Customer = &c
	}
	for i := range p.Phases {
		dto.Phases = append(dto.Phases, ToPhaseDTO(&p.Phases[i]))
	}
	return dto
}

func ToPhaseDTO(p *domain.ProjectPhase) domain.ProjectPhaseDTO {
	return domain.ProjectPhaseDTO{
		ID:        p.ID,
		Name:      p.Name,
		SortOrder: p.SortOrder,
		Status:    p.Status,
	}
}

func ToNoteDTO(n *domain.ProjectNote) domain.ProjectNoteDTO {
	return domain.ProjectNoteDTO{
		ID:        n.ID,
		AuthorID:  n.AuthorID,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	}
}

func ToLineItemDTO(i *domain.LineItem) domain.LineItemDTO {
	return domain.LineItemDTO{
		ID:          i.ID,
		Description: i.Description,
		Type:        i.Type,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		Total:       i.Total,
		SortOrder:   i.SortOrder,
	}
}

func ToQuoteDTO(q *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:                 q.ID,
		CustomerID:         q.CustomerID,
		ProjectID:          q.ProjectID,
		QuoteNumber:        q.QuoteNumber,
		Title:              q.Title,
		Status:             q.Status,
		Subtotal:           q.Subtotal,
		TaxAmount:          q.TaxAmount,
		DiscountAmount:     q.DiscountAmount,
		Total:              q.Total,
		ValidUntil:         q.ValidUntil,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
	for i := range q.Items {
		dto.Items = append(dto.Items, ToLineItemDTO(&q.Items[i]))
	}
	return dto
}

func ToPaymentDTO(p *domain.Payment) domain.PaymentDTO {
	return domain.PaymentDTO{
		ID:        p.ID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		PaidAt:    p.PaidAt,
	}
}

func ToInvoiceDTO(inv *domain.Invoice) domain.InvoiceDTO {
	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	dto := domain.InvoiceDTO{
		ID:             inv.ID,
		CustomerID:     inv.CustomerID,
		ProjectID:      inv.ProjectID,
		QuoteID:        inv.QuoteID,
		InvoiceNumber:  inv.InvoiceNumber,
		Status:         inv.Status,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		Total:          inv.Total,
		AmountPaid:     paid,
		Balance:        inv.Total.Sub(paid),
		DueDate:        inv.DueDate,
		PaidDate:       inv.PaidDate,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	for i := range inv.Items {
		dto.Items = append(dto.Items, ToLineItemDTO(&inv.Items[i]))
	}
	for i := range inv.Payments {
		dto.Payments = append(dto.Payments, ToPaymentDTO(&inv.Payments[i]))
	}
	return dto
}

func ToMaterialDTO(m *domain.Material) domain.MaterialDTO {
	lowStock := m.MinStockLevel != nil && m.StockQuantity.LessThanOrEqual(*m.MinStockLevel)
	return domain.MaterialDTO{
		ID:            m.ID,
		Name:          m.Name,
		SKU:           m.SKU,
		Unit:          m.Unit,
		UnitPrice:     m.UnitPrice,
		StockQuantity: m.StockQuantity,
		MinStockLevel: m.MinStockLevel,
		LowStock:      lowStock,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToUsageDTO(u *domain.MaterialUsage) domain.MaterialUsageDTO {
	dto := domain.MaterialUsageDTO{
		ID:         u.ID,
		MaterialID: u.MaterialID,
		ProjectID:  u.ProjectID,
		Quantity:   u.Quantity,
		UnitPrice:  u.UnitPrice,
		TotalCost:  u.Quantity.Mul(u.UnitPrice),
		UsedAt:     u.UsedAt,
		Notes:      u.Notes,
	}
	if u.Material != nil {
		dto.MaterialName = u.Material.Name
	}
	return dto
}

func ToSupplierDTO(s *domain.Supplier) domain.SupplierDTO {
	return domain.SupplierDTO{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		CreatedAt: s.CreatedAt,
	}
}

func ToPurchaseOrderDTO(po *domain.PurchaseOrder) domain.PurchaseOrderDTO {
	dto := domain.PurchaseOrderDTO{
		ID:          po.ID,
		SupplierID:  po.SupplierID,
		OrderNumber: po.OrderNumber,
		Status:      po.Status,
		ReceivedAt:  po.ReceivedAt,
		TotalCost:   decimal.Zero,
		CreatedAt:   po.CreatedAt,
	}
	if po.Supplier != nil {
		dto.SupplierName = po.Supplier.Name
	}
	for i := range po.Items {
		item := &po.Items[i]
		itemDTO := domain.PurchaseOrderItemDTO{
			ID:         item.ID,
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			UnitCost:   item.UnitCost,
		}
		if item.Material != nil {
			itemDTO.MaterialName = item.Material.Name
		}
		dto.Items = append(dto.Items, itemDTO)
		dto.TotalCost = dto.TotalCost.Add(item.Quantity.Mul(item.UnitCost))
	}
	return dto
}

func ToEquipmentDTO(e *domain.Equipment) domain.EquipmentDTO {
	return domain.EquipmentDTO{
		ID:           e.ID,
		Name:         e.Name,
		SerialNumber: e.SerialNumber,
		Status:       e.Status,
		ProjectID:    e.ProjectID,
		CreatedAt:    e.CreatedAt,
	}
}

func ToSubcontractorDTO(s *domain.Subcontractor) domain.SubcontractorDTO {
	return domain.SubcontractorDTO{
		ID:        s.ID,
		Name:      s.Name,
		Trade:     s.Trade,
		Email:     s.Email,
		Phone:     s.Phone,
		CreatedAt: s.CreatedAt,
	}
}

func ToWorkOrderDTO(wo *domain.WorkOrder) domain.WorkOrderDTO {
	dto := domain.WorkOrderDTO{
		ID:              wo.ID,
		SubcontractorID: wo.SubcontractorID,
		ProjectID:       wo.ProjectID,
		Description:     wo.Description,
		Amount:          wo.Amount,
		Status:          wo.Status,
		PaidDate:        wo.PaidDate,
		CreatedAt:       wo.CreatedAt,
	}
	if wo.Subcontractor != nil {
		dto.SubcontractorName = wo.Subcontractor.Name
	}
	return dto
}

func ToChatMessageDTO(m *domain.ChatMessage) domain.ChatMessageDTO {
	return domain.ChatMessageDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func ToAttachmentDTO(a *domain.Attachment) domain.AttachmentDTO {
	return domain.AttachmentDTO{
		ID:          a.ID,
		ProjectID:   a.ProjectID,
		InvoiceID:   a.InvoiceID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		Size:        a.Size,
		CreatedAt:   a.CreatedAt,
	}
}

func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
