package domain

import (
	"strings"
	"time"
)

// OrderStatus is the approval state of an installment order.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderSubmitted OrderStatus = "submitted"
	OrderApproved  OrderStatus = "approved"
	OrderDone      OrderStatus = "done"
)

// InstallmentOrder is a customer request for an installation.
type InstallmentOrder struct {
	ID                 int64                `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description,omitempty"`
	Street             string               `json:"street,omitempty"`
	Street2            string               `json:"street2,omitempty"`
	City               string               `json:"city,omitempty"`
	State              string               `json:"state,omitempty"`
	Zip                string               `json:"zip,omitempty"`
	Country            string               `json:"country,omitempty"`
	Address            string               `json:"address"`
	ContactID          *int64               `json:"contact_id,omitempty"`
	Status             OrderStatus          `json:"status"`
	ProductLines       []OrderProductLine   `json:"product_lines"`
	PurchaseOrderCount int                  `json:"purchase_order_count"`
	Location
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderProductLine is one requested product.
type OrderProductLine struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    float64 `json:"quantity"`
	Description string  `json:"description,omitempty"`
}

// ComposeAddress joins the non-empty address parts with ", ".
func (o *InstallmentOrder) ComposeAddress() string {
	var parts []string
	for _, p := range []string{o.Street, o.Street2, o.City, o.State, o.Zip, o.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Validate checks the non-location field rules.
func (o *InstallmentOrder) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return &FieldError{Field: "title", Message: "title is required"}
	}
	for _, l := range o.ProductLines {
		if l.ProductID == 0 {
			return &FieldError{Field: "product_lines", Message: "product is required on every line"}
		}
	}
	return nil
}

// InstallmentOrderPatch holds the fields of a partial order update.
type InstallmentOrderPatch struct {
	Title        *string
	Description  *string
	Street       *string
	Street2      *string
	City         *string
	State        *string
	Zip          *string
	Country      *string
	ContactID    *int64
	Active       *bool
	ProductLines []OrderProductLine
	ReplaceLines bool
	Location     LocationUpdate
}

// Apply copies the set fields onto o and recomputes the address.
func (p InstallmentOrderPatch) Apply(o *InstallmentOrder) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&o.Title, p.Title)
	set(&o.Description, p.Description)
	set(&o.Street, p.Street)
	set(&o.Street2, p.Street2)
	set(&o.City, p.City)
	set(&o.State, p.State)
	set(&o.Zip, p.Zip)
	set(&o.Country, p.Country)
	if p.ContactID != nil {
		o.ContactID = p.ContactID
	}
	if p.Active != nil {
		o.Active = *p.Active
	}
	if p.ReplaceLines {
		o.ProductLines = p.ProductLines
	}
	o.Address = o.ComposeAddress()
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status     OrderStatus
	ActiveOnly bool
	Offset     int
	Limit      int
}

// Product is the subset of catalogue data the service needs.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	DefaultCode   string  `json:"default_code,omitempty"`
	StandardPrice float64 `json:"standard_price"`
	UomID         int64   `json:"uom_id"`
}

// PurchaseOrder is created from an approved installment order.
type PurchaseOrder struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	PartnerID int64               `json:"partner_id"`
	Origin    string              `json:"origin"`
	Lines     []PurchaseOrderLine `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
}

// PurchaseOrderLine is one purchased product.
type PurchaseOrderLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UomID     int64   `json:"uom_id"`
	PriceUnit float64 `json:"price_unit"`
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch next {
	case OrderSubmitted:
		return s == OrderDraft
	case OrderApproved:
		return s == OrderSubmitted
	case OrderDraft:
		return s == OrderSubmitted || s == OrderApproved
	case OrderDone:
		return s == OrderApproved
	}
	return false
}
