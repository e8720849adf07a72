package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PickingType is the operation direction of a picking.
type PickingType string

const (
	PickingIncoming PickingType = "incoming"
	PickingOutgoing PickingType = "outgoing"
	PickingInternal PickingType = "internal"
)

// PickingState is the stock state of a picking.
type PickingState string

const (
	PickingDraft     PickingState = "draft"
	PickingWaiting   PickingState = "waiting"
	PickingConfirmed PickingState = "confirmed"
	PickingAssigned  PickingState = "assigned"
	PickingDelivery  PickingState = "delivery"
	PickingDone      PickingState = "done"
	PickingCancel    PickingState = "cancel"
)

// ReturnOriginPrefix marks pickings created by a return.
const ReturnOriginPrefix = "Return of "

// Picking is a stock transfer; outgoing pickings are delivery orders and carry
// the delivered location.
type Picking struct {
	ID                   int64        `json:"id"`
	Name                 string       `json:"name"`
	Type                 PickingType  `json:"picking_type"`
	State                PickingState `json:"state"`
	Street               string       `json:"street,omitempty"`
	Street2              string       `json:"street2,omitempty"`
	City                 string       `json:"city,omitempty"`
	StateName            string       `json:"state_name,omitempty"`
	Zip                  string       `json:"zip,omitempty"`
	Country              string       `json:"country,omitempty"`
	DestinationLatitude  *float64     `json:"destination_latitude,omitempty"`
	DestinationLongitude *float64     `json:"destination_longitude,omitempty"`
	Origin               string       `json:"origin,omitempty"`
	PartnerID            *int64       `json:"partner_id,omitempty"`
	UserID               *int64       `json:"user_id,omitempty"`
	WarehouseID          *int64       `json:"warehouse_id,omitempty"`
	PurchaseID           *int64       `json:"purchase_id,omitempty"`
	LocationID           int64        `json:"location_id"`
	LocationDestID       int64        `json:"location_dest_id"`
	ScheduledDate        *time.Time   `json:"scheduled_date,omitempty"`
	Moves                []StockMove  `json:"moves,omitempty"`
	// Location holds the delivered coordinates.
	Location
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// IsReturn reports whether the picking was created by a return.
func (p *Picking) IsReturn() bool {
	return strings.Contains(p.Origin, strings.TrimSpace(ReturnOriginPrefix))
}

// StockMove is one product movement of a picking.
type StockMove struct {
	ID          int64   `json:"id"`
	PickingID   int64   `json:"picking_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	DefaultCode string  `json:"default_code,omitempty"`
	Demand      float64 `json:"demand"`
	Quantity    float64 `json:"quantity"`
	UomID       int64   `json:"uom_id"`
}

// ReceiptDetail is one serialised unit received by an incoming picking.
type ReceiptDetail struct {
	ID          int64  `json:"id"`
	ReceiptID   int64  `json:"receipt_id"`
	CodeProduct string `json:"code_product"`
	ProductID   int64  `json:"product_id"`
	PurchaseID  *int64 `json:"purchase_id,omitempty"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
	DeliveryID  *int64 `json:"delivery_id,omitempty"`
}

// DeliveryDetail is one serialised unit shipped by an outgoing picking.
type DeliveryDetail struct {
	ID              int64  `json:"id"`
	DeliveryID      int64  `json:"delivery_id"`
	ReceiptDetailID *int64 `json:"receipt_detail_id,omitempty"`
	CodeProduct     string `json:"code_product"`
	ProductID       int64  `json:"product_id"`
	WarehouseID     *int64 `json:"warehouse_id,omitempty"`
	IsReturned      bool   `json:"is_returned"`
	ReturnID        *int64 `json:"return_id,omitempty"`
}

// ReturnDetail records a unit brought back by a return picking.
type ReturnDetail struct {
	ID                 int64  `json:"id"`
	ReturnID           int64  `json:"return_id"`
	OriginalDeliveryID int64  `json:"original_delivery_id"`
	ReceiptDetailID    *int64 `json:"receipt_detail_id,omitempty"`
	ProductID          int64  `json:"product_id"`
	WarehouseID        *int64 `json:"warehouse_id,omitempty"`
}

// DetailPlan says which detail sets of a picking to replace and with what.
type DetailPlan struct {
	ReplaceReceipts   bool
	Receipts          []ReceiptDetail
	ReplaceDeliveries bool
	Deliveries        []DeliveryDetail
}

// MaxDetailUnits bounds the serialised lines a single move expands into.
const MaxDetailUnits = 10000

// DetailLines expands the moves into one child line per whole unit of done
// quantity. Incoming pickings replace their receipt lines unless they are
// returns, outgoing pickings replace their delivery lines, any other type
// clears both sets. A move above MaxDetailUnits fails the whole plan.
func (p *Picking) DetailLines() (DetailPlan, error) {
	var plan DetailPlan

	switch p.Type {
	case PickingIncoming:
		if p.IsReturn() {
			return plan, nil
		}
		plan.ReplaceReceipts = true
		for _, m := range p.Moves {
			n, err := m.units()
			if err != nil {
				return DetailPlan{}, err
			}
			for i := 0; i < n; i++ {
				plan.Receipts = append(plan.Receipts, ReceiptDetail{
					ReceiptID:   p.ID,
					CodeProduct: m.DefaultCode,
					ProductID:   m.ProductID,
					PurchaseID:  p.PurchaseID,
					WarehouseID: p.WarehouseID,
				})
			}
		}
	case PickingOutgoing:
		plan.ReplaceDeliveries = true
		for _, m := range p.Moves {
			n, err := m.units()
			if err != nil {
				return DetailPlan{}, err
			}
			for i := 0; i < n; i++ {
				plan.Deliveries = append(plan.Deliveries, DeliveryDetail{
					DeliveryID:  p.ID,
					CodeProduct: m.DefaultCode,
					ProductID:   m.ProductID,
					WarehouseID: p.WarehouseID,
				})
			}
		}
	default:
		plan.ReplaceReceipts = true
		plan.ReplaceDeliveries = true
	}
	return plan, nil
}

// units is the number of whole units done on the move.
func (m StockMove) units() (int, error) {
	switch {
	case math.IsNaN(m.Quantity) || m.Quantity > MaxDetailUnits:
		return 0, &FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("Move %d has %g units done; at most %d can be serialised.", m.ID, m.Quantity, MaxDetailUnits),
		}
	case m.Quantity < 1:
		return 0, nil
	}
	return int(m.Quantity), nil
}

// PickingFilter narrows picking listings.
type PickingFilter struct {
	Type   PickingType
	State  PickingState
	Offset int
	Limit  int
}
