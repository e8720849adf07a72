package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

type orderLineBody struct {
	ProductID   int64    `json:"product_id"`
	Quantity    *float64 `json:"quantity"`
	Description string   `json:"description"`
}

type orderBody struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Street       *string         `json:"street"`
	Street2      *string         `json:"street2"`
	City         *string         `json:"city"`
	State        *string         `json:"state"`
	Zip          *string         `json:"zip"`
	Country      *string         `json:"country"`
	ContactID    *int64          `json:"contact_id"`
	Active       *bool           `json:"active"`
	ProductLines []orderLineBody `json:"product_lines"`
	locationBody
}

func (b orderBody) patch() (domain.InstallmentOrderPatch, error) {
	u, err := b.update()
	if err != nil {
		return domain.InstallmentOrderPatch{}, err
	}
	p := domain.InstallmentOrderPatch{
		Title:       b.Title,
		Description: b.Description,
		Street:      b.Street,
		Street2:     b.Street2,
		City:        b.City,
		State:       b.State,
		Zip:         b.Zip,
		Country:     b.Country,
		ContactID:   b.ContactID,
		Active:      b.Active,
		Location:    u,
	}
	if b.ProductLines != nil {
		p.ReplaceLines = true
		p.ProductLines = make([]domain.OrderProductLine, 0, len(b.ProductLines))
		for _, l := range b.ProductLines {
			qty := 1.0
			if l.Quantity != nil {
				qty = *l.Quantity
			}
			p.ProductLines = append(p.ProductLines, domain.OrderProductLine{
				ProductID:   l.ProductID,
				Quantity:    qty,
				Description: l.Description,
			})
		}
	}
	return p, nil
}

func orderHandler(fn func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid order id")
		}
		o, err := fn(c, id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(o)
	}
}

// ListOrdersHandler lists installment orders, optionally by status.
func ListOrdersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := page(c)
		f := domain.OrderFilter{
			Status:     domain.OrderStatus(c.Query("status")),
			ActiveOnly: c.QueryBool("active", false),
			Offset:     offset,
			Limit:      limit,
		}
		rows, total, err := deps.Orders.List(c.UserContext(), f)
		if err != nil {
			return errFrom(c, err)
		}
		return list(c, rows, offset, limit, total)
	}
}

// GetOrderHandler returns one order with its lines.
func GetOrderHandler(deps *Dependencies) fiber.Handler {
	return orderHandler(func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error) {
		return deps.Orders.Get(c.UserContext(), id)
	})
}

// CreateOrderHandler creates a draft order.
func CreateOrderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body orderBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p, err := body.patch()
		if err != nil {
			return errFrom(c, err)
		}
		o := &domain.InstallmentOrder{}
		p.Apply(o)
		created, err := deps.Orders.Create(c.UserContext(), o, p.Location)
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(201).JSON(created)
	}
}

// UpdateOrderHandler applies a partial update; product_lines replaces all lines.
func UpdateOrderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid order id")
		}
		var body orderBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p, err := body.patch()
		if err != nil {
			return errFrom(c, err)
		}
		o, err := deps.Orders.Update(c.UserContext(), id, p)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(o)
	}
}

// SubmitOrderHandler sends a draft for approval.
func SubmitOrderHandler(deps *Dependencies) fiber.Handler {
	return orderHandler(func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error) {
		return deps.Orders.Submit(c.UserContext(), id, actor(c))
	})
}

// ApproveOrderHandler approves a submitted order.
func ApproveOrderHandler(deps *Dependencies) fiber.Handler {
	return orderHandler(func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error) {
		return deps.Orders.Approve(c.UserContext(), id, actor(c))
	})
}

// RejectOrderHandler sends an order back to draft.
func RejectOrderHandler(deps *Dependencies) fiber.Handler {
	return orderHandler(func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error) {
		return deps.Orders.Reject(c.UserContext(), id, actor(c))
	})
}

// DoneOrderHandler closes an approved order.
func DoneOrderHandler(deps *Dependencies) fiber.Handler {
	return orderHandler(func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error) {
		return deps.Orders.MarkDone(c.UserContext(), id, actor(c))
	})
}

// SetOrderLocationHandler stores a coordinate pair; both values are required.
func SetOrderLocationHandler(deps *Dependencies) fiber.Handler {
	return orderHandler(func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error) {
		var body locationBody
		if err := c.BodyParser(&body); err != nil {
			return nil, &domain.FieldError{Field: "body", Message: "invalid request body"}
		}
		return deps.Orders.SetLocation(c.UserContext(), id, body.Latitude, body.Longitude)
	})
}

// ClearOrderLocationHandler removes an order's location.
func ClearOrderLocationHandler(deps *Dependencies) fiber.Handler {
	return orderHandler(func(c *fiber.Ctx, id int64) (*domain.InstallmentOrder, error) {
		return deps.Orders.ClearLocation(c.UserContext(), id)
	})
}

// CreatePurchaseOrderHandler creates the purchase order of an approved order.
// With a workflow starter configured the work is queued and 202 is returned.
func CreatePurchaseOrderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid order id")
		}
		ctx := c.UserContext()

		if deps.Purchases != nil {
			// fail fast on orders the workflow would reject
			if _, err := deps.Orders.BuildPurchaseOrder(ctx, id); err != nil {
				return errFrom(c, err)
			}
			runID, err := deps.Purchases.StartPurchase(ctx, id, actor(c))
			if err != nil {
				return errFrom(c, err)
			}
			return c.Status(202).JSON(fiber.Map{"status": "started", "run_id": runID})
		}

		po, err := deps.Orders.CreatePurchaseOrder(ctx, id, actor(c))
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(201).JSON(po)
	}
}

// OrderPurchaseOrdersHandler lists the purchase orders created from an order.
func OrderPurchaseOrdersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid order id")
		}
		pos, err := deps.Orders.PurchaseOrders(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		if pos == nil {
			pos = []domain.PurchaseOrder{}
		}
		return c.JSON(pos)
	}
}
