package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/usecases"
)

// deliveryView adds the distance between planned and delivered location.
type deliveryView struct {
	*domain.Picking
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

func viewDelivery(p *domain.Picking) deliveryView {
	v := deliveryView{Picking: p}
	if d, ok := usecases.DeliveryDistance(p); ok {
		v.DistanceMeters = &d
	}
	return v
}

func deliveryHandler(fn func(c *fiber.Ctx, id int64) (*domain.Picking, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid picking id")
		}
		p, err := fn(c, id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(viewDelivery(p))
	}
}

// ListDeliveriesHandler lists delivery orders, optionally by state.
func ListDeliveriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := page(c)
		rows, total, err := deps.Pickings.ListDeliveries(c.UserContext(), domain.PickingFilter{
			State:  domain.PickingState(c.Query("state")),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			return errFrom(c, err)
		}
		views := make([]deliveryView, len(rows))
		for i := range rows {
			views[i] = viewDelivery(&rows[i])
		}
		return list(c, views, offset, limit, total)
	}
}

// GetDeliveryHandler returns one picking with its moves.
func GetDeliveryHandler(deps *Dependencies) fiber.Handler {
	return deliveryHandler(func(c *fiber.Ctx, id int64) (*domain.Picking, error) {
		return deps.Pickings.Get(c.UserContext(), id)
	})
}

// StartDeliveryHandler moves an assigned delivery to the delivery state.
func StartDeliveryHandler(deps *Dependencies) fiber.Handler {
	return deliveryHandler(func(c *fiber.Ctx, id int64) (*domain.Picking, error) {
		return deps.Pickings.StartDelivery(c.UserContext(), id)
	})
}

// SetDeliveredLocationHandler records where goods were handed over.
func SetDeliveredLocationHandler(deps *Dependencies) fiber.Handler {
	return deliveryHandler(func(c *fiber.Ctx, id int64) (*domain.Picking, error) {
		var body locationBody
		if err := c.BodyParser(&body); err != nil {
			return nil, &domain.FieldError{Field: "body", Message: "invalid request body"}
		}
		u, err := body.update()
		if err != nil {
			return nil, err
		}
		return deps.Pickings.SetDeliveredLocation(c.UserContext(), id, u)
	})
}

// ClearDeliveredLocationHandler removes the delivered location.
func ClearDeliveredLocationHandler(deps *Dependencies) fiber.Handler {
	return deliveryHandler(func(c *fiber.Ctx, id int64) (*domain.Picking, error) {
		return deps.Pickings.ClearDeliveredLocation(c.UserContext(), id)
	})
}

// GenerateDetailsHandler rebuilds the serialised detail lines of a picking.
func GenerateDetailsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid picking id")
		}
		plan, err := deps.Pickings.GenerateDetails(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{
			"receipts_replaced":   plan.ReplaceReceipts,
			"receipts":            len(plan.Receipts),
			"deliveries_replaced": plan.ReplaceDeliveries,
			"deliveries":          len(plan.Deliveries),
		})
	}
}

// DetailsHandler returns the receipt and delivery detail lines of a picking.
func DetailsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid picking id")
		}
		receipts, deliveries, err := deps.Pickings.Details(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		if receipts == nil {
			receipts = []domain.ReceiptDetail{}
		}
		if deliveries == nil {
			deliveries = []domain.DeliveryDetail{}
		}
		return c.JSON(fiber.Map{"receipts": receipts, "deliveries": deliveries})
	}
}

// CreateReturnHandler books delivered units back. detail_ids restricts the
// return to those delivery details.
func CreateReturnHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid picking id")
		}
		var body struct {
			DetailIDs []int64 `json:"detail_ids"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		ret, err := deps.Pickings.CreateReturn(c.UserContext(), id, body.DetailIDs)
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(201).JSON(ret)
	}
}

// DeliveryChecklistHandler returns the checklist of a delivery.
func DeliveryChecklistHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid picking id")
		}
		cl, err := deps.Checklists.ByDelivery(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(cl)
	}
}

// OpenChecklistHandler returns the checklist of a delivery, creating it
// pre-filled from the delivery when there is none.
func OpenChecklistHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid picking id")
		}
		cl, created, err := deps.Checklists.Open(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		if created {
			return c.Status(201).JSON(cl)
		}
		return c.JSON(cl)
	}
}
