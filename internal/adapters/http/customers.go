package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

type customerBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Active      *bool   `json:"active"`
	locationBody
}

func (b customerBody) patch() (domain.CustomerMapPatch, error) {
	u, err := b.update()
	if err != nil {
		return domain.CustomerMapPatch{}, err
	}
	return domain.CustomerMapPatch{
		Name:        b.Name,
		Description: b.Description,
		Phone:       b.Phone,
		Email:       b.Email,
		Active:      b.Active,
		Location:    u,
	}, nil
}

// customerView adds the display name to a customer.
type customerView struct {
	*domain.CustomerMap
	DisplayName string `json:"display_name"`
}

func viewCustomer(c *domain.CustomerMap) customerView {
	return customerView{CustomerMap: c, DisplayName: c.DisplayName()}
}

// ListCustomersHandler lists customer map entries; q searches name, phone and email.
func ListCustomersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := page(c)
		f := domain.CustomerFilter{
			Query:      c.Query("q"),
			ActiveOnly: c.QueryBool("active", false),
			Offset:     offset,
			Limit:      limit,
		}
		if len(f.Query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		rows, total, err := deps.Customers.List(c.UserContext(), f)
		if err != nil {
			return errFrom(c, err)
		}
		views := make([]customerView, len(rows))
		for i := range rows {
			views[i] = viewCustomer(&rows[i])
		}
		return list(c, views, offset, limit, total)
	}
}

// GetCustomerHandler returns one customer.
func GetCustomerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid customer id")
		}
		cm, err := deps.Customers.Get(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(viewCustomer(cm))
	}
}

// CreateCustomerHandler creates a customer, optionally with a location.
func CreateCustomerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body customerBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p, err := body.patch()
		if err != nil {
			return errFrom(c, err)
		}
		cm := &domain.CustomerMap{}
		p.Apply(cm)
		created, err := deps.Customers.Create(c.UserContext(), cm, p.Location)
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(201).JSON(viewCustomer(created))
	}
}

// UpdateCustomerHandler applies a partial update.
func UpdateCustomerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid customer id")
		}
		var body customerBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p, err := body.patch()
		if err != nil {
			return errFrom(c, err)
		}
		cm, err := deps.Customers.Update(c.UserContext(), id, p)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(viewCustomer(cm))
	}
}

// ArchiveCustomerHandler deactivates a customer.
func ArchiveCustomerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid customer id")
		}
		cm, err := deps.Customers.Archive(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(viewCustomer(cm))
	}
}

// SetCustomerLocationHandler stores a coordinate pair; both values are required.
func SetCustomerLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid customer id")
		}
		var body locationBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		cm, err := deps.Customers.SetLocation(c.UserContext(), id, body.Latitude, body.Longitude)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(viewCustomer(cm))
	}
}

// ClearCustomerLocationHandler removes a customer's location.
func ClearCustomerLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid customer id")
		}
		cm, err := deps.Customers.ClearLocation(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(viewCustomer(cm))
	}
}
