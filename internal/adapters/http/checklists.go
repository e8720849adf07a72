package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

type checklistImageBody struct {
	ChecklistProductID *int64 `json:"checklist_product_id"`
	ProductID          *int64 `json:"product_id"`
	Image              []byte `json:"image"`
	Image1             []byte `json:"image1"`
	Image2             []byte `json:"image2"`
	Image3             []byte `json:"image3"`
	Information        string `json:"information"`
}

type checklistBody struct {
	DeliveryID  int64                `json:"delivery_id"`
	OfficerID   *int64               `json:"officer_id"`
	Latitude    *float64             `json:"latitude"`
	Longitude   *float64             `json:"longitude"`
	Information *string              `json:"information"`
	Images      []checklistImageBody `json:"checklist_instalasi"`
}

func (b checklistBody) images() []domain.ChecklistImage {
	out := make([]domain.ChecklistImage, 0, len(b.Images))
	for _, img := range b.Images {
		out = append(out, domain.ChecklistImage{
			ChecklistProductID: img.ChecklistProductID,
			ProductID:          img.ProductID,
			Image:              img.Image,
			Image1:             img.Image1,
			Image2:             img.Image2,
			Image3:             img.Image3,
			Information:        img.Information,
		})
	}
	return out
}

// ListChecklistsHandler lists checklists.
func ListChecklistsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := page(c)
		rows, total, err := deps.Checklists.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFrom(c, err)
		}
		return list(c, rows, offset, limit, total)
	}
}

// GetChecklistHandler returns a checklist with lines and images.
func GetChecklistHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid checklist id")
		}
		cl, err := deps.Checklists.Get(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(cl)
	}
}

// CreateChecklistHandler stores a checklist for a delivery.
func CreateChecklistHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body checklistBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		cl := &domain.Checklist{
			DeliveryID: body.DeliveryID,
			OfficerID:  body.OfficerID,
			Latitude:   body.Latitude,
			Longitude:  body.Longitude,
			Images:     body.images(),
		}
		if body.Information != nil {
			cl.Information = *body.Information
		}
		created, err := deps.Checklists.Create(c.UserContext(), cl)
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(201).JSON(created)
	}
}

// UpdateChecklistHandler applies a partial update; checklist_instalasi
// replaces all image records.
func UpdateChecklistHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid checklist id")
		}
		var body checklistBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		patch := domain.ChecklistPatch{
			OfficerID:     body.OfficerID,
			Latitude:      body.Latitude,
			Longitude:     body.Longitude,
			Information:   body.Information,
			ReplaceImages: body.Images != nil,
		}
		if patch.ReplaceImages {
			patch.Images = body.images()
		}
		cl, err := deps.Checklists.Update(c.UserContext(), id, patch)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(cl)
	}
}

// PrepareInspectionHandler creates the image records of a checklist line.
func PrepareInspectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid line id")
		}
		n, err := deps.Checklists.PrepareInspection(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{"created": n})
	}
}

// ChecklistImageHandler serves one photo of an image record.
func ChecklistImageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid image id")
		}
		data, err := deps.Checklists.Image(c.UserContext(), id, c.Params("field"))
		if err != nil {
			return errFrom(c, err)
		}
		c.Set(fiber.HeaderContentType, nethttp.DetectContentType(data))
		c.Set(fiber.HeaderCacheControl, "private, max-age=300")
		return c.Send(data)
	}
}
