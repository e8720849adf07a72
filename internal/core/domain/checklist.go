package domain

import "time"

// Checklist is the field installation checklist of one delivery.
type Checklist struct {
	ID           int64            `json:"id"`
	DeliveryID   int64            `json:"delivery_id"`
	DeliveryName string           `json:"delivery_order,omitempty"`
	UserID       *int64           `json:"user_id,omitempty"`
	OfficerID    *int64           `json:"officer_id,omitempty"`
	OfficerName  string           `json:"officer,omitempty"`
	Latitude     *float64         `json:"latitude"`
	Longitude    *float64         `json:"longitude"`
	Information  string           `json:"information,omitempty"`
	ProductLines []ChecklistLine  `json:"product_line"`
	Images       []ChecklistImage `json:"checklist_instalasi,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ChecklistLine is a product expected at the installation site.
type ChecklistLine struct {
	ID          int64   `json:"id"`
	ChecklistID int64   `json:"checklist_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Demand      float64 `json:"demand"`
	Quantity    float64 `json:"quantity"`
}

// ChecklistImage holds the photos taken for one checklist product template.
type ChecklistImage struct {
	ID                 int64               `json:"id"`
	ChecklistID        int64               `json:"checklist_id"`
	ChecklistProductID *int64              `json:"checklist_product_id,omitempty"`
	ProductID          *int64              `json:"product_id,omitempty"`
	Image              []byte              `json:"-"`
	Image1             []byte              `json:"-"`
	Image2             []byte              `json:"-"`
	Image3             []byte              `json:"-"`
	Information        string              `json:"information,omitempty"`
	Template           *ChecklistProduct   `json:"checklist_product,omitempty"`
	Criteria           []ChecklistCriteria `json:"product_criteria,omitempty"`
}

// ImageField returns the bytes of the named photo field.
func (i *ChecklistImage) ImageField(name string) ([]byte, bool) {
	switch name {
	case "image":
		return i.Image, true
	case "image1":
		return i.Image1, true
	case "image2":
		return i.Image2, true
	case "image3":
		return i.Image3, true
	}
	return nil, false
}

// ChecklistProduct is an inspection template attached to a product.
type ChecklistProduct struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Sequence  int    `json:"sequence"`
}

// ChecklistCriteria is one acceptance criterion of a template.
type ChecklistCriteria struct {
	ID                 int64  `json:"id"`
	ChecklistProductID int64  `json:"checklist_product_id"`
	Criteria           string `json:"criteria"`
	Information        string `json:"information,omitempty"`
	Sequence           int    `json:"sequence"`
}

// ChecklistPatch holds the fields of a checklist update.
type ChecklistPatch struct {
	OfficerID     *int64
	Latitude      *float64
	Longitude     *float64
	Information   *string
	Images        []ChecklistImage
	ReplaceImages bool
}
