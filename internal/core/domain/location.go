package domain

// Location is the set of location fields shared by every locatable record.
type Location struct {
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	Shape           *Geometry `json:"-"`
	LocationDisplay string    `json:"location_display"`
	GeoWKT          string    `json:"geo_wkt"`
}

// HasShape reports whether a geometry is stored.
func (l Location) HasShape() bool { return l.Shape != nil }

// LocationUpdate carries the location fields supplied by one create or update.
// Whichever representation is supplied becomes the source of truth.
type LocationUpdate struct {
	Latitude  *float64
	Longitude *float64
	Shape     *Geometry
}

// Empty reports whether the update touches no location field.
func (u LocationUpdate) Empty() bool {
	return u.Latitude == nil && u.Longitude == nil && u.Shape == nil
}

// EntityKind names a locatable record variant.
type EntityKind string

const (
	EntityDeliveryPicking  EntityKind = "delivery_picking"
	EntityCustomerMap      EntityKind = "customer_map"
	EntityInstallmentOrder EntityKind = "installment_order"
)

// Valid reports whether k is a known variant.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityDeliveryPicking, EntityCustomerMap, EntityInstallmentOrder:
		return true
	}
	return false
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
