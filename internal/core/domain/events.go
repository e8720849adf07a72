package domain

import "time"

// LocationEvent is published whenever the display location of a record changes.
type LocationEvent struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"` // "location.created" | "location.changed" | "location.cleared"
	Entity    EntityKind `json:"entity"`
	RecordID  int64      `json:"record_id"`
	Previous  string     `json:"previous,omitempty"`
	Current   string     `json:"current"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Time      time.Time  `json:"time"`
}

// OrderStatusEvent is published on every installment order status change.
type OrderStatusEvent struct {
	ID      string      `json:"id"`
	OrderID int64       `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	Actor   string      `json:"actor,omitempty"`
	Message string      `json:"message"`
	Time    time.Time   `json:"time"`
}

// MapLocation is one pin on the dashboard map.
type MapLocation struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	LocationDisplay string         `json:"location_display"`
	Active          bool           `json:"active"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// LocatableRow is the raw location state of one record as read for the dashboard.
type LocatableRow struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Active      bool           `json:"active"`
	Extra       map[string]any `json:"extra,omitempty"`
	Location
}

// MapStats summarises location coverage for one entity.
type MapStats struct {
	Total            int            `json:"total"`
	WithCoordinates  int            `json:"with_coordinates"`
	WithGeometry     int            `json:"with_geometry"`
	Active           int            `json:"active"`
	PostGISAvailable bool           `json:"postgis_available"`
	PostGISVersion   string         `json:"postgis_version,omitempty"`
	Sample           []LocatableRow `json:"sample"`
}
