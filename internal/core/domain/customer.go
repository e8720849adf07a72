package domain

import (
	"strings"
	"time"
)

// CustomerMap is a customer or field worker pinned on the map.
type CustomerMap struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Location
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the name followed by the phone number when one is set.
func (c *CustomerMap) DisplayName() string {
	if c.Phone == "" {
		return c.Name
	}
	return c.Name + " (" + c.Phone + ")"
}

// Validate checks the non-location field rules.
func (c *CustomerMap) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &FieldError{Field: "name", Message: "name is required"}
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return &FieldError{Field: "email", Message: "Please enter a valid email address."}
	}
	return nil
}

// CustomerMapPatch holds the fields of a partial customer update.
type CustomerMapPatch struct {
	Name        *string
	Description *string
	Phone       *string
	Email       *string
	Active      *bool
	Location    LocationUpdate
}

// Apply copies the set fields onto c. Location fields are left to the synchronizer.
func (p CustomerMapPatch) Apply(c *CustomerMap) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Query      string
	ActiveOnly bool
	Offset     int
	Limit      int
}

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrValidation.
func (e *FieldError) Unwrap() error { return ErrValidation }
