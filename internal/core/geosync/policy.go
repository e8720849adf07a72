package geosync

import "github.com/samirrijal/fieldops/internal/core/domain"

// ZeroPolicy decides whether a 0.0 scalar counts as a coordinate.
type ZeroPolicy int

const (
	// ZeroIsUnset treats 0.0 like an absent value when deciding whether both
	// scalars are present. Forms that default empty numbers to zero need it.
	ZeroIsUnset ZeroPolicy = iota
	// ZeroIsValid treats 0.0 as a real coordinate (equator, prime meridian).
	ZeroIsValid
)

func (p ZeroPolicy) present(v *float64) bool {
	if v == nil {
		return false
	}
	if p == ZeroIsUnset && *v == 0 {
		return false
	}
	return true
}

// Complete reports whether lat and lon together name a point under p.
func (p ZeroPolicy) Complete(lat, lon *float64) bool {
	return p.present(lat) && p.present(lon)
}

// PolicyFor returns the zero-coordinate policy of an entity. Delivery
// coordinates come from a device and may legitimately be zero; the form
// based records store unset numbers as zero.
func PolicyFor(entity domain.EntityKind) ZeroPolicy {
	if entity == domain.EntityDeliveryPicking {
		return ZeroIsValid
	}
	return ZeroIsUnset
}
