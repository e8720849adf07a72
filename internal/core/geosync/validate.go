// Package geosync keeps the scalar latitude/longitude pair and the stored
// geometry of a locatable record consistent.
package geosync

import (
	"fmt"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// Validate rejects an out-of-range latitude or longitude. Nil values are valid.
// NaN is never in range.
func Validate(lat, lon *float64) error {
	if lat != nil && !(*lat >= -90 && *lat <= 90) {
		return fmt.Errorf("%w: latitude must be between -90 and 90 degrees, got %v", domain.ErrInvalidCoordinate, *lat)
	}
	if lon != nil && !(*lon >= -180 && *lon <= 180) {
		return fmt.Errorf("%w: longitude must be between -180 and 180 degrees, got %v", domain.ErrInvalidCoordinate, *lon)
	}
	return nil
}
