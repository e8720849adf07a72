package geospatial

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	// Monas to Bundaran HI, Jakarta: roughly 2.1 km
	d := Haversine(-6.175392, 106.827153, -6.194991, 106.823036)
	if d < 2000 || d > 2300 {
		t.Errorf("Haversine = %.0f m, want about 2.2 km", d)
	}
	if Haversine(10, 20, 10, 20) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestWithin(t *testing.T) {
	if !Within(-6.175392, 106.827153, -6.176, 106.828, 500) {
		t.Error("nearby point should be within 500 m")
	}
	if Within(-6.175392, 106.827153, -6.194991, 106.823036, 500) {
		t.Error("far point should not be within 500 m")
	}
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(0, 0, 111320)
	if math.Abs(maxLat-1) > 1e-9 || math.Abs(minLat+1) > 1e-9 {
		t.Errorf("lat bounds = %v..%v", minLat, maxLat)
	}
	if math.Abs(maxLon-1) > 1e-9 || math.Abs(minLon+1) > 1e-9 {
		t.Errorf("lon bounds = %v..%v", minLon, maxLon)
	}
}
