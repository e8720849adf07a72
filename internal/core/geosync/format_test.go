package geosync

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

func point(lat, lon float64) *domain.Geometry {
	return &domain.Geometry{Kind: domain.GeometryPoint, Lat: lat, Lon: lon, SRID: domain.SRIDWGS84}
}

func TestValidate(t *testing.T) {
	f := domain.Float
	tests := []struct {
		name     string
		lat, lon *float64
		wantErr  bool
	}{
		{"both nil", nil, nil, false},
		{"lat only", f(45), nil, false},
		{"edges", f(-90), f(180), false},
		{"lat too big", f(200), f(50), true},
		{"lat too small", f(-90.000001), nil, true},
		{"lon too big", nil, f(180.5), true},
		{"lon too small", f(0), f(-181), true},
		{"nan", f(math.NaN()), f(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestToGeometry_RoundTrip(t *testing.T) {
	for _, c := range [][2]float64{{-6.175392, 106.827153}, {0, 0}, {89.999999, -179.999999}, {-33.8688, 151.2093}} {
		g, err := ToGeometry(c[0], c[1])
		if err != nil {
			t.Fatalf("ToGeometry(%v) error: %v", c, err)
		}
		if g.SRID != domain.SRIDWGS84 {
			t.Errorf("SRID = %d, want 4326", g.SRID)
		}
		p, ok := FromGeometry(g)
		if !ok {
			t.Fatalf("FromGeometry failed for %v", c)
		}
		if math.Abs(p.Lat-c[0]) > 1e-6 || math.Abs(p.Lon-c[1]) > 1e-6 {
			t.Errorf("round trip %v -> (%v, %v)", c, p.Lat, p.Lon)
		}
	}
}

func TestToGeometry_Invalid(t *testing.T) {
	if _, err := ToGeometry(200, 50); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestFromGeometry_Unparseable(t *testing.T) {
	if _, ok := FromGeometry(nil); ok {
		t.Error("nil geometry should not yield a point")
	}
	g := &domain.Geometry{Kind: domain.GeometryUnparseable, Raw: "deadbeef"}
	if _, ok := FromGeometry(g); ok {
		t.Error("unparseable geometry should not yield a point")
	}
}

func TestFormatDisplay(t *testing.T) {
	f := domain.Float
	tests := []struct {
		name     string
		g        *domain.Geometry
		lat, lon *float64
		want     string
	}{
		{"nothing", nil, nil, nil, "No location set"},
		{"geometry", point(-6.2, 106.8), nil, nil, "Lat: -6.200000, Lng: 106.800000"},
		{"geometry wins", point(1, 2), f(3), f(4), "Lat: 1.000000, Lng: 2.000000"},
		{"opaque geometry", &domain.Geometry{Kind: domain.GeometryUnparseable, Raw: "x"}, f(3), f(4), "PostGIS Geometry Set"},
		{"scalars", nil, f(-6.175392), f(106.827153), "Lat: -6.175392, Lng: 106.827153"},
		{"half scalars", nil, f(1), nil, "No location set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDisplay(tt.g, tt.lat, tt.lon); got != tt.want {
				t.Errorf("FormatDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatWKT(t *testing.T) {
	f := domain.Float
	tests := []struct {
		name     string
		g        *domain.Geometry
		lat, lon *float64
		want     string
	}{
		{"nothing", nil, nil, nil, ""},
		{"scalars", nil, f(-6.2), f(106.8), "POINT(106.8 -6.2)"},
		{"stored text verbatim", &domain.Geometry{Kind: domain.GeometryPoint, Lat: 1, Lon: 2, Text: "POINT(2 1)"}, nil, nil, "POINT(2 1)"},
		{"ewkt fallback", point(-6.175392, 106.827153), nil, nil, "SRID=4326;POINT(106.827153 -6.175392)"},
		{"raw payload", &domain.Geometry{Kind: domain.GeometryUnparseable, Raw: "0101"}, nil, nil, "0101"},
		{"opaque", &domain.Geometry{Kind: domain.GeometryUnparseable}, f(1), f(2), "PostGIS Geometry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatWKT(tt.g, tt.lat, tt.lon); got != tt.want {
				t.Errorf("FormatWKT() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestZeroPolicy(t *testing.T) {
	zero := domain.Float(0)
	if ZeroIsUnset.Complete(zero, domain.Float(5)) {
		t.Error("ZeroIsUnset should treat 0 as absent")
	}
	if !ZeroIsValid.Complete(zero, zero) {
		t.Error("ZeroIsValid should accept the origin")
	}
	if ZeroIsValid.Complete(nil, zero) {
		t.Error("nil is never present")
	}
}

func TestRefresh_ZeroPolicy(t *testing.T) {
	loc := domain.Location{Latitude: domain.Float(0), Longitude: domain.Float(0)}
	Refresh(&loc, ZeroIsUnset)
	if loc.LocationDisplay != "No location set" || loc.GeoWKT != "" {
		t.Errorf("ZeroIsUnset: got %q / %q", loc.LocationDisplay, loc.GeoWKT)
	}
	Refresh(&loc, ZeroIsValid)
	if loc.LocationDisplay != "Lat: 0.000000, Lng: 0.000000" || loc.GeoWKT != "POINT(0 0)" {
		t.Errorf("ZeroIsValid: got %q / %q", loc.LocationDisplay, loc.GeoWKT)
	}
}
