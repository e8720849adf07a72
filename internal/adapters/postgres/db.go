package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

// notFound maps pgx.ErrNoRows onto domain.ErrNotFound.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return err
}

// locationColumns selects the stored location of a row: scalars, hex EWKB,
// WKT and the derived columns. prefix qualifies the columns, e.g. "p.".
func locationColumns(prefix, latCol, lonCol string) string {
	return fmt.Sprintf(`%[1]s%[2]s, %[1]s%[3]s,
		COALESCE(%[1]sshape::text, ''), COALESCE(ST_AsText(%[1]sshape), ''),
		%[1]slocation_display, %[1]sgeo_wkt`, prefix, latCol, lonCol)
}

// locationInsert returns the location columns of an INSERT, their value
// expressions starting at placeholder n, and the arguments. The point is
// built by PostGIS in the same statement as the row; geo_wkt takes its text
// form so a created row matches one written through SetPoint.
func locationInsert(latCol, lonCol string, n int, loc *domain.Location) (cols, vals string, args []any) {
	point := fmt.Sprintf("ST_SetSRID(ST_MakePoint($%d::float8, $%d::float8), 4326)", n+1, n)
	cols = fmt.Sprintf("%s, %s, shape, location_display, geo_wkt", latCol, lonCol)
	vals = fmt.Sprintf(`$%[1]d, $%[2]d, CASE WHEN $%[3]d::boolean THEN %[4]s END, $%[5]d,
		CASE WHEN $%[3]d::boolean THEN ST_AsText(%[4]s) ELSE $%[6]d END`, n, n+1, n+2, point, n+3, n+4)
	hasPoint := loc.Shape != nil && loc.Latitude != nil && loc.Longitude != nil
	args = []any{loc.Latitude, loc.Longitude, hasPoint, loc.LocationDisplay, loc.GeoWKT}
	return cols, vals, args
}

// locationReturning reads back what locationInsert stored.
const locationReturning = `COALESCE(shape::text, ''), COALESCE(ST_AsText(shape), ''), geo_wkt`

func (s *locationScan) inserted(loc *domain.Location) []any {
	return []any{&s.raw, &s.text, &loc.GeoWKT}
}

// locationScan collects the values selected by locationColumns.
type locationScan struct {
	raw, text string
}

func (s *locationScan) dest(loc *domain.Location) []any {
	return []any{&loc.Latitude, &loc.Longitude, &s.raw, &s.text, &loc.LocationDisplay, &loc.GeoWKT}
}

func (s *locationScan) finish(loc *domain.Location) {
	loc.Shape = geosync.DecodeEWKBHex(s.raw, s.text)
}
