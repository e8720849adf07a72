package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
)

// locatableTable names the location columns of one locatable table.
type locatableTable struct {
	Table  string
	LatCol string
	LonCol string
}

var locatableTables = map[domain.EntityKind]locatableTable{
	domain.EntityDeliveryPicking:  {Table: "stock_pickings", LatCol: "delivered_latitude", LonCol: "delivered_longitude"},
	domain.EntityCustomerMap:      {Table: "customer_maps", LatCol: "latitude", LonCol: "longitude"},
	domain.EntityInstallmentOrder: {Table: "installment_orders", LatCol: "latitude", LonCol: "longitude"},
}

func tableFor(entity domain.EntityKind) (locatableTable, error) {
	t, ok := locatableTables[entity]
	if !ok {
		return locatableTable{}, fmt.Errorf("unknown locatable entity %q", entity)
	}
	return t, nil
}

// GeometryRepo implements ports.GeometryRepository for one table.
type GeometryRepo struct {
	db     *DB
	entity domain.EntityKind
	table  string
	lat    string
	lon    string
}

// NewGeometryRepo creates a GeometryRepo for the table backing entity.
func NewGeometryRepo(db *DB, entity domain.EntityKind) (*GeometryRepo, error) {
	t, err := tableFor(entity)
	if err != nil {
		return nil, err
	}
	return &GeometryRepo{
		db:     db,
		entity: entity,
		table:  pgx.Identifier{t.Table}.Sanitize(),
		lat:    pgx.Identifier{t.LatCol}.Sanitize(),
		lon:    pgx.Identifier{t.LonCol}.Sanitize(),
	}, nil
}

// SetPoint stores ST_MakePoint(lon, lat) with SRID 4326 and the scalars.
func (r *GeometryRepo) SetPoint(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error) {
	var raw, text string
	err := r.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s
		SET shape = ST_SetSRID(ST_MakePoint($2, $3), 4326), %s = $3, %s = $2
		WHERE id = $1
		RETURNING shape::text, ST_AsText(shape)
	`, r.table, r.lat, r.lon), id, lon, lat).Scan(&raw, &text)
	if err != nil {
		return nil, notFound(err, string(r.entity), id)
	}
	return geosync.DecodeEWKBHex(raw, text), nil
}

// SaveScalars stores the scalars and drops the geometry.
func (r *GeometryRepo) SaveScalars(ctx context.Context, id int64, lat, lon *float64) error {
	tag, err := r.db.Pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET shape = NULL, %s = $2, %s = $3 WHERE id = $1`,
		r.table, r.lat, r.lon), id, lat, lon)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", r.entity, id, domain.ErrNotFound)
	}
	return nil
}

// ClearPoint removes the geometry and the scalars.
func (r *GeometryRepo) ClearPoint(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET shape = NULL, %s = NULL, %s = NULL WHERE id = $1`,
		r.table, r.lat, r.lon), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", r.entity, id, domain.ErrNotFound)
	}
	return nil
}

// SaveDerived stores the display and WKT strings.
func (r *GeometryRepo) SaveDerived(ctx context.Context, id int64, display, wkt string) error {
	_, err := r.db.Pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET location_display = $2, geo_wkt = $3 WHERE id = $1`,
		r.table), id, display, wkt)
	return err
}

// BackfillResult counts the rows touched by Backfill.
type BackfillResult struct {
	Entity         domain.EntityKind
	ShapesSet      int64
	DerivedUpdated int
}

// Backfill builds missing geometries from stored scalars and recomputes the
// derived columns of every row. Rows whose scalars are out of range are left
// without a geometry.
func (r *GeometryRepo) Backfill(ctx context.Context, policy geosync.ZeroPolicy) (*BackfillResult, error) {
	res := &BackfillResult{Entity: r.entity}

	zeroFilter := ""
	if policy == geosync.ZeroIsUnset {
		zeroFilter = fmt.Sprintf(" AND %s <> 0 AND %s <> 0", r.lat, r.lon)
	}
	tag, err := r.db.Pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %[1]s SET shape = ST_SetSRID(ST_MakePoint(%[3]s, %[2]s), 4326)
		WHERE shape IS NULL AND %[2]s IS NOT NULL AND %[3]s IS NOT NULL
		  AND %[2]s BETWEEN -90 AND 90 AND %[3]s BETWEEN -180 AND 180%[4]s
	`, r.table, r.lat, r.lon, zeroFilter))
	if err != nil {
		return nil, fmt.Errorf("set shapes: %w", err)
	}
	res.ShapesSet = tag.RowsAffected()

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`SELECT id, %s FROM %s`,
		locationColumns("", r.lat, r.lon), r.table))
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}
	type derived struct {
		id           int64
		display, wkt string
	}
	var updates []derived
	for rows.Next() {
		var id int64
		var loc domain.Location
		var ls locationScan
		if err := rows.Scan(append([]any{&id}, ls.dest(&loc)...)...); err != nil {
			rows.Close()
			return nil, err
		}
		ls.finish(&loc)
		before := [2]string{loc.LocationDisplay, loc.GeoWKT}
		geosync.Refresh(&loc, policy)
		if before != [2]string{loc.LocationDisplay, loc.GeoWKT} {
			updates = append(updates, derived{id, loc.LocationDisplay, loc.GeoWKT})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(fmt.Sprintf(`UPDATE %s SET location_display = $2, geo_wkt = $3 WHERE id = $1`, r.table),
			u.id, u.display, u.wkt)
	}
	if len(updates) > 0 {
		br := r.db.Pool.SendBatch(ctx, batch)
		for range updates {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return nil, fmt.Errorf("batch exec: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return nil, err
		}
	}
	res.DerivedUpdated = len(updates)
	return res, nil
}

// EnsureIndex creates the GiST index on the geometry column.
func (r *GeometryRepo) EnsureIndex(ctx context.Context) error {
	t := locatableTables[r.entity]
	idx := pgx.Identifier{t.Table + "_shape_gist"}.Sanitize()
	_, err := r.db.Pool.Exec(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIST (shape)`, idx, r.table))
	return err
}
