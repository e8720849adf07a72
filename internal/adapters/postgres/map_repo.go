package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// MapRepo implements ports.MapRepository with pgx.
type MapRepo struct {
	db *DB
}

// NewMapRepo creates a new MapRepo.
func NewMapRepo(db *DB) *MapRepo {
	return &MapRepo{db: db}
}

// titleExpr is the dashboard title column of each table.
var titleExpr = map[domain.EntityKind]string{
	domain.EntityCustomerMap:      "name",
	domain.EntityInstallmentOrder: "title",
	domain.EntityDeliveryPicking:  "name",
}

var descriptionExpr = map[domain.EntityKind]string{
	domain.EntityCustomerMap:      "COALESCE(description, '')",
	domain.EntityInstallmentOrder: "COALESCE(address, '')",
	domain.EntityDeliveryPicking:  "COALESCE(origin, '')",
}

func (r *MapRepo) rowSelect(entity domain.EntityKind) (string, error) {
	t, err := tableFor(entity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`SELECT id, %s, %s, active, %s FROM %s`,
		titleExpr[entity], descriptionExpr[entity],
		locationColumns("", t.LatCol, t.LonCol), pgx.Identifier{t.Table}.Sanitize()), nil
}

func scanLocatable(rows pgx.Rows) (domain.LocatableRow, error) {
	var lr domain.LocatableRow
	var ls locationScan
	dest := append([]any{&lr.ID, &lr.Title, &lr.Description, &lr.Active}, ls.dest(&lr.Location)...)
	if err := rows.Scan(dest...); err != nil {
		return lr, err
	}
	ls.finish(&lr.Location)
	return lr, nil
}

// ActiveLocations returns active rows that have a geometry or both scalars.
func (r *MapRepo) ActiveLocations(ctx context.Context, entity domain.EntityKind) ([]domain.LocatableRow, error) {
	q, err := r.rowSelect(entity)
	if err != nil {
		return nil, err
	}
	t := locatableTables[entity]
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`%s
		WHERE active AND (shape IS NOT NULL OR (%s IS NOT NULL AND %s IS NOT NULL))
		ORDER BY id`, q, t.LatCol, t.LonCol))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LocatableRow
	for rows.Next() {
		lr, err := scanLocatable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// Stats counts rows and location coverage and returns a sample of rows.
func (r *MapRepo) Stats(ctx context.Context, entity domain.EntityKind, sample int) (*domain.MapStats, error) {
	t, err := tableFor(entity)
	if err != nil {
		return nil, err
	}
	var s domain.MapStats
	err = r.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT count(*),
		       count(*) FILTER (WHERE %[2]s IS NOT NULL AND %[3]s IS NOT NULL),
		       count(*) FILTER (WHERE shape IS NOT NULL),
		       count(*) FILTER (WHERE active)
		FROM %[1]s`, pgx.Identifier{t.Table}.Sanitize(), t.LatCol, t.LonCol)).
		Scan(&s.Total, &s.WithCoordinates, &s.WithGeometry, &s.Active)
	if err != nil {
		return nil, err
	}

	q, _ := r.rowSelect(entity)
	rows, err := r.db.Pool.Query(ctx, q+` ORDER BY id LIMIT $1`, sample)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		lr, err := scanLocatable(rows)
		if err != nil {
			return nil, err
		}
		s.Sample = append(s.Sample, lr)
	}
	return &s, rows.Err()
}

// PostGISVersion returns the installed PostGIS version, or "" when the
// extension is missing.
func (r *MapRepo) PostGISVersion(ctx context.Context) (string, error) {
	var v string
	err := r.db.Pool.QueryRow(ctx, `SELECT extversion FROM pg_extension WHERE extname = 'postgis'`).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// EnsurePostGIS installs the extension when it is missing and returns its version.
func (r *MapRepo) EnsurePostGIS(ctx context.Context) (string, error) {
	if _, err := r.db.Pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS postgis`); err != nil {
		return "", fmt.Errorf("create extension: %w", err)
	}
	return r.PostGISVersion(ctx)
}
