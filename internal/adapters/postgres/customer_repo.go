package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// CustomerMapRepo implements ports.CustomerMapRepository with pgx.
type CustomerMapRepo struct {
	db *DB
}

// NewCustomerMapRepo creates a new CustomerMapRepo.
func NewCustomerMapRepo(db *DB) *CustomerMapRepo {
	return &CustomerMapRepo{db: db}
}

var customerSelect = `
	SELECT id, name, COALESCE(description, ''), COALESCE(phone, ''), COALESCE(email, ''),
	       ` + locationColumns("", "latitude", "longitude") + `,
	       active, created_at, updated_at
	FROM customer_maps`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.CustomerMap, error) {
	var c domain.CustomerMap
	var ls locationScan
	dest := append([]any{&c.ID, &c.Name, &c.Description, &c.Phone, &c.Email}, ls.dest(&c.Location)...)
	dest = append(dest, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	ls.finish(&c.Location)
	return &c, nil
}

// Create inserts the non-location fields; the location is written afterwards
// through the geometry repository.
func (r *CustomerMapRepo) Create(ctx context.Context, c *domain.CustomerMap) error {
	cols, vals, locArgs := locationInsert("latitude", "longitude", 6, &c.Location)
	args := append([]any{c.Name, c.Description, c.Phone, c.Email, c.Active}, locArgs...)

	var ls locationScan
	err := r.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO customer_maps (name, description, phone, email, active, %s)
		VALUES ($1, $2, $3, $4, $5, %s)
		RETURNING id, created_at, updated_at, %s
	`, cols, vals, locationReturning), args...).
		Scan(append([]any{&c.ID, &c.CreatedAt, &c.UpdatedAt}, ls.inserted(&c.Location)...)...)
	if err != nil {
		return err
	}
	ls.finish(&c.Location)
	return nil
}

// Update writes the non-location fields.
func (r *CustomerMapRepo) Update(ctx context.Context, c *domain.CustomerMap) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE customer_maps
		SET name = $2, description = $3, phone = $4, email = $5, active = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, c.ID, c.Name, c.Description, c.Phone, c.Email, c.Active).Scan(&c.UpdatedAt)
	return notFound(err, "customer map", c.ID)
}

// GetByID returns one entry.
func (r *CustomerMapRepo) GetByID(ctx context.Context, id int64) (*domain.CustomerMap, error) {
	c, err := scanCustomer(r.db.Pool.QueryRow(ctx, customerSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "customer map", id)
	}
	return c, nil
}

// List returns a page of entries and the total match count.
func (r *CustomerMapRepo) List(ctx context.Context, f domain.CustomerFilter) ([]domain.CustomerMap, int, error) {
	var where []string
	var args []any
	if f.ActiveOnly {
		where = append(where, "active")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR phone ILIKE $%[1]d OR email ILIKE $%[1]d)", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM customer_maps`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf("%s%s ORDER BY name, id LIMIT $%d OFFSET $%d",
		customerSelect, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.CustomerMap
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}
