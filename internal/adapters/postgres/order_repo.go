package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// InstallmentOrderRepo implements ports.InstallmentOrderRepository with pgx.
type InstallmentOrderRepo struct {
	db *DB
}

// NewInstallmentOrderRepo creates a new InstallmentOrderRepo.
func NewInstallmentOrderRepo(db *DB) *InstallmentOrderRepo {
	return &InstallmentOrderRepo{db: db}
}

var orderSelect = `
	SELECT o.id, o.title, COALESCE(o.description, ''),
	       COALESCE(o.street, ''), COALESCE(o.street2, ''), COALESCE(o.city, ''),
	       COALESCE(o.state, ''), COALESCE(o.zip, ''), COALESCE(o.country, ''),
	       COALESCE(o.address, ''), o.contact_id, o.status,
	       ` + locationColumns("o.", "latitude", "longitude") + `,
	       o.active, o.created_at, o.updated_at,
	       (SELECT count(*) FROM purchase_orders po WHERE po.origin = o.title)
	FROM installment_orders o`

func scanOrder(row pgx.Row) (*domain.InstallmentOrder, error) {
	var o domain.InstallmentOrder
	var ls locationScan
	dest := []any{&o.ID, &o.Title, &o.Description,
		&o.Street, &o.Street2, &o.City, &o.State, &o.Zip, &o.Country,
		&o.Address, &o.ContactID, &o.Status}
	dest = append(dest, ls.dest(&o.Location)...)
	dest = append(dest, &o.Active, &o.CreatedAt, &o.UpdatedAt, &o.PurchaseOrderCount)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	ls.finish(&o.Location)
	return &o, nil
}

// Create inserts the order and its product lines in one transaction.
func (r *InstallmentOrderRepo) Create(ctx context.Context, o *domain.InstallmentOrder) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		cols, vals, locArgs := locationInsert("latitude", "longitude", 13, &o.Location)
		args := append([]any{o.Title, o.Description, o.Street, o.Street2, o.City, o.State, o.Zip, o.Country,
			o.Address, o.ContactID, o.Status, o.Active}, locArgs...)

		var ls locationScan
		err := tx.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO installment_orders
			    (title, description, street, street2, city, state, zip, country, address, contact_id, status, active, %s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, %s)
			RETURNING id, created_at, updated_at, %s
		`, cols, vals, locationReturning), args...).
			Scan(append([]any{&o.ID, &o.CreatedAt, &o.UpdatedAt}, ls.inserted(&o.Location)...)...)
		if err != nil {
			return err
		}
		ls.finish(&o.Location)
		return insertOrderLines(ctx, tx, o)
	})
}

// Update writes the order fields and, when asked, replaces the product lines.
func (r *InstallmentOrderRepo) Update(ctx context.Context, o *domain.InstallmentOrder, replaceLines bool) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE installment_orders
			SET title = $2, description = $3, street = $4, street2 = $5, city = $6, state = $7,
			    zip = $8, country = $9, address = $10, contact_id = $11, active = $12, updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`, o.ID, o.Title, o.Description, o.Street, o.Street2, o.City, o.State, o.Zip, o.Country,
			o.Address, o.ContactID, o.Active).Scan(&o.UpdatedAt)
		if err != nil {
			return notFound(err, "installment order", o.ID)
		}
		if !replaceLines {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM installment_order_lines WHERE order_id = $1`, o.ID); err != nil {
			return err
		}
		return insertOrderLines(ctx, tx, o)
	})
}

func insertOrderLines(ctx context.Context, tx pgx.Tx, o *domain.InstallmentOrder) error {
	for i := range o.ProductLines {
		l := &o.ProductLines[i]
		l.OrderID = o.ID
		if l.Quantity == 0 {
			l.Quantity = 1
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO installment_order_lines (order_id, product_id, quantity, description)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, o.ID, l.ProductID, l.Quantity, l.Description).Scan(&l.ID)
		if err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
	}
	return nil
}

// GetByID returns an order with its product lines.
func (r *InstallmentOrderRepo) GetByID(ctx context.Context, id int64) (*domain.InstallmentOrder, error) {
	o, err := scanOrder(r.db.Pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "installment order", id)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT l.id, l.order_id, l.product_id, p.name, l.quantity, COALESCE(l.description, '')
		FROM installment_order_lines l JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.OrderProductLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Description); err != nil {
			return nil, err
		}
		o.ProductLines = append(o.ProductLines, l)
	}
	return o, rows.Err()
}

// List returns a page of orders without their lines.
func (r *InstallmentOrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.InstallmentOrder, int, error) {
	clause := ` WHERE ($1 = '' OR o.status = $1) AND (NOT $2 OR o.active)`

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM installment_orders o`+clause,
		string(f.Status), f.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, orderSelect+clause+` ORDER BY o.created_at DESC, o.id DESC LIMIT $3 OFFSET $4`,
		string(f.Status), f.ActiveOnly, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.InstallmentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

// SetStatus writes the status column.
func (r *InstallmentOrderRepo) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE installment_orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("installment order %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ProductRepo implements ports.ProductRepository with pgx.
type ProductRepo struct {
	db *DB
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// GetByIDs returns the products with the given ids.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(default_code, ''), standard_price, uom_id
		FROM products WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.DefaultCode, &p.StandardPrice, &p.UomID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PurchaseOrderRepo implements ports.PurchaseOrderRepository with pgx.
type PurchaseOrderRepo struct {
	db *DB
}

// NewPurchaseOrderRepo creates a new PurchaseOrderRepo.
func NewPurchaseOrderRepo(db *DB) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{db: db}
}

// Create inserts the purchase order and its lines; the name is assigned from
// the purchase_order_seq sequence.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO purchase_orders (name, partner_id, origin)
			VALUES ('P' || lpad(nextval('purchase_order_seq')::text, 5, '0'), $1, $2)
			RETURNING id, name, created_at
		`, po.PartnerID, po.Origin).Scan(&po.ID, &po.Name, &po.CreatedAt)
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, l := range po.Lines {
			batch.Queue(`
				INSERT INTO purchase_order_lines (purchase_order_id, product_id, name, quantity, uom_id, price_unit)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, po.ID, l.ProductID, l.Name, l.Quantity, l.UomID, l.PriceUnit)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// Delete removes a purchase order and its lines.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	return err
}

// ListByOrigin returns the purchase orders created from one installment order.
func (r *PurchaseOrderRepo) ListByOrigin(ctx context.Context, origin string) ([]domain.PurchaseOrder, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT po.id, po.name, po.partner_id, po.origin, po.created_at,
		       l.product_id, l.name, l.quantity, l.uom_id, l.price_unit
		FROM purchase_orders po
		LEFT JOIN purchase_order_lines l ON l.purchase_order_id = po.id
		WHERE po.origin = $1
		ORDER BY po.id, l.id
	`, origin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PurchaseOrder
	for rows.Next() {
		var po domain.PurchaseOrder
		var productID, uomID *int64
		var name *string
		var qty, price *float64
		if err := rows.Scan(&po.ID, &po.Name, &po.PartnerID, &po.Origin, &po.CreatedAt,
			&productID, &name, &qty, &uomID, &price); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].ID != po.ID {
			out = append(out, po)
		}
		if productID != nil {
			last := &out[len(out)-1]
			last.Lines = append(last.Lines, domain.PurchaseOrderLine{
				ProductID: *productID, Name: *name, Quantity: *qty, UomID: *uomID, PriceUnit: *price,
			})
		}
	}
	return out, rows.Err()
}
