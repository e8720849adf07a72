package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// PickingRepo implements ports.PickingRepository with pgx.
type PickingRepo struct {
	db *DB
}

// NewPickingRepo creates a new PickingRepo.
func NewPickingRepo(db *DB) *PickingRepo {
	return &PickingRepo{db: db}
}

var pickingSelect = `
	SELECT p.id, p.name, p.picking_type, p.state,
	       COALESCE(p.street, ''), COALESCE(p.street2, ''), COALESCE(p.city, ''),
	       COALESCE(p.state_name, ''), COALESCE(p.zip, ''), COALESCE(p.country, ''),
	       p.destination_latitude, p.destination_longitude, COALESCE(p.origin, ''),
	       p.partner_id, p.user_id, p.warehouse_id, p.purchase_id,
	       p.location_id, p.location_dest_id, p.scheduled_date,
	       ` + locationColumns("p.", "delivered_latitude", "delivered_longitude") + `,
	       p.active, p.created_at
	FROM stock_pickings p`

func scanPicking(row pgx.Row) (*domain.Picking, error) {
	var p domain.Picking
	var ls locationScan
	dest := []any{&p.ID, &p.Name, &p.Type, &p.State,
		&p.Street, &p.Street2, &p.City, &p.StateName, &p.Zip, &p.Country,
		&p.DestinationLatitude, &p.DestinationLongitude, &p.Origin,
		&p.PartnerID, &p.UserID, &p.WarehouseID, &p.PurchaseID,
		&p.LocationID, &p.LocationDestID, &p.ScheduledDate}
	dest = append(dest, ls.dest(&p.Location)...)
	dest = append(dest, &p.Active, &p.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	ls.finish(&p.Location)
	return &p, nil
}

// GetByID returns a picking with its moves.
func (r *PickingRepo) GetByID(ctx context.Context, id int64) (*domain.Picking, error) {
	p, err := scanPicking(r.db.Pool.QueryRow(ctx, pickingSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "picking", id)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT m.id, m.picking_id, m.product_id, pr.name, COALESCE(pr.default_code, ''),
		       m.demand, m.quantity, m.uom_id
		FROM stock_moves m JOIN products pr ON pr.id = m.product_id
		WHERE m.picking_id = $1
		ORDER BY m.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.StockMove
		if err := rows.Scan(&m.ID, &m.PickingID, &m.ProductID, &m.ProductName, &m.DefaultCode,
			&m.Demand, &m.Quantity, &m.UomID); err != nil {
			return nil, err
		}
		p.Moves = append(p.Moves, m)
	}
	return p, rows.Err()
}

// List returns a page of pickings without moves.
func (r *PickingRepo) List(ctx context.Context, f domain.PickingFilter) ([]domain.Picking, int, error) {
	clause := ` WHERE p.active AND ($1 = '' OR p.picking_type = $1) AND ($2 = '' OR p.state = $2)`

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM stock_pickings p`+clause,
		string(f.Type), string(f.State)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, pickingSelect+clause+` ORDER BY p.scheduled_date NULLS LAST, p.id LIMIT $3 OFFSET $4`,
		string(f.Type), string(f.State), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Picking
	for rows.Next() {
		p, err := scanPicking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// SetState moves a picking from one state to another; it reports false when
// the picking was not in the expected state.
func (r *PickingRepo) SetState(ctx context.Context, id int64, from, to domain.PickingState) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE stock_pickings SET state = $3 WHERE id = $1 AND state = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReplaceDetails applies plan inside one transaction.
func (r *PickingRepo) ReplaceDetails(ctx context.Context, pickingID int64, plan domain.DetailPlan) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		if plan.ReplaceReceipts {
			batch.Queue(`DELETE FROM receipt_details WHERE receipt_id = $1`, pickingID)
			for _, d := range plan.Receipts {
				batch.Queue(`
					INSERT INTO receipt_details (receipt_id, code_product, product_id, purchase_id, warehouse_id)
					VALUES ($1, $2, $3, $4, $5)
				`, pickingID, d.CodeProduct, d.ProductID, d.PurchaseID, d.WarehouseID)
			}
		}
		if plan.ReplaceDeliveries {
			batch.Queue(`DELETE FROM delivery_details WHERE delivery_id = $1`, pickingID)
			for _, d := range plan.Deliveries {
				batch.Queue(`
					INSERT INTO delivery_details (delivery_id, code_product, product_id, warehouse_id)
					VALUES ($1, $2, $3, $4)
				`, pickingID, d.CodeProduct, d.ProductID, d.WarehouseID)
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// DeliveryDetails returns the delivery lines of an outgoing picking.
func (r *PickingRepo) DeliveryDetails(ctx context.Context, pickingID int64) ([]domain.DeliveryDetail, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, delivery_id, receipt_detail_id, code_product, product_id, warehouse_id, is_returned, return_id
		FROM delivery_details WHERE delivery_id = $1 ORDER BY id
	`, pickingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DeliveryDetail
	for rows.Next() {
		var d domain.DeliveryDetail
		if err := rows.Scan(&d.ID, &d.DeliveryID, &d.ReceiptDetailID, &d.CodeProduct, &d.ProductID,
			&d.WarehouseID, &d.IsReturned, &d.ReturnID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ReceiptDetails returns the receipt lines of an incoming picking.
func (r *PickingRepo) ReceiptDetails(ctx context.Context, pickingID int64) ([]domain.ReceiptDetail, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, receipt_id, code_product, product_id, purchase_id, warehouse_id, delivery_id
		FROM receipt_details WHERE receipt_id = $1 ORDER BY id
	`, pickingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReceiptDetail
	for rows.Next() {
		var d domain.ReceiptDetail
		if err := rows.Scan(&d.ID, &d.ReceiptID, &d.CodeProduct, &d.ProductID, &d.PurchaseID,
			&d.WarehouseID, &d.DeliveryID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateReturn stores the return picking, its moves and return details, and
// marks the delivery details in returned as returned, in one transaction.
func (r *PickingRepo) CreateReturn(ctx context.Context, ret *domain.Picking, details []domain.ReturnDetail, returned []int64) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO stock_pickings
			    (name, picking_type, state, origin, partner_id, warehouse_id, location_id, location_dest_id, active)
			VALUES ('WH/RET/' || lpad(nextval('stock_return_seq')::text, 5, '0'), $1, $2, $3, $4, $5, $6, $7, true)
			RETURNING id, name, created_at
		`, ret.Type, ret.State, ret.Origin, ret.PartnerID, ret.WarehouseID,
			ret.LocationID, ret.LocationDestID).Scan(&ret.ID, &ret.Name, &ret.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert return picking: %w", err)
		}

		batch := &pgx.Batch{}
		for _, m := range ret.Moves {
			batch.Queue(`
				INSERT INTO stock_moves (picking_id, product_id, demand, quantity, uom_id)
				VALUES ($1, $2, $3, $4, $5)
			`, ret.ID, m.ProductID, m.Demand, m.Quantity, m.UomID)
		}
		for _, d := range details {
			batch.Queue(`
				INSERT INTO return_details (return_id, original_delivery_id, receipt_detail_id, product_id, warehouse_id)
				VALUES ($1, $2, $3, $4, $5)
			`, ret.ID, d.OriginalDeliveryID, d.ReceiptDetailID, d.ProductID, d.WarehouseID)
		}
		// the serial codes go back to stock
		batch.Queue(`
			UPDATE receipt_details SET delivery_id = NULL
			WHERE id IN (SELECT receipt_detail_id FROM delivery_details WHERE id = ANY($1))
		`, returned)
		batch.Queue(`UPDATE delivery_details SET is_returned = true, return_id = $2 WHERE id = ANY($1)`, returned, ret.ID)
		return tx.SendBatch(ctx, batch).Close()
	})
}
