package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// ChecklistRepo implements ports.ChecklistRepository with pgx.
type ChecklistRepo struct {
	db *DB
}

// NewChecklistRepo creates a new ChecklistRepo.
func NewChecklistRepo(db *DB) *ChecklistRepo {
	return &ChecklistRepo{db: db}
}

const checklistSelect = `
	SELECT c.id, c.delivery_id, p.name, c.user_id, c.officer_id, COALESCE(u.name, ''),
	       c.latitude, c.longitude, COALESCE(c.information, ''), c.created_at
	FROM checklists c
	JOIN stock_pickings p ON p.id = c.delivery_id
	LEFT JOIN partners u ON u.id = c.officer_id`

func scanChecklist(row pgx.Row) (*domain.Checklist, error) {
	var c domain.Checklist
	err := row.Scan(&c.ID, &c.DeliveryID, &c.DeliveryName, &c.UserID, &c.OfficerID, &c.OfficerName,
		&c.Latitude, &c.Longitude, &c.Information, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a checklist with its product lines. A second checklist for
// the same delivery fails with domain.ErrConflict.
func (r *ChecklistRepo) Create(ctx context.Context, cl *domain.Checklist) error {
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO checklists (delivery_id, user_id, officer_id, latitude, longitude, information)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`, cl.DeliveryID, cl.UserID, cl.OfficerID, cl.Latitude, cl.Longitude, cl.Information).Scan(&cl.ID, &cl.CreatedAt)
		if err != nil {
			return err
		}
		for i := range cl.ProductLines {
			l := &cl.ProductLines[i]
			l.ChecklistID = cl.ID
			if err := tx.QueryRow(ctx, `
				INSERT INTO checklist_lines (checklist_id, product_id, demand, quantity)
				VALUES ($1, $2, $3, $4) RETURNING id
			`, cl.ID, l.ProductID, l.Demand, l.Quantity).Scan(&l.ID); err != nil {
				return fmt.Errorf("insert line: %w", err)
			}
		}
		return insertImages(ctx, tx, cl.ID, cl.Images)
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("checklist for delivery %d: %w", cl.DeliveryID, domain.ErrConflict)
	}
	return err
}

func insertImages(ctx context.Context, tx pgx.Tx, checklistID int64, images []domain.ChecklistImage) error {
	if len(images) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, img := range images {
		batch.Queue(`
			INSERT INTO checklist_images
			    (checklist_id, checklist_product_id, product_id, image, image1, image2, image3, information)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, checklistID, img.ChecklistProductID, img.ProductID, img.Image, img.Image1, img.Image2, img.Image3, img.Information)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// Update writes the checklist header and optionally replaces its images.
func (r *ChecklistRepo) Update(ctx context.Context, cl *domain.Checklist, replaceImages bool) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE checklists SET officer_id = $2, latitude = $3, longitude = $4, information = $5
			WHERE id = $1
		`, cl.ID, cl.OfficerID, cl.Latitude, cl.Longitude, cl.Information)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("checklist %d: %w", cl.ID, domain.ErrNotFound)
		}
		if !replaceImages {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM checklist_images WHERE checklist_id = $1`, cl.ID); err != nil {
			return err
		}
		return insertImages(ctx, tx, cl.ID, cl.Images)
	})
}

// GetByID returns a checklist with lines and images.
func (r *ChecklistRepo) GetByID(ctx context.Context, id int64) (*domain.Checklist, error) {
	cl, err := scanChecklist(r.db.Pool.QueryRow(ctx, checklistSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "checklist", id)
	}
	if err := r.loadChildren(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// GetByDelivery returns the checklist of a delivery.
func (r *ChecklistRepo) GetByDelivery(ctx context.Context, deliveryID int64) (*domain.Checklist, error) {
	cl, err := scanChecklist(r.db.Pool.QueryRow(ctx, checklistSelect+` WHERE c.delivery_id = $1`, deliveryID))
	if err != nil {
		return nil, notFound(err, "checklist for delivery", deliveryID)
	}
	if err := r.loadChildren(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

func (r *ChecklistRepo) loadChildren(ctx context.Context, cl *domain.Checklist) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT l.id, l.checklist_id, l.product_id, p.name, l.demand, l.quantity
		FROM checklist_lines l JOIN products p ON p.id = l.product_id
		WHERE l.checklist_id = $1 ORDER BY l.id
	`, cl.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var l domain.ChecklistLine
		if err := rows.Scan(&l.ID, &l.ChecklistID, &l.ProductID, &l.ProductName, &l.Demand, &l.Quantity); err != nil {
			rows.Close()
			return err
		}
		cl.ProductLines = append(cl.ProductLines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT i.id, i.checklist_id, i.checklist_product_id, i.product_id, COALESCE(i.information, ''),
		       t.id, t.product_id, t.title, t.sequence
		FROM checklist_images i
		LEFT JOIN product_checklists t ON t.id = i.checklist_product_id
		WHERE i.checklist_id = $1 ORDER BY t.sequence NULLS LAST, i.id
	`, cl.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var img domain.ChecklistImage
		var tID, tProduct *int64
		var tTitle *string
		var tSeq *int
		if err := rows.Scan(&img.ID, &img.ChecklistID, &img.ChecklistProductID, &img.ProductID, &img.Information,
			&tID, &tProduct, &tTitle, &tSeq); err != nil {
			rows.Close()
			return err
		}
		if tID != nil {
			img.Template = &domain.ChecklistProduct{ID: *tID, ProductID: *tProduct, Title: *tTitle, Sequence: *tSeq}
		}
		cl.Images = append(cl.Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	return r.loadCriteria(ctx, cl)
}

func (r *ChecklistRepo) loadCriteria(ctx context.Context, cl *domain.Checklist) error {
	var ids []int64
	byTemplate := map[int64][]int{}
	for i, img := range cl.Images {
		if img.Template != nil {
			ids = append(ids, img.Template.ID)
			byTemplate[img.Template.ID] = append(byTemplate[img.Template.ID], i)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, checklist_product_id, criteria, COALESCE(information, ''), sequence
		FROM product_checklist_criteria
		WHERE checklist_product_id = ANY($1)
		ORDER BY sequence, id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.ChecklistCriteria
		if err := rows.Scan(&c.ID, &c.ChecklistProductID, &c.Criteria, &c.Information, &c.Sequence); err != nil {
			return err
		}
		for _, i := range byTemplate[c.ChecklistProductID] {
			cl.Images[i].Criteria = append(cl.Images[i].Criteria, c)
		}
	}
	return rows.Err()
}

// List returns a page of checklists without children.
func (r *ChecklistRepo) List(ctx context.Context, offset, limit int) ([]domain.Checklist, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM checklists`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Pool.Query(ctx, checklistSelect+` ORDER BY c.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Checklist
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

// GetImage returns one image row including its binary fields.
func (r *ChecklistRepo) GetImage(ctx context.Context, id int64) (*domain.ChecklistImage, error) {
	var img domain.ChecklistImage
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, checklist_id, checklist_product_id, product_id, image, image1, image2, image3, COALESCE(information, '')
		FROM checklist_images WHERE id = $1
	`, id).Scan(&img.ID, &img.ChecklistID, &img.ChecklistProductID, &img.ProductID,
		&img.Image, &img.Image1, &img.Image2, &img.Image3, &img.Information)
	if err != nil {
		return nil, notFound(err, "checklist image", id)
	}
	return &img, nil
}

// ProductTemplates returns the inspection templates of a product by sequence.
func (r *ChecklistRepo) ProductTemplates(ctx context.Context, productID int64) ([]domain.ChecklistProduct, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, product_id, title, sequence FROM product_checklists
		WHERE product_id = $1 ORDER BY sequence, id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChecklistProduct
	for rows.Next() {
		var t domain.ChecklistProduct
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Title, &t.Sequence); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// EnsureImages inserts the image rows missing for templates.
func (r *ChecklistRepo) EnsureImages(ctx context.Context, checklistID, productID int64, templates []domain.ChecklistProduct) (int, error) {
	created := 0
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		for _, t := range templates {
			tag, err := tx.Exec(ctx, `
				INSERT INTO checklist_images (checklist_id, checklist_product_id, product_id)
				SELECT $1, $2, $3
				WHERE NOT EXISTS (
				    SELECT 1 FROM checklist_images WHERE checklist_id = $1 AND checklist_product_id = $2
				)
			`, checklistID, t.ID, productID)
			if err != nil {
				return err
			}
			created += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetLine returns one checklist product line.
func (r *ChecklistRepo) GetLine(ctx context.Context, lineID int64) (*domain.ChecklistLine, error) {
	var l domain.ChecklistLine
	err := r.db.Pool.QueryRow(ctx, `
		SELECT l.id, l.checklist_id, l.product_id, p.name, l.demand, l.quantity
		FROM checklist_lines l JOIN products p ON p.id = l.product_id
		WHERE l.id = $1
	`, lineID).Scan(&l.ID, &l.ChecklistID, &l.ProductID, &l.ProductName, &l.Demand, &l.Quantity)
	if err != nil {
		return nil, notFound(err, "checklist line", lineID)
	}
	return &l, nil
}
