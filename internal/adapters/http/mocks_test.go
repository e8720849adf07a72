package http_test

import (
	"context"
	"sort"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// ---- Mock repositories ----

type mockGeometryRepo struct {
	setPointFn func(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error)
}

func (m *mockGeometryRepo) SetPoint(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error) {
	if m.setPointFn != nil {
		return m.setPointFn(ctx, id, lat, lon)
	}
	return &domain.Geometry{
		Kind: domain.GeometryPoint, Lat: lat, Lon: lon, SRID: 4326,
		Text: "POINT(" + domain.FormatOrdinate(lon) + " " + domain.FormatOrdinate(lat) + ")",
	}, nil
}
// inserted mirrors what PostGIS returns for a point written by an INSERT.
func inserted(loc *domain.Location) {
	if loc.Shape != nil && loc.Shape.Text == "" {
		g := *loc.Shape
		g.Text = "POINT(" + domain.FormatOrdinate(g.Lon) + " " + domain.FormatOrdinate(g.Lat) + ")"
		loc.Shape = &g
	}
}

func (m *mockGeometryRepo) SaveScalars(ctx context.Context, id int64, lat, lon *float64) error {
	return nil
}
func (m *mockGeometryRepo) ClearPoint(ctx context.Context, id int64) error { return nil }
func (m *mockGeometryRepo) SaveDerived(ctx context.Context, id int64, display, wkt string) error {
	return nil
}

type mockCustomerRepo struct {
	rows     map[int64]*domain.CustomerMap
	createFn func(ctx context.Context, c *domain.CustomerMap) error
}

func newCustomerRepo(rows ...domain.CustomerMap) *mockCustomerRepo {
	m := &mockCustomerRepo{rows: map[int64]*domain.CustomerMap{}}
	for i := range rows {
		m.rows[rows[i].ID] = &rows[i]
	}
	return m
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *domain.CustomerMap) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = int64(len(m.rows) + 1)
	inserted(&c.Location)
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}
func (m *mockCustomerRepo) Update(ctx context.Context, c *domain.CustomerMap) error {
	if _, ok := m.rows[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}
func (m *mockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.CustomerMap, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}
func (m *mockCustomerRepo) List(ctx context.Context, f domain.CustomerFilter) ([]domain.CustomerMap, int, error) {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []domain.CustomerMap
	for i, id := range ids {
		if i >= f.Offset && len(out) < f.Limit {
			out = append(out, *m.rows[id])
		}
	}
	return out, len(ids), nil
}

type mockOrderRepo struct {
	rows map[int64]*domain.InstallmentOrder
}

func newOrderRepo(rows ...domain.InstallmentOrder) *mockOrderRepo {
	m := &mockOrderRepo{rows: map[int64]*domain.InstallmentOrder{}}
	for i := range rows {
		m.rows[rows[i].ID] = &rows[i]
	}
	return m
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.InstallmentOrder) error {
	o.ID = int64(len(m.rows) + 1)
	inserted(&o.Location)
	cp := *o
	m.rows[o.ID] = &cp
	return nil
}
func (m *mockOrderRepo) Update(ctx context.Context, o *domain.InstallmentOrder, replaceLines bool) error {
	cp := *o
	m.rows[o.ID] = &cp
	return nil
}
func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.InstallmentOrder, error) {
	o, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}
func (m *mockOrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.InstallmentOrder, int, error) {
	var out []domain.InstallmentOrder
	for _, o := range m.rows {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}
func (m *mockOrderRepo) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	m.rows[id].Status = status
	return nil
}

type mockProductRepo struct {
	products []domain.Product
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return m.products, nil
}

type mockPurchaseRepo struct {
	created []domain.PurchaseOrder
}

func (m *mockPurchaseRepo) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	po.ID = int64(len(m.created) + 1)
	po.Name = "P00001"
	m.created = append(m.created, *po)
	return nil
}
func (m *mockPurchaseRepo) Delete(ctx context.Context, id int64) error { return nil }
func (m *mockPurchaseRepo) ListByOrigin(ctx context.Context, origin string) ([]domain.PurchaseOrder, error) {
	var out []domain.PurchaseOrder
	for _, po := range m.created {
		if po.Origin == origin {
			out = append(out, po)
		}
	}
	return out, nil
}

type mockPickingRepo struct {
	pickings map[int64]*domain.Picking
}

func newPickingRepo(rows ...domain.Picking) *mockPickingRepo {
	m := &mockPickingRepo{pickings: map[int64]*domain.Picking{}}
	for i := range rows {
		m.pickings[rows[i].ID] = &rows[i]
	}
	return m
}

func (m *mockPickingRepo) GetByID(ctx context.Context, id int64) (*domain.Picking, error) {
	p, ok := m.pickings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
func (m *mockPickingRepo) List(ctx context.Context, f domain.PickingFilter) ([]domain.Picking, int, error) {
	var out []domain.Picking
	for _, p := range m.pickings {
		out = append(out, *p)
	}
	return out, len(out), nil
}
func (m *mockPickingRepo) SetState(ctx context.Context, id int64, from, to domain.PickingState) (bool, error) {
	p := m.pickings[id]
	if p.State != from {
		return false, nil
	}
	p.State = to
	return true, nil
}
func (m *mockPickingRepo) ReplaceDetails(ctx context.Context, pickingID int64, plan domain.DetailPlan) error {
	return nil
}
func (m *mockPickingRepo) DeliveryDetails(ctx context.Context, pickingID int64) ([]domain.DeliveryDetail, error) {
	return nil, nil
}
func (m *mockPickingRepo) ReceiptDetails(ctx context.Context, pickingID int64) ([]domain.ReceiptDetail, error) {
	return nil, nil
}
func (m *mockPickingRepo) CreateReturn(ctx context.Context, ret *domain.Picking, details []domain.ReturnDetail, returned []int64) error {
	return nil
}

type mockChecklistRepo struct {
	byDelivery map[int64]*domain.Checklist
	images     map[int64]*domain.ChecklistImage
}

func newChecklistRepo() *mockChecklistRepo {
	return &mockChecklistRepo{
		byDelivery: map[int64]*domain.Checklist{},
		images:     map[int64]*domain.ChecklistImage{},
	}
}

func (m *mockChecklistRepo) Create(ctx context.Context, cl *domain.Checklist) error {
	if _, ok := m.byDelivery[cl.DeliveryID]; ok {
		return domain.ErrConflict
	}
	cl.ID = int64(len(m.byDelivery) + 1)
	m.byDelivery[cl.DeliveryID] = cl
	return nil
}
func (m *mockChecklistRepo) Update(ctx context.Context, cl *domain.Checklist, replaceImages bool) error {
	m.byDelivery[cl.DeliveryID] = cl
	return nil
}
func (m *mockChecklistRepo) GetByID(ctx context.Context, id int64) (*domain.Checklist, error) {
	for _, cl := range m.byDelivery {
		if cl.ID == id {
			return cl, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *mockChecklistRepo) GetByDelivery(ctx context.Context, deliveryID int64) (*domain.Checklist, error) {
	if cl, ok := m.byDelivery[deliveryID]; ok {
		return cl, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockChecklistRepo) List(ctx context.Context, offset, limit int) ([]domain.Checklist, int, error) {
	return nil, 0, nil
}
func (m *mockChecklistRepo) GetImage(ctx context.Context, id int64) (*domain.ChecklistImage, error) {
	if img, ok := m.images[id]; ok {
		return img, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockChecklistRepo) ProductTemplates(ctx context.Context, productID int64) ([]domain.ChecklistProduct, error) {
	return nil, nil
}
func (m *mockChecklistRepo) EnsureImages(ctx context.Context, checklistID, productID int64, templates []domain.ChecklistProduct) (int, error) {
	return 0, nil
}
func (m *mockChecklistRepo) GetLine(ctx context.Context, lineID int64) (*domain.ChecklistLine, error) {
	return nil, domain.ErrNotFound
}

type mockMapRepo struct {
	rows []domain.LocatableRow
}

func (m *mockMapRepo) ActiveLocations(ctx context.Context, entity domain.EntityKind) ([]domain.LocatableRow, error) {
	return m.rows, nil
}
func (m *mockMapRepo) Stats(ctx context.Context, entity domain.EntityKind, sample int) (*domain.MapStats, error) {
	return &domain.MapStats{Total: len(m.rows)}, nil
}
func (m *mockMapRepo) PostGISVersion(ctx context.Context) (string, error) { return "3.4", nil }

type fakeStarter struct {
	started []int64
}

func (f *fakeStarter) StartPurchase(ctx context.Context, orderID int64, actor string) (string, error) {
	f.started = append(f.started, orderID)
	return "run-1", nil
}
