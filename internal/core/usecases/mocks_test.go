package usecases_test

import (
	"context"
	"errors"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// --- Mock GeometryRepository ---

type mockGeometryRepo struct {
	setPointFn func(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error)
	setCalls   int
	derived    map[int64][2]string
}

func (m *mockGeometryRepo) SetPoint(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error) {
	m.setCalls++
	if m.setPointFn != nil {
		return m.setPointFn(ctx, id, lat, lon)
	}
	return &domain.Geometry{Kind: domain.GeometryPoint, Lat: lat, Lon: lon, SRID: 4326}, nil
}

func (m *mockGeometryRepo) SaveScalars(ctx context.Context, id int64, lat, lon *float64) error {
	return nil
}

func (m *mockGeometryRepo) ClearPoint(ctx context.Context, id int64) error { return nil }

func (m *mockGeometryRepo) SaveDerived(ctx context.Context, id int64, display, wkt string) error {
	if m.derived == nil {
		m.derived = map[int64][2]string{}
	}
	m.derived[id] = [2]string{display, wkt}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	locations []*domain.LocationEvent
	statuses  []*domain.OrderStatusEvent
}

func (m *mockPublisher) PublishLocationEvent(ctx context.Context, e *domain.LocationEvent) error {
	m.locations = append(m.locations, e)
	return nil
}

func (m *mockPublisher) PublishOrderStatus(ctx context.Context, e *domain.OrderStatusEvent) error {
	m.statuses = append(m.statuses, e)
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

// --- Mock CustomerMapRepository ---

type mockCustomerRepo struct {
	rows     map[int64]*domain.CustomerMap
	nextID   int64
	listFn   func(ctx context.Context, f domain.CustomerFilter) ([]domain.CustomerMap, int, error)
	updateFn func(ctx context.Context, c *domain.CustomerMap) error
	createFn func(ctx context.Context, c *domain.CustomerMap) error
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{rows: map[int64]*domain.CustomerMap{}}
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *domain.CustomerMap) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *mockCustomerRepo) Update(ctx context.Context, c *domain.CustomerMap) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, c)
	}
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
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, 0, nil
}

// --- Mock InstallmentOrderRepository ---

type mockOrderRepo struct {
	rows        map[int64]*domain.InstallmentOrder
	setStatusFn func(ctx context.Context, id int64, status domain.OrderStatus) error
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.InstallmentOrder) error {
	o.ID = int64(len(m.rows) + 1)
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
	return nil, 0, nil
}

func (m *mockOrderRepo) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	m.rows[id].Status = status
	return nil
}

// --- Mock ProductRepository ---

type mockProductRepo struct {
	products []domain.Product
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return m.products, nil
}

// --- Mock PurchaseOrderRepository ---

type mockPurchaseRepo struct {
	created []*domain.PurchaseOrder
	deleted []int64
}

func (m *mockPurchaseRepo) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	po.ID = int64(len(m.created) + 100)
	po.Name = "P00001"
	m.created = append(m.created, po)
	return nil
}

func (m *mockPurchaseRepo) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockPurchaseRepo) ListByOrigin(ctx context.Context, origin string) ([]domain.PurchaseOrder, error) {
	var out []domain.PurchaseOrder
	for _, po := range m.created {
		if po.Origin == origin {
			out = append(out, *po)
		}
	}
	return out, nil
}

// --- Mock PickingRepository ---

type mockPickingRepo struct {
	pickings   map[int64]*domain.Picking
	deliveries map[int64][]domain.DeliveryDetail
	setStateFn func(ctx context.Context, id int64, from, to domain.PickingState) (bool, error)

	replaced    *domain.DetailPlan
	returnPick  *domain.Picking
	returnDets  []domain.ReturnDetail
	returnedIDs []int64
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
		if f.Type == "" || p.Type == f.Type {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (m *mockPickingRepo) SetState(ctx context.Context, id int64, from, to domain.PickingState) (bool, error) {
	if m.setStateFn != nil {
		return m.setStateFn(ctx, id, from, to)
	}
	p := m.pickings[id]
	if p.State != from {
		return false, nil
	}
	p.State = to
	return true, nil
}

func (m *mockPickingRepo) ReplaceDetails(ctx context.Context, pickingID int64, plan domain.DetailPlan) error {
	m.replaced = &plan
	return nil
}

func (m *mockPickingRepo) DeliveryDetails(ctx context.Context, pickingID int64) ([]domain.DeliveryDetail, error) {
	return m.deliveries[pickingID], nil
}

func (m *mockPickingRepo) ReceiptDetails(ctx context.Context, pickingID int64) ([]domain.ReceiptDetail, error) {
	return nil, nil
}

func (m *mockPickingRepo) CreateReturn(ctx context.Context, ret *domain.Picking, details []domain.ReturnDetail, returned []int64) error {
	ret.ID = 99
	ret.Name = "WH/RET/00001"
	m.returnPick = ret
	m.returnDets = details
	m.returnedIDs = returned
	return nil
}

// --- Mock ChecklistRepository ---

type mockChecklistRepo struct {
	byDelivery map[int64]*domain.Checklist
	lines      map[int64]*domain.ChecklistLine
	templates  map[int64][]domain.ChecklistProduct
	images     map[int64]*domain.ChecklistImage
	ensured    map[[2]int64]bool
	createErr  error
	created    []*domain.Checklist
}

func newMockChecklistRepo() *mockChecklistRepo {
	return &mockChecklistRepo{
		byDelivery: map[int64]*domain.Checklist{},
		lines:      map[int64]*domain.ChecklistLine{},
		templates:  map[int64][]domain.ChecklistProduct{},
		images:     map[int64]*domain.ChecklistImage{},
		ensured:    map[[2]int64]bool{},
	}
}

func (m *mockChecklistRepo) Create(ctx context.Context, cl *domain.Checklist) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byDelivery[cl.DeliveryID]; ok {
		return domain.ErrConflict
	}
	cl.ID = int64(len(m.created) + 1)
	m.created = append(m.created, cl)
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
			cp := *cl
			return &cp, nil
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
	return m.templates[productID], nil
}

func (m *mockChecklistRepo) EnsureImages(ctx context.Context, checklistID, productID int64, templates []domain.ChecklistProduct) (int, error) {
	n := 0
	for _, t := range templates {
		k := [2]int64{checklistID, t.ID}
		if !m.ensured[k] {
			m.ensured[k] = true
			n++
		}
	}
	return n, nil
}

func (m *mockChecklistRepo) GetLine(ctx context.Context, lineID int64) (*domain.ChecklistLine, error) {
	if l, ok := m.lines[lineID]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

// --- Mock MapRepository ---

type mockMapRepo struct {
	rows    []domain.LocatableRow
	calls   int
	version string
}

func (m *mockMapRepo) ActiveLocations(ctx context.Context, entity domain.EntityKind) ([]domain.LocatableRow, error) {
	m.calls++
	return m.rows, nil
}

func (m *mockMapRepo) Stats(ctx context.Context, entity domain.EntityKind, sample int) (*domain.MapStats, error) {
	s := &domain.MapStats{Total: len(m.rows)}
	for i, r := range m.rows {
		if i == sample {
			break
		}
		s.Sample = append(s.Sample, r)
	}
	return s, nil
}

func (m *mockMapRepo) PostGISVersion(ctx context.Context) (string, error) {
	return m.version, nil
}
