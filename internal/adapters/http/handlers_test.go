package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/fieldops/internal/adapters/http"
	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/usecases"
)

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func syncer(repo *mockGeometryRepo, entity domain.EntityKind) *geosync.Synchronizer {
	return geosync.New(repo, entity, geosync.PolicyFor(entity))
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	geo := &mockGeometryRepo{}
	d := &handler.Dependencies{
		Customers: usecases.NewCustomerMapService(newCustomerRepo(), syncer(geo, domain.EntityCustomerMap), nil),
		Orders: usecases.NewOrderService(newOrderRepo(), &mockProductRepo{}, &mockPurchaseRepo{},
			syncer(geo, domain.EntityInstallmentOrder), nil),
		Pickings:   usecases.NewPickingService(newPickingRepo(), syncer(geo, domain.EntityDeliveryPicking), nil),
		Checklists: usecases.NewChecklistService(newChecklistRepo(), newPickingRepo()),
		Map:        usecases.NewMapService(&mockMapRepo{}, nil, 0),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func withCustomers(repo *mockCustomerRepo, geo *mockGeometryRepo) func(*handler.Dependencies) {
	return func(d *handler.Dependencies) {
		d.Customers = usecases.NewCustomerMapService(repo, syncer(geo, domain.EntityCustomerMap), nil)
	}
}

func withOrders(repo *mockOrderRepo, products []domain.Product) func(*handler.Dependencies) {
	return func(d *handler.Dependencies) {
		d.Orders = usecases.NewOrderService(repo, &mockProductRepo{products: products}, &mockPurchaseRepo{},
			syncer(&mockGeometryRepo{}, domain.EntityInstallmentOrder), nil)
	}
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers ...string) *fiberResponse {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return &fiberResponse{Status: resp.StatusCode, Header: resp.Header.Get, Body: b}
}

type fiberResponse struct {
	Status int
	Header func(string) string
	Body   []byte
}

func (r *fiberResponse) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode %s: %v", r.Body, err)
	}
}

type apiError struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
	Field  string `json:"field"`
}

// ---- Customer handler tests ----

func TestCreateCustomer_WithLocation(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/customers",
		`{"name":"Toko Maju","phone":"0812","latitude":-6.175392,"longitude":106.827153}`)
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}

	var got struct {
		ID              int64    `json:"id"`
		DisplayName     string   `json:"display_name"`
		Latitude        *float64 `json:"latitude"`
		LocationDisplay string   `json:"location_display"`
		GeoWKT          string   `json:"geo_wkt"`
	}
	resp.decode(t, &got)
	if got.DisplayName != "Toko Maju (0812)" {
		t.Errorf("display_name = %q", got.DisplayName)
	}
	if got.LocationDisplay != "Lat: -6.175392, Lng: 106.827153" {
		t.Errorf("location_display = %q", got.LocationDisplay)
	}
	if got.GeoWKT != "POINT(106.827153 -6.175392)" {
		t.Errorf("geo_wkt = %q", got.GeoWKT)
	}
}

func TestCreateCustomer_ShapeWins(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/customers",
		`{"name":"Gudang","latitude":1,"longitude":2,"shape":{"type":"Point","coordinates":[110.5,-7.25]}}`)
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}
	var got struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	resp.decode(t, &got)
	if got.Latitude == nil || *got.Latitude != -7.25 || *got.Longitude != 110.5 {
		t.Errorf("expected scalars from shape, got %v,%v", got.Latitude, got.Longitude)
	}
}

func TestCreateCustomer_InvalidCoordinate(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/customers", `{"name":"Far away","latitude":95,"longitude":10}`)
	if resp.Status != 422 {
		t.Fatalf("expected 422, got %d", resp.Status)
	}
	var e apiError
	resp.decode(t, &e)
	if e.Code != "invalid_coordinate" {
		t.Errorf("expected invalid_coordinate, got %s", e.Code)
	}
}

func TestCreateCustomer_MissingName(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/customers", `{"phone":"0812"}`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
	var e apiError
	resp.decode(t, &e)
	if e.Code != "validation_error" || e.Field != "name" {
		t.Errorf("unexpected error %+v", e)
	}
}

func TestCreateCustomer_NonPointShape(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/customers",
		`{"name":"Area","shape":{"type":"LineString","coordinates":[[0,0],[1,1]]}}`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

func TestCreateCustomer_InsertFailsLeavesNoRow(t *testing.T) {
	repo := newCustomerRepo()
	repo.createFn = func(context.Context, *domain.CustomerMap) error {
		return errors.New("function st_makepoint does not exist")
	}
	geo := &mockGeometryRepo{}
	app := setupApp(makeDeps(withCustomers(repo, geo)))

	resp := do(t, app, "POST", "/v1/customers", `{"name":"Toko","latitude":-6.1,"longitude":106.8}`)
	if resp.Status != 500 {
		t.Fatalf("expected 500, got %d", resp.Status)
	}
	if strings.Contains(string(resp.Body), "st_makepoint") {
		t.Errorf("store error leaked to client: %s", resp.Body)
	}
	if len(repo.rows) != 0 {
		t.Errorf("orphan rows left behind: %+v", repo.rows)
	}
}

func TestSetCustomerLocation_SetPointFails(t *testing.T) {
	repo := newCustomerRepo(domain.CustomerMap{ID: 7, Name: "Toko", Active: true})
	geo := &mockGeometryRepo{
		setPointFn: func(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error) {
			return nil, errors.New("function st_makepoint does not exist")
		},
	}
	app := setupApp(makeDeps(withCustomers(repo, geo)))

	resp := do(t, app, "POST", "/v1/customers/7/set-location", `{"latitude":-6.1,"longitude":106.8}`)
	if resp.Status != 500 {
		t.Fatalf("expected 500, got %d", resp.Status)
	}
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	resp.decode(t, &e)
	if e.Code != "set_location_failed" {
		t.Errorf("expected set_location_failed, got %s", e.Code)
	}
	if strings.Contains(e.Message, "st_makepoint") {
		t.Errorf("store error leaked to client: %s", e.Message)
	}
}

func TestSetCustomerLocation_RowDeletedMeanwhile(t *testing.T) {
	repo := newCustomerRepo(domain.CustomerMap{ID: 7, Name: "Toko", Active: true})
	geo := &mockGeometryRepo{
		setPointFn: func(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error) {
			return nil, fmt.Errorf("customer_map %d: %w", id, domain.ErrNotFound)
		},
	}
	app := setupApp(makeDeps(withCustomers(repo, geo)))

	resp := do(t, app, "POST", "/v1/customers/7/set-location", `{"latitude":-6.1,"longitude":106.8}`)
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d: %s", resp.Status, resp.Body)
	}
}

func TestSetCustomerLocation_HalfZeroPair(t *testing.T) {
	repo := newCustomerRepo(domain.CustomerMap{ID: 7, Name: "Toko", Active: true})
	app := setupApp(makeDeps(withCustomers(repo, &mockGeometryRepo{})))

	resp := do(t, app, "POST", "/v1/customers/7/set-location", `{"latitude":0,"longitude":5}`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

func TestSetCustomerLocation_NeedsBoth(t *testing.T) {
	repo := newCustomerRepo(domain.CustomerMap{ID: 7, Name: "Toko", Active: true})
	app := setupApp(makeDeps(withCustomers(repo, &mockGeometryRepo{})))

	resp := do(t, app, "POST", "/v1/customers/7/set-location", `{"latitude":-6.2}`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
	var e apiError
	resp.decode(t, &e)
	if e.Field != "location" {
		t.Errorf("expected field location, got %q", e.Field)
	}

	resp = do(t, app, "POST", "/v1/customers/7/set-location", `{"latitude":-6.2,"longitude":106.8}`)
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
}

func TestClearCustomerLocation(t *testing.T) {
	repo := newCustomerRepo(domain.CustomerMap{ID: 3, Name: "Toko", Active: true, Location: domain.Location{
		Latitude: domain.Float(-6.2), Longitude: domain.Float(106.8),
	}})
	app := setupApp(makeDeps(withCustomers(repo, &mockGeometryRepo{})))

	resp := do(t, app, "POST", "/v1/customers/3/clear-location", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var got struct {
		Latitude        *float64 `json:"latitude"`
		LocationDisplay string   `json:"location_display"`
	}
	resp.decode(t, &got)
	if got.Latitude != nil {
		t.Errorf("expected latitude cleared, got %v", *got.Latitude)
	}
	if got.LocationDisplay != "No location set" {
		t.Errorf("location_display = %q", got.LocationDisplay)
	}
}

func TestGetCustomer_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/customers/404", "")
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d", resp.Status)
	}
}

func TestGetCustomer_BadID(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/customers/abc", "")
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

func TestListCustomers_LinkHeader(t *testing.T) {
	rows := make([]domain.CustomerMap, 10)
	for i := range rows {
		rows[i] = domain.CustomerMap{ID: int64(i + 1), Name: fmt.Sprintf("Customer %d", i), Active: true}
	}
	app := setupApp(makeDeps(withCustomers(newCustomerRepo(rows...), &mockGeometryRepo{})))

	resp := do(t, app, "GET", "/v1/customers?offset=0&limit=3", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}

	var result struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			Total int `json:"total"`
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	resp.decode(t, &result)
	if result.Pagination.Total != 10 || len(result.Data) != 3 {
		t.Errorf("expected 3 of 10, got %d of %d", len(result.Data), result.Pagination.Total)
	}

	link := resp.Header("Link")
	for _, rel := range []string{`rel="next"`, `rel="first"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("expected %s in Link header, got %s", rel, link)
		}
	}
}

// ---- Order handler tests ----

func TestCreateOrder_ComposesAddress(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/orders",
		`{"title":"Pasang AC","street":"Jl. Sudirman 1","city":"Jakarta","product_lines":[{"product_id":5}]}`)
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}
	var got domain.InstallmentOrder
	resp.decode(t, &got)
	if got.Status != domain.OrderDraft {
		t.Errorf("status = %s", got.Status)
	}
	if got.Address != "Jl. Sudirman 1, Jakarta" {
		t.Errorf("address = %q", got.Address)
	}
	if len(got.ProductLines) != 1 || got.ProductLines[0].Quantity != 1 {
		t.Errorf("expected one line with default quantity, got %+v", got.ProductLines)
	}
}

func TestOrderTransitions(t *testing.T) {
	repo := newOrderRepo(domain.InstallmentOrder{
		ID: 1, Title: "Pasang AC", Status: domain.OrderDraft, Active: true,
		ProductLines: []domain.OrderProductLine{{ProductID: 5, Quantity: 2}},
	})
	app := setupApp(makeDeps(withOrders(repo, nil)))

	resp := do(t, app, "POST", "/v1/orders/1/approve", "")
	if resp.Status != 409 {
		t.Fatalf("approve from draft: expected 409, got %d", resp.Status)
	}
	var e apiError
	resp.decode(t, &e)
	if e.Code != "invalid_transition" {
		t.Errorf("expected invalid_transition, got %s", e.Code)
	}

	for _, step := range []struct {
		path string
		want domain.OrderStatus
	}{
		{"/v1/orders/1/submit", domain.OrderSubmitted},
		{"/v1/orders/1/reject", domain.OrderDraft},
		{"/v1/orders/1/submit", domain.OrderSubmitted},
		{"/v1/orders/1/approve", domain.OrderApproved},
		{"/v1/orders/1/done", domain.OrderDone},
	} {
		resp := do(t, app, "POST", step.path, "")
		if resp.Status != 200 {
			t.Fatalf("%s: expected 200, got %d: %s", step.path, resp.Status, resp.Body)
		}
		var o domain.InstallmentOrder
		resp.decode(t, &o)
		if o.Status != step.want {
			t.Errorf("%s: status = %s, want %s", step.path, o.Status, step.want)
		}
	}
}

func TestSubmitOrder_NeedsLines(t *testing.T) {
	repo := newOrderRepo(domain.InstallmentOrder{ID: 1, Title: "Empty", Status: domain.OrderDraft})
	app := setupApp(makeDeps(withOrders(repo, nil)))

	resp := do(t, app, "POST", "/v1/orders/1/submit", "")
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
	var e apiError
	resp.decode(t, &e)
	if e.Field != "product_lines" {
		t.Errorf("expected field product_lines, got %q", e.Field)
	}
}

func approvedOrder() domain.InstallmentOrder {
	contact := int64(9)
	return domain.InstallmentOrder{
		ID: 1, Title: "Pasang AC", Status: domain.OrderApproved, ContactID: &contact, Active: true,
		ProductLines: []domain.OrderProductLine{{ProductID: 5, Quantity: 2}},
	}
}

func TestCreatePurchaseOrder_Inline(t *testing.T) {
	repo := newOrderRepo(approvedOrder())
	products := []domain.Product{{ID: 5, Name: "AC 1PK", StandardPrice: 3500000, UomID: 1}}
	app := setupApp(makeDeps(withOrders(repo, products)))

	resp := do(t, app, "POST", "/v1/orders/1/purchase", "")
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}
	var po domain.PurchaseOrder
	resp.decode(t, &po)
	if po.PartnerID != 9 || len(po.Lines) != 1 || po.Lines[0].PriceUnit != 3500000 {
		t.Errorf("unexpected purchase order %+v", po)
	}
	if repo.rows[1].Status != domain.OrderDone {
		t.Errorf("order status = %s, want done", repo.rows[1].Status)
	}
}

func TestCreatePurchaseOrder_Workflow(t *testing.T) {
	repo := newOrderRepo(approvedOrder())
	products := []domain.Product{{ID: 5, Name: "AC 1PK", StandardPrice: 3500000, UomID: 1}}
	starter := &fakeStarter{}
	app := setupApp(makeDeps(withOrders(repo, products), func(d *handler.Dependencies) {
		d.Purchases = starter
	}))

	resp := do(t, app, "POST", "/v1/orders/1/purchase", "")
	if resp.Status != 202 {
		t.Fatalf("expected 202, got %d: %s", resp.Status, resp.Body)
	}
	if len(starter.started) != 1 || starter.started[0] != 1 {
		t.Errorf("expected workflow for order 1, got %v", starter.started)
	}
	if repo.rows[1].Status != domain.OrderApproved {
		t.Errorf("order status changed inline: %s", repo.rows[1].Status)
	}
}

func TestCreatePurchaseOrder_WorkflowRejectsDraft(t *testing.T) {
	o := approvedOrder()
	o.Status = domain.OrderDraft
	starter := &fakeStarter{}
	app := setupApp(makeDeps(withOrders(newOrderRepo(o), nil), func(d *handler.Dependencies) {
		d.Purchases = starter
	}))

	resp := do(t, app, "POST", "/v1/orders/1/purchase", "")
	if resp.Status != 409 {
		t.Fatalf("expected 409, got %d", resp.Status)
	}
	if len(starter.started) != 0 {
		t.Error("workflow should not start for a draft order")
	}
}

// ---- Delivery handler tests ----

func TestSetDeliveredLocation_AtOrigin(t *testing.T) {
	pickings := newPickingRepo(domain.Picking{
		ID: 4, Name: "WH/OUT/00004", Type: domain.PickingOutgoing, State: domain.PickingAssigned, Active: true,
	})
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Pickings = usecases.NewPickingService(pickings, syncer(&mockGeometryRepo{}, domain.EntityDeliveryPicking), nil)
	}))

	resp := do(t, app, "PUT", "/v1/deliveries/4/location", `{"latitude":0,"longitude":0}`)
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
	var got struct {
		Latitude *float64 `json:"latitude"`
		GeoWKT   string   `json:"geo_wkt"`
	}
	resp.decode(t, &got)
	if got.Latitude == nil || *got.Latitude != 0 {
		t.Errorf("expected latitude 0, got %v", got.Latitude)
	}
	if got.GeoWKT != "POINT(0 0)" {
		t.Errorf("geo_wkt = %q", got.GeoWKT)
	}
}

func TestStartDelivery(t *testing.T) {
	pickings := newPickingRepo(domain.Picking{
		ID: 4, Name: "WH/OUT/00004", Type: domain.PickingOutgoing, State: domain.PickingAssigned, Active: true,
	})
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Pickings = usecases.NewPickingService(pickings, syncer(&mockGeometryRepo{}, domain.EntityDeliveryPicking), nil)
	}))

	resp := do(t, app, "POST", "/v1/deliveries/4/start", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if pickings.pickings[4].State != domain.PickingDelivery {
		t.Errorf("state = %s", pickings.pickings[4].State)
	}
}

// ---- Checklist handler tests ----

func TestChecklistImage(t *testing.T) {
	repo := newChecklistRepo()
	png := []byte("\x89PNG\r\n\x1a\n0000")
	repo.images[11] = &domain.ChecklistImage{ID: 11, Image1: png}
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Checklists = usecases.NewChecklistService(repo, newPickingRepo())
	}))

	resp := do(t, app, "GET", "/v1/checklist-images/11/image1", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if ct := resp.Header("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}

	resp = do(t, app, "GET", "/v1/checklist-images/11/image2", "")
	if resp.Status != 404 {
		t.Fatalf("empty field: expected 404, got %d", resp.Status)
	}
}

// ---- Map handler tests ----

func mapDeps() *handler.Dependencies {
	rows := []domain.LocatableRow{
		{ID: 1, Title: "Toko Maju", Active: true, Location: domain.Location{
			Latitude: domain.Float(-6.1), Longitude: domain.Float(106.1),
			Shape: &domain.Geometry{Kind: domain.GeometryPoint, Lat: -6.2, Lon: 106.2, SRID: 4326},
		}},
		{ID: 2, Title: "Bandung", Active: true, Location: domain.Location{
			Latitude: domain.Float(-6.9), Longitude: domain.Float(107.6),
		}},
	}
	return makeDeps(func(d *handler.Dependencies) {
		d.Map = usecases.NewMapService(&mockMapRepo{rows: rows}, nil, 0)
	})
}

func TestMapLocations(t *testing.T) {
	app := setupApp(mapDeps())

	resp := do(t, app, "GET", "/v1/map/customers/locations", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
	var got struct {
		Count     int                  `json:"count"`
		Locations []domain.MapLocation `json:"locations"`
	}
	resp.decode(t, &got)
	if got.Count != 2 {
		t.Fatalf("count = %d", got.Count)
	}
	if got.Locations[0].Latitude != -6.2 {
		t.Errorf("geometry should win, got %v", got.Locations[0].Latitude)
	}
}

func TestMapLocations_Near(t *testing.T) {
	app := setupApp(mapDeps())

	resp := do(t, app, "GET", "/v1/map/customers/locations?lat=-6.2&lon=106.2&radius=5000", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var got struct {
		Count int `json:"count"`
	}
	resp.decode(t, &got)
	if got.Count != 1 {
		t.Errorf("expected 1 location within 5km, got %d", got.Count)
	}

	resp = do(t, app, "GET", "/v1/map/customers/locations?lat=100&lon=106.2", "")
	if resp.Status != 422 {
		t.Errorf("bad center: expected 422, got %d", resp.Status)
	}
}

func TestMapLocations_UnknownEntity(t *testing.T) {
	app := setupApp(mapDeps())

	resp := do(t, app, "GET", "/v1/map/vehicles/locations", "")
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d", resp.Status)
	}
}

func TestMapGeoJSON_PrefersScalars(t *testing.T) {
	app := setupApp(mapDeps())

	resp := do(t, app, "GET", "/v1/map/customers/geojson", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if ct := resp.Header("Content-Type"); !strings.HasPrefix(ct, "application/geo+json") {
		t.Errorf("content type = %q", ct)
	}
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	resp.decode(t, &fc)
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %s", resp.Body)
	}
	if c := fc.Features[0].Geometry.Coordinates; c[0] != 106.1 || c[1] != -6.1 {
		t.Errorf("scalars should win, got %v", c)
	}
}

func TestMapDebug(t *testing.T) {
	app := setupApp(mapDeps())

	resp := do(t, app, "GET", "/v1/map/orders/debug", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var stats domain.MapStats
	resp.decode(t, &stats)
	if !stats.PostGISAvailable || stats.PostGISVersion != "3.4" {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestLegacyMapRoute_Deprecated(t *testing.T) {
	app := setupApp(mapDeps())

	resp := do(t, app, "GET", "/customer_map_tracking/customers_json", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if resp.Header("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if !strings.Contains(resp.Header("Link"), "/v1/map/customers/locations") {
		t.Errorf("expected successor link, got %q", resp.Header("Link"))
	}
	if resp.Header("Sunset") == "" {
		t.Error("expected Sunset header")
	}
}

func TestLegacyCustomerRoute_SuccessorCarriesID(t *testing.T) {
	repo := newCustomerRepo(domain.CustomerMap{ID: 5, Name: "Toko Lama", Active: true})
	app := setupApp(makeDeps(withCustomers(repo, &mockGeometryRepo{})))

	resp := do(t, app, "GET", "/customer_map_tracking/customer/5", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
	if got := resp.Header("Link"); got != `</v1/customers/5>; rel="successor-version"` {
		t.Errorf("unexpected successor link %q", got)
	}
}

// ---- Auth ----

func TestWriteRoutes_RequireToken(t *testing.T) {
	auth := handler.AuthConfig{Secret: []byte("test-secret"), Issuer: "fieldops"}
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.Auth = auth }))

	resp := do(t, app, "POST", "/v1/customers", `{"name":"Toko"}`)
	if resp.Status != 401 {
		t.Fatalf("expected 401 without token, got %d", resp.Status)
	}

	resp = do(t, app, "POST", "/v1/customers", `{"name":"Toko"}`, "Authorization", "Bearer not-a-jwt")
	if resp.Status != 401 {
		t.Fatalf("expected 401 with garbage token, got %d", resp.Status)
	}

	token, err := handler.IssueToken(auth, "u1", "Budi", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	resp = do(t, app, "POST", "/v1/customers", `{"name":"Toko"}`, "Authorization", "Bearer "+token)
	if resp.Status != 201 {
		t.Fatalf("expected 201 with token, got %d: %s", resp.Status, resp.Body)
	}

	// reads stay public
	resp = do(t, app, "GET", "/v1/customers", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200 for read, got %d", resp.Status)
	}
}

func TestWriteRoutes_WrongIssuer(t *testing.T) {
	auth := handler.AuthConfig{Secret: []byte("test-secret"), Issuer: "fieldops"}
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.Auth = auth }))

	token, err := handler.IssueToken(handler.AuthConfig{Secret: auth.Secret, Issuer: "other"}, "u1", "", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	resp := do(t, app, "POST", "/v1/customers", `{"name":"Toko"}`, "Authorization", "Bearer "+token)
	if resp.Status != 401 {
		t.Fatalf("expected 401, got %d", resp.Status)
	}
}

// ---- GraphQL ----

func TestGraphQL_Customer(t *testing.T) {
	repo := newCustomerRepo(domain.CustomerMap{ID: 2, Name: "Toko", Phone: "0812", Active: true, Location: domain.Location{
		Latitude: domain.Float(-6.2), Longitude: domain.Float(106.8),
	}})
	app := setupApp(makeDeps(withCustomers(repo, &mockGeometryRepo{})))

	resp := do(t, app, "POST", "/graphql", `{"query":"{ customer(id: 2) { display_name location_display } }"}`)
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var got struct {
		Data struct {
			Customer struct {
				DisplayName     string `json:"display_name"`
				LocationDisplay string `json:"location_display"`
			} `json:"customer"`
		} `json:"data"`
	}
	resp.decode(t, &got)
	if got.Data.Customer.DisplayName != "Toko (0812)" {
		t.Errorf("display_name = %q", got.Data.Customer.DisplayName)
	}
	if got.Data.Customer.LocationDisplay != "Lat: -6.200000, Lng: 106.800000" {
		t.Errorf("location_display = %q", got.Data.Customer.LocationDisplay)
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/health", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if v := resp.Header("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestReady_NoDB(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/ready", "")
	if resp.Status != 503 {
		t.Fatalf("expected 503 without a database, got %d", resp.Status)
	}
}

func TestAccessLog_RoutePatternAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	repo := newCustomerRepo(domain.CustomerMap{ID: 3, Name: "Toko", Active: true})
	app := setupApp(makeDeps(withCustomers(repo, &mockGeometryRepo{})))

	resp := do(t, app, "GET", "/v1/customers/3", "", "X-Request-ID", "req-42")
	if resp.Status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	do(t, app, "GET", "/v1/health", "")

	out := buf.String()
	for _, want := range []string{`"route":"/v1/customers/:id"`, `"request_id":"req-42"`, `"status":200`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in access log, got %s", want, out)
		}
	}
	if strings.Contains(out, "/v1/health") {
		t.Errorf("health check should not be logged: %s", out)
	}
}
