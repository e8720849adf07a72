package http_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/samirrijal/fieldops/api"
)

func loadDocument(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		t.Fatalf("failed to parse openapi.yaml: %v", err)
	}
	return doc
}

// TestOpenAPIDocument checks the document is valid and lists every route.
func TestOpenAPIDocument(t *testing.T) {
	doc := loadDocument(t)
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("openapi.yaml validation failed: %v", err)
	}

	// Check that key paths exist
	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/customers",
		"/v1/customers/geojson",
		"/v1/customers/{id}",
		"/v1/customers/{id}/set-location",
		"/v1/customers/{id}/clear-location",
		"/v1/orders",
		"/v1/orders/{id}",
		"/v1/orders/{id}/submit",
		"/v1/orders/{id}/approve",
		"/v1/orders/{id}/reject",
		"/v1/orders/{id}/done",
		"/v1/orders/{id}/purchase",
		"/v1/orders/{id}/purchase-orders",
		"/v1/deliveries",
		"/v1/deliveries/{id}",
		"/v1/deliveries/{id}/location",
		"/v1/deliveries/{id}/generate-details",
		"/v1/deliveries/{id}/return",
		"/v1/deliveries/{id}/checklist",
		"/v1/checklists",
		"/v1/checklists/{id}",
		"/v1/checklist-lines/{id}/prepare-inspection",
		"/v1/checklist-images/{id}/{field}",
		"/v1/map/{entity}/locations",
		"/v1/map/{entity}/geojson",
		"/v1/map/{entity}/debug",
		"/graphql",
	}

	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not documented", path)
		}
	}

	// Verify key schemas exist
	expectedSchemas := []string{
		"CustomerMap",
		"InstallmentOrder",
		"OrderProductLine",
		"PurchaseOrder",
		"Picking",
		"Checklist",
		"MapLocation",
		"MapStats",
		"GeoJSONPoint",
		"APIError",
		"Pagination",
	}

	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("openapi.yaml: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

func TestOpenAPIInfo(t *testing.T) {
	doc := loadDocument(t)

	if doc.Info.Title != "FieldOps API" {
		t.Errorf("expected title 'FieldOps API', got %q", doc.Info.Title)
	}

	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}

	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}

	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", doc.Info.Title, doc.Info.Version, doc.Servers[0].URL)
}
