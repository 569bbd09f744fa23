package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/samirrijal/lapwatch/api"
	handler "github.com/samirrijal/lapwatch/internal/adapters/http"
	"github.com/samirrijal/lapwatch/internal/pkg/geospatial"
)

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}
	return spec
}

// TestOpenAPISpec validates the OpenAPI document and checks that every
// route SetupRoutes registers is described.
func TestOpenAPISpec(t *testing.T) {
	spec := loadSpec(t)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/laps",
		"/v1/laps/reference",
		"/v1/laps/distance",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	expectedSchemas := []string{
		"GeoPoint",
		"ReferencePoint",
		"LapStatus",
		"LapConfig",
		"DistanceProbe",
		"LapEvent",
		"ActionRequest",
		"APIError",
	}
	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	if spec.Info.Title != "Lapwatch Status API" {
		t.Errorf("unexpected title %q", spec.Info.Title)
	}
}

// TestResponsesMatchSpec runs real requests and checks every body
// against the schema documented for its status code.
func TestResponsesMatchSpec(t *testing.T) {
	spec := loadSpec(t)

	svc := newLapService(t)
	app := setupApp(&handler.Dependencies{Laps: svc})

	p := geospatial.Offset(start, 12, -7)
	probe := "/v1/laps/distance?lat=" + ftoa(p.Lat) + "&lon=" + ftoa(p.Lon)

	check := func(path, target string, want int) {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != want {
			t.Fatalf("%s: expected %d, got %d", target, want, resp.StatusCode)
		}

		ref := spec.Paths.Find(path).Get.Responses.Status(want)
		if ref == nil || ref.Value == nil {
			t.Fatalf("%s: status %d not documented", path, want)
		}
		schema := ref.Value.Content.Get("application/json").Schema.Value

		var body interface{}
		if err := json.Unmarshal(readBody(t, resp.Body), &body); err != nil {
			t.Fatal(err)
		}
		if err := schema.VisitJSON(body); err != nil {
			t.Errorf("%s (%d) does not match spec: %v", target, want, err)
		}
	}

	check("/v1/health", "/v1/health", 200)
	check("/v1/ready", "/v1/ready", 503)
	check("/v1/laps", "/v1/laps", 200)
	check("/v1/laps/reference", "/v1/laps/reference", 404)
	check("/v1/laps/distance", probe, 503)
	check("/v1/laps/distance", "/v1/laps/distance?lat=x", 400)

	capture(t, svc)
	drive(t, svc, 3, 70, 4)

	check("/v1/laps", "/v1/laps", 200)
	check("/v1/laps/reference", "/v1/laps/reference", 200)
	check("/v1/laps/distance", probe, 200)
}

func TestDocsServed(t *testing.T) {
	app := setupApp(&handler.Dependencies{Laps: newLapService(t)})

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := string(readBody(t, resp.Body)); got != string(api.OpenAPI) {
		t.Error("served document differs from embedded spec")
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
