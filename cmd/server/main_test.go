package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/printworks/quoter/internal/calc"
	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/config"
	"github.com/printworks/quoter/internal/db"
	"github.com/printworks/quoter/internal/migrations"
	"github.com/printworks/quoter/internal/seed"
)

func newTestServer(t *testing.T, adminToken string) *server {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server_test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	store, err := catalog.Load(database)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	return &server{
		db:       database,
		registry: calc.NewRegistry(),
		catalogs: catalog.NewHandle(store),
		cfg: config.Config{
			SiteURL:    "http://localhost:8080",
			AdminToken: adminToken,
		},
	}
}

func do(t *testing.T, srv *server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	return rec
}

func TestListCalculators(t *testing.T) {
	srv := newTestServer(t, "")

	rec := do(t, srv, http.MethodGet, "/api/v1/calculators", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var list []struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 8 {
		t.Fatalf("listed %d calculators, want 8", len(list))
	}
	if list[0].Slug != "laser" || list[0].Name == "" {
		t.Fatalf("first entry = %+v", list[0])
	}
}

func TestOptionsEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	rec := do(t, srv, http.MethodGet, "/api/v1/options/laser", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var opts map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if opts["materials"] == nil || opts["modes"] == nil {
		t.Fatalf("options = %v, want materials and modes", opts)
	}

	if rec := do(t, srv, http.MethodGet, "/api/v1/options/no_such_job", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown slug status = %d, want 404", rec.Code)
	}
}

func TestCalcEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	rec := do(t, srv, http.MethodPost, "/api/v1/calc/laser",
		`{"quantity": 10, "width_mm": 100, "height_mm": 100, "material_code": "PVC3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Cost     float64 `json:"cost"`
		Price    float64 `json:"price"`
		ShareURL string  `json:"share_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Price <= 0 || res.Cost <= 0 {
		t.Fatalf("quote = %+v", res)
	}
	if !strings.HasPrefix(res.ShareURL, "http://localhost:8080/calculator/laser/?") {
		t.Fatalf("share url = %q", res.ShareURL)
	}
}

func TestCalcEndpointErrorMapping(t *testing.T) {
	srv := newTestServer(t, "")

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed json", "/api/v1/calc/laser", `{"quantity": `, http.StatusBadRequest},
		{"missing material", "/api/v1/calc/laser", `{"width_mm": 100, "height_mm": 100}`, http.StatusBadRequest},
		{"unknown slug", "/api/v1/calc/no_such_job", `{}`, http.StatusNotFound},
		{"unknown material", "/api/v1/calc/laser", `{"width_mm": 100, "height_mm": 100, "material_code": "Unobtainium"}`, http.StatusNotFound},
		{"oversized item", "/api/v1/calc/laser", `{"width_mm": 1500, "height_mm": 1000, "material_code": "PVC3"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		rec := do(t, srv, http.MethodPost, tc.path, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d (body %s)", tc.name, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestReloadRequiresToken(t *testing.T) {
	disabled := newTestServer(t, "")
	if rec := do(t, disabled, http.MethodPost, "/api/v1/reload", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("disabled reload status = %d, want 403", rec.Code)
	}

	srv := newTestServer(t, "s3cret")
	if rec := do(t, srv, http.MethodPost, "/api/v1/reload", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("tokenless reload status = %d, want 403", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorized reload status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestReloadPicksUpCatalogChanges(t *testing.T) {
	srv := newTestServer(t, "s3cret")

	if _, err := srv.db.Exec(`UPDATE materials SET available = FALSE WHERE code = 'PVC3'`); err != nil {
		t.Fatalf("update material: %v", err)
	}

	// The published snapshot still lists the material until a reload.
	countOptions := func() int {
		rec := do(t, srv, http.MethodGet, "/api/v1/options/laser", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("options status = %d", rec.Code)
		}
		var opts struct {
			Materials []any `json:"materials"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
			t.Fatalf("decode options: %v", err)
		}
		return len(opts.Materials)
	}

	before := countOptions()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d", rec.Code)
	}

	after := countOptions()
	if after != before-1 {
		t.Fatalf("materials listed: %d before, %d after reload, want one fewer", before, after)
	}
}
