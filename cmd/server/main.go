package main

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/printworks/quoter/internal/calc"
	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/config"
	"github.com/printworks/quoter/internal/db"
	"github.com/printworks/quoter/internal/migrations"
	"github.com/printworks/quoter/internal/seed"
)

type server struct {
	db       *sql.DB
	registry *calc.Registry
	catalogs *catalog.Handle
	cfg      config.Config
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seeded catalog: %d inserts", stats.Inserts)
	}

	store, err := catalog.Load(database)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	srv := &server{
		db:       database,
		registry: calc.NewRegistry(),
		catalogs: catalog.NewHandle(store),
		cfg:      cfg,
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.router()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Get("/api/v1/calculators", s.handleListCalculators)
	r.Get("/api/v1/options/{slug}", s.handleOptions)
	r.Post("/api/v1/calc/{slug}", s.handleCalc)
	r.Post("/api/v1/reload", s.handleReload)
	return r
}

func (s *server) handleListCalculators(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Slug        string `json:"slug"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	out := make([]entry, 0)
	for _, c := range s.registry.List() {
		out = append(out, entry{Slug: c.Slug(), Name: c.Name(), Description: c.Description()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleOptions(w http.ResponseWriter, r *http.Request) {
	c, err := s.registry.Get(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Options(s.catalogs.Snapshot()))
}

func (s *server) handleCalc(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	c, err := s.registry.Get(slug)
	if err != nil {
		writeError(w, err)
		return
	}

	var params calc.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return
	}

	// Every calculation runs against one snapshot; a concurrent reload
	// cannot change the numbers mid-quote.
	result, err := c.Calculate(s.catalogs.Snapshot(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	result.ShareURL = calc.ShareURL(s.cfg.SiteURL, slug, params)
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AdminToken == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "reload is disabled"})
		return
	}
	token := r.Header.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(token), []byte("Bearer "+s.cfg.AdminToken)) != 1 {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "forbidden"})
		return
	}

	store, err := catalog.Load(s.db)
	if err != nil {
		log.Printf("catalog reload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "reload failed"})
		return
	}
	s.catalogs.Publish(store)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps the calculation error taxonomy onto HTTP statuses. Unknown
// errors stay opaque to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calc.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": err.Error()})
	case errors.Is(err, calc.ErrInfeasible):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
	default:
		log.Printf("calculation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
