package config

import (
	"log"
	"os"
)

const (
	defaultDBPath  = "./dev.db"
	defaultPort    = "8080"
	defaultSiteURL = "http://localhost:8080"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	DBPath     string
	Port       string
	SiteURL    string
	AdminToken string
	Env        string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		DBPath:     os.Getenv("DB_PATH"),
		Port:       os.Getenv("PORT"),
		SiteURL:    os.Getenv("SITE_URL"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		Env:        os.Getenv("APP_ENV"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = defaultSiteURL
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	if cfg.AdminToken == "" {
		log.Print("warning: ADMIN_TOKEN is not set, catalog reload endpoint is disabled")
	}

	return cfg
}

// IsDev reports whether the app runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}
