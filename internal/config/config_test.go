package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	if err := DefaultClient().Validate(); err != nil {
		t.Fatalf("client defaults: %v", err)
	}
	if err := DefaultGateway().Validate(); err != nil {
		t.Fatalf("gateway defaults: %v", err)
	}
}

func TestLoadClientLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poimap.yaml")
	yaml := "api:\n  base_url: http://gw:8080/api\n  limit: 200\nmap:\n  zoom: 9\n  default_name: Spot\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POIMAP_MAP__ZOOM", "11.5")
	t.Setenv("POIMAP_API__TIMEOUT", "3s")

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://gw:8080/api" || cfg.API.Limit != 200 {
		t.Fatalf("file values not applied: %+v", cfg.API)
	}
	if cfg.Map.Zoom != 11.5 {
		t.Fatalf("env must override file: zoom %v", cfg.Map.Zoom)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("timeout %v", cfg.API.Timeout)
	}
	if cfg.Map.DefaultName != "Spot" || cfg.Map.HomeLon != 26.1 || cfg.Map.MaxLoadZoom != 14 {
		t.Fatalf("map %+v", cfg.Map)
	}
}

func TestLoadGatewayEnv(t *testing.T) {
	t.Setenv("POIGATEWAY_SERVER__CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("POIGATEWAY_SERVER__RATE_LIMIT", "120")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/fishing")
	t.Setenv("PORT", "8081")

	cfg, err := LoadGateway(filepath.Join(t.TempDir(), "missing-is-not-used.yaml"))
	if err == nil {
		t.Fatal("explicit missing config file accepted")
	}

	cfg, err = LoadGateway("")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(cfg.Server.CORSOrigins, " "); got != "http://a.test http://b.test" {
		t.Fatalf("cors origins %q", got)
	}
	if cfg.Server.RateLimit != 120 || cfg.Server.Addr != ":8081" {
		t.Fatalf("server %+v", cfg.Server)
	}
	if cfg.Database.URL != "postgres://u:p@db:5432/fishing" {
		t.Fatalf("database url %q", cfg.Database.URL)
	}
}

func TestValidateListsEveryProblem(t *testing.T) {
	c := DefaultClient()
	c.API.BaseURL = "not a url"
	c.Map.CenterLat = 91
	c.Map.HitTolerance = 0
	c.Log.Level = "loud"

	err := c.Validate()
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	for _, want := range []string{"api.base_url", "map.center_lat", "map.hit_tolerance", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error lacks %s: %v", want, err)
		}
	}
}
