package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "fatal": true, "panic": true, "disabled": true,
}

// Validate reports every invalid value at once.
func (c Client) Validate() error {
	var errs []error
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive"))
	}
	if c.API.Limit <= 0 {
		errs = append(errs, fmt.Errorf("api.limit must be positive, got %d", c.API.Limit))
	}
	errs = append(errs, checkLonLat("map.center", c.Map.CenterLon, c.Map.CenterLat)...)
	errs = append(errs, checkLonLat("map.home", c.Map.HomeLon, c.Map.HomeLat)...)
	errs = append(errs, checkZoom("map.zoom", c.Map.Zoom), checkZoom("map.home_zoom", c.Map.HomeZoom))
	if !(c.Map.LabelResolution > 0) {
		errs = append(errs, fmt.Errorf("map.label_resolution must be positive"))
	}
	if !(c.Map.HitTolerance > 0) {
		errs = append(errs, fmt.Errorf("map.hit_tolerance must be positive"))
	}
	if c.Map.MinLoadZoom < 0 || c.Map.MaxLoadZoom > 20 || c.Map.MinLoadZoom > c.Map.MaxLoadZoom {
		errs = append(errs, fmt.Errorf("map load zoom range [%d, %d] must lie within [0, 20]", c.Map.MinLoadZoom, c.Map.MaxLoadZoom))
	}
	errs = append(errs, checkLevel(c.Log.Level))
	if strings.TrimSpace(c.Settings.Path) == "" {
		errs = append(errs, fmt.Errorf("settings.path is empty"))
	}
	return errors.Join(errs...)
}

// Validate reports every invalid value at once.
func (g Gateway) Validate() error {
	var errs []error
	if g.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr is empty"))
	}
	if g.Server.BasePath != "" && !strings.HasPrefix(g.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path %q must start with /", g.Server.BasePath))
	}
	if g.Server.ReadTimeout <= 0 || g.Server.WriteTimeout <= 0 || g.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server timeouts must be positive"))
	}
	if g.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative"))
	}
	if g.Database.URL == "" {
		errs = append(errs, fmt.Errorf("database.url is empty"))
	}
	if g.Database.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("database.max_conns must not be negative"))
	}
	errs = append(errs, checkLevel(g.Log.Level))
	if f := g.Log.Format; f != "json" && f != "console" {
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", f))
	}
	return errors.Join(errs...)
}

func checkLonLat(key string, lon, lat float64) []error {
	var errs []error
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		errs = append(errs, fmt.Errorf("%s_lon %v outside [-180, 180]", key, lon))
	}
	if math.IsNaN(lat) || lat < -85.0511 || lat > 85.0511 {
		errs = append(errs, fmt.Errorf("%s_lat %v outside the mercator range", key, lat))
	}
	return errs
}

func checkZoom(key string, z float64) error {
	if math.IsNaN(z) || z < 0 || z > 20 {
		return fmt.Errorf("%s %v outside [0, 20]", key, z)
	}
	return nil
}

func checkLevel(level string) error {
	if level != "" && !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("log.level %q is not a known level", level)
	}
	return nil
}
