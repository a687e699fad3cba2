// Package mutation submits POI creations and deletions and keeps the feature
// cache consistent with the backend afterwards.
package mutation

import (
	"context"
	"math"
	"time"

	"poimap/internal/featurecache"
	"poimap/internal/logging"
)

const (
	// DefaultName is used when a POI is created without a name.
	DefaultName = "New point"
	// RefreshTimeout bounds the cache reload that follows a confirmed
	// mutation. It runs detached from the mutation's own deadline.
	RefreshTimeout = 30 * time.Second
)

// Backend performs the mutations remotely.
type Backend interface {
	Insert(ctx context.Context, lon, lat float64, name string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Refresher reloads the feature cache. *featurecache.Cache implements it.
type Refresher interface {
	Refresh(ctx context.Context) (featurecache.Report, error)
}

// Gateway validates mutations, forwards them to the backend and refreshes
// the cache after every confirmed change. It neither retries nor dedups.
type Gateway struct {
	backend     Backend
	cache       Refresher
	defaultName string
}

func New(backend Backend, cache Refresher, defaultName string) *Gateway {
	if defaultName == "" {
		defaultName = DefaultName
	}
	return &Gateway{backend: backend, cache: cache, defaultName: defaultName}
}

// ValidateCoords checks that lon/lat are finite and within range.
func ValidateCoords(lon, lat float64) error {
	switch {
	case math.IsNaN(lat) || math.IsInf(lat, 0):
		return &ValidationError{Field: "lat", Value: lat, Reason: "not a finite number"}
	case math.IsNaN(lon) || math.IsInf(lon, 0):
		return &ValidationError{Field: "lon", Value: lon, Reason: "not a finite number"}
	case lat < -90 || lat > 90:
		return &ValidationError{Field: "lat", Value: lat, Reason: "outside [-90, 90]"}
	case lon < -180 || lon > 180:
		return &ValidationError{Field: "lon", Value: lon, Reason: "outside [-180, 180]"}
	}
	return nil
}

// Create inserts a POI and returns its server assigned id.
func (g *Gateway) Create(ctx context.Context, lon, lat float64, name string) (int64, error) {
	if err := ValidateCoords(lon, lat); err != nil {
		return 0, err
	}
	if name == "" {
		name = g.defaultName
	}
	id, err := g.backend.Insert(ctx, lon, lat, name)
	if err != nil {
		logging.Warn().Err(err).Float64("lon", lon).Float64("lat", lat).Msg("create rejected")
		return 0, err
	}
	logging.Info().Int64("id", id).Str("name", name).Msg("poi created")
	g.refresh(ctx)
	return id, nil
}

// Delete removes the POI with the given id. A missing row yields false and
// ErrNotFound; a referenced row yields ErrConflict.
func (g *Gateway) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, &ValidationError{Field: "id", Value: id, Reason: "must be a positive integer"}
	}
	if err := g.backend.Delete(ctx, id); err != nil {
		logging.Warn().Err(err).Int64("id", id).Msg("delete rejected")
		return false, err
	}
	logging.Info().Int64("id", id).Msg("poi deleted")
	g.refresh(ctx)
	return true, nil
}

func (g *Gateway) refresh(ctx context.Context) {
	if g.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RefreshTimeout)
	defer cancel()
	if _, err := g.cache.Refresh(ctx); err != nil {
		logging.Warn().Err(err).Msg("refresh after mutation incomplete")
	}
}
