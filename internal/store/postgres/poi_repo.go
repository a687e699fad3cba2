package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"poimap/internal/metrics"
	"poimap/internal/mutation"
	"poimap/internal/poi"
)

const foreignKeyViolation = "23503"

// POIRepo implements gateway.Store on top of the api.poi_* functions.
type POIRepo struct {
	db *DB
}

func NewPOIRepo(db *DB) *POIRepo {
	return &POIRepo{db: db}
}

// FeatureCollection returns the GeoJSON FeatureCollection of the POIs in q,
// as produced by the database.
func (r *POIRepo) FeatureCollection(ctx context.Context, q poi.Query) ([]byte, error) {
	var fc []byte
	start := time.Now()
	err := r.db.Pool.QueryRow(ctx,
		`SELECT api.poi_geojson($1, $2, $3, $4, $5)`,
		q.MinLon, q.MinLat, q.MaxLon, q.MaxLat, q.Limit,
	).Scan(&fc)
	metrics.RecordDBCall("poi_geojson", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("poi_geojson: %w", err)
	}
	return fc, nil
}

// Insert creates a POI and returns its id.
func (r *POIRepo) Insert(ctx context.Context, lat, lon float64, name string) (int64, error) {
	var id int64
	start := time.Now()
	err := r.db.Pool.QueryRow(ctx, `SELECT api.poi_insert($1, $2, $3)`, lat, lon, name).Scan(&id)
	metrics.RecordDBCall("poi_insert", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("poi_insert: %w", mapError(err))
	}
	return id, nil
}

// Delete removes a POI. It reports false when no row had that id and
// mutation.ErrConflict when other rows still reference it.
func (r *POIRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var ok bool
	start := time.Now()
	err := r.db.Pool.QueryRow(ctx, `SELECT api.poi_delete($1)`, id).Scan(&ok)
	metrics.RecordDBCall("poi_delete", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("poi_delete: %w", mapError(err))
	}
	return ok, nil
}

func (r *POIRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", mutation.ErrConflict, pgErr.Detail)
	}
	return err
}
