package mutation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"poimap/internal/featurecache"
	"poimap/internal/geom"
	"poimap/internal/poi"
)

// memBackend is an in-memory POI table with an optional dependent table.
type memBackend struct {
	mu      sync.Mutex
	next    int64
	rows    map[int64]poi.POI
	refs    map[int64]bool
	inserts int
	deletes int
	err     error
}

func newMemBackend() *memBackend {
	return &memBackend{next: 1, rows: map[int64]poi.POI{}, refs: map[int64]bool{}}
}

func (b *memBackend) Insert(_ context.Context, lon, lat float64, name string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inserts++
	if b.err != nil {
		return 0, b.err
	}
	id := b.next
	b.next++
	b.rows[id] = poi.POI{ID: id, Lon: lon, Lat: lat, Name: name}
	return id, nil
}

func (b *memBackend) Delete(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	if _, ok := b.rows[id]; !ok {
		return ErrNotFound
	}
	if b.refs[id] {
		return ErrConflict
	}
	delete(b.rows, id)
	return nil
}

func (b *memBackend) LoadExtent(_ context.Context, e geom.Extent, _ int) ([]poi.POI, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []poi.POI
	for _, r := range b.rows {
		if e.Contains(r.Lon, r.Lat) {
			out = append(out, r)
		}
	}
	return out, nil
}

type countingRefresher struct {
	calls    int
	err      error
	deadline time.Time
	ctxErr   error
}

func (r *countingRefresher) Refresh(ctx context.Context) (featurecache.Report, error) {
	r.calls++
	r.deadline, _ = ctx.Deadline()
	r.ctxErr = ctx.Err()
	return featurecache.Report{}, r.err
}

// bucharest covers the test coordinates at load zoom 6.
var bucharest = geom.Extent{MinLon: 25, MinLat: 44, MaxLon: 27, MaxLat: 45}

func TestCreateRoundTrip(t *testing.T) {
	ctx := context.Background()
	be := newMemBackend()
	cache := featurecache.New(be, featurecache.Options{MinZoom: 2})
	cache.Load(ctx, bucharest, 6)
	g := New(be, cache, "")

	id, err := g.Create(ctx, 26.1, 44.43, "Test")
	if err != nil {
		t.Fatal(err)
	}
	if id <= 0 {
		t.Fatalf("id = %d", id)
	}
	f, ok := cache.Get(id)
	if !ok {
		t.Fatal("created poi missing from cache after refresh")
	}
	if f.Name != "Test" || math.Abs(f.Lon-26.1) > 1e-9 || math.Abs(f.Lat-44.43) > 1e-9 {
		t.Fatalf("got %+v", f.POI)
	}
}

func TestCreateUsesDefaultName(t *testing.T) {
	be := newMemBackend()
	g := New(be, nil, "Unnamed")
	id, err := g.Create(context.Background(), 1, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := be.rows[id].Name; got != "Unnamed" {
		t.Fatalf("name = %q", got)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		field    string
	}{
		{name: "lat out of range", lon: 10, lat: 95, field: "lat"},
		{name: "lat NaN", lon: 10, lat: math.NaN(), field: "lat"},
		{name: "lon out of range", lon: -180.5, lat: 0, field: "lon"},
		{name: "lon infinite", lon: math.Inf(1), lat: 0, field: "lon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := newMemBackend()
			r := &countingRefresher{}
			_, err := New(be, r, "").Create(context.Background(), tt.lon, tt.lat, "x")
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %#v", err)
			}
			if be.inserts != 0 || r.calls != 0 {
				t.Fatalf("backend called %d times, refresh %d", be.inserts, r.calls)
			}
		})
	}
}

func TestCreateRejectedLeavesCache(t *testing.T) {
	be := newMemBackend()
	be.err = ErrInvalid
	r := &countingRefresher{}
	if _, err := New(be, r, "").Create(context.Background(), 1, 1, "x"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
	if r.calls != 0 {
		t.Fatal("refresh after rejected create")
	}
}

func TestDeleteOutcomes(t *testing.T) {
	ctx := context.Background()
	be := newMemBackend()
	cache := featurecache.New(be, featurecache.Options{MinZoom: 2})
	g := New(be, cache, "")

	keep, _ := be.Insert(ctx, 26.1, 44.43, "kept")
	gone, _ := be.Insert(ctx, 26.2, 44.4, "gone")
	be.refs[keep] = true
	cache.Load(ctx, bucharest, 6)

	deleted, err := g.Delete(ctx, gone)
	if err != nil || !deleted {
		t.Fatalf("delete existing: %v %v", deleted, err)
	}
	if _, ok := cache.Get(gone); ok {
		t.Fatal("deleted poi still cached")
	}

	deleted, err = g.Delete(ctx, 999999)
	if deleted || !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: %v %v", deleted, err)
	}

	deleted, err = g.Delete(ctx, keep)
	if deleted || !errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		t.Fatalf("delete referenced: %v %v", deleted, err)
	}
	if _, ok := cache.Get(keep); !ok {
		t.Fatal("referenced poi dropped from cache")
	}
}

func TestDeleteRejectsNonPositiveID(t *testing.T) {
	be := newMemBackend()
	for _, id := range []int64{0, -3} {
		if _, err := New(be, nil, "").Delete(context.Background(), id); !errors.Is(err, ErrInvalid) {
			t.Fatalf("id %d: err = %v", id, err)
		}
	}
	if be.deletes != 0 {
		t.Fatal("backend called for invalid id")
	}
}

func TestRefreshFailureDoesNotFailMutation(t *testing.T) {
	r := &countingRefresher{err: errors.New("tiles failed")}
	id, err := New(newMemBackend(), r, "").Create(context.Background(), 1, 1, "x")
	if err != nil || id != 1 || r.calls != 1 {
		t.Fatalf("id %d err %v refreshes %d", id, err, r.calls)
	}
}

func TestRefreshOutlivesMutationDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	mutationDeadline, _ := ctx.Deadline()
	r := &countingRefresher{}
	g := New(newMemBackend(), r, "")

	if _, err := g.Create(ctx, 1, 1, "x"); err != nil {
		t.Fatal(err)
	}
	if !r.deadline.After(mutationDeadline) {
		t.Fatalf("refresh deadline %v not past mutation deadline %v", r.deadline, mutationDeadline)
	}

	cancel()
	if _, err := g.Delete(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if r.ctxErr != nil {
		t.Fatalf("refresh inherited cancellation: %v", r.ctxErr)
	}
	if r.deadline.IsZero() || time.Until(r.deadline) > RefreshTimeout {
		t.Fatalf("refresh deadline %v", r.deadline)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(ErrConflict); got == Describe(ErrNotFound) {
		t.Fatalf("conflict and not-found read the same: %q", got)
	}
	if Describe(nil) != "" {
		t.Fatal("nil error described")
	}
}
