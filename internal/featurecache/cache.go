// Package featurecache keeps the POI features of the visible map area.
//
// Loading follows the web tile grid: an extent is covered by the tiles of one
// zoom level and only tiles not already loaded (or loading) are fetched. A
// tile is also covered when one of its ancestors is. Results are merged into a
// store keyed by POI id, so overlapping or late responses never duplicate a
// feature.
//
// Refresh discards everything and reloads every covered tile. Each refresh
// starts a new generation; responses issued under an older generation are
// dropped so a deleted row cannot reappear from a response that was already
// in flight.
package featurecache

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/errgroup"

	"poimap/internal/geom"
	"poimap/internal/logging"
	"poimap/internal/poi"
)

// DefaultLimit caps the number of features requested per tile.
const DefaultLimit = 5000

// Loader fetches the POIs inside an extent. poiclient.Client implements it.
type Loader interface {
	LoadExtent(ctx context.Context, e geom.Extent, limit int) ([]poi.POI, error)
}

// Feature is a POI with its geometry in the map's working projection.
type Feature struct {
	poi.POI
	Local orb.Point
}

// Options tune the loading strategy.
type Options struct {
	Limit       int
	MinZoom     maptile.Zoom
	MaxZoom     maptile.Zoom
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.MaxZoom == 0 {
		o.MaxZoom = 14
	}
	if o.MinZoom > o.MaxZoom {
		o.MinZoom = o.MaxZoom
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	return o
}

type tileState uint8

const (
	tilePending tileState = iota + 1
	tileLoaded
)

type tileEntry struct {
	state tileState
	gen   uint64
	// truncated tiles hit the size cap; they do not cover their descendants.
	truncated bool
}

// Report summarises one Load or Refresh call.
type Report struct {
	Requested int
	Failed    int
	Truncated int
}

// Stats is a snapshot of the cache state.
type Stats struct {
	Loaded   int
	Pending  int
	Features int
	Fetches  int64
}

// Cache is safe for concurrent use; network calls never hold the lock.
type Cache struct {
	loader Loader
	opts   Options

	mu       sync.Mutex
	gen      uint64
	tiles    map[maptile.Tile]tileEntry
	features map[int64]Feature
	fetches  int64
}

func New(loader Loader, opts Options) *Cache {
	return &Cache{
		loader:   loader,
		opts:     opts.withDefaults(),
		tiles:    make(map[maptile.Tile]tileEntry),
		features: make(map[int64]Feature),
	}
}

// LoadZoom returns the tile zoom used to cover a view at viewZoom.
func (c *Cache) LoadZoom(viewZoom float64) maptile.Zoom {
	z := int(math.Floor(viewZoom))
	z = max(z, int(c.opts.MinZoom))
	z = min(z, int(c.opts.MaxZoom))
	return maptile.Zoom(z)
}

// Tiles returns the tiles of zoom z intersecting e.
func Tiles(e geom.Extent, z maptile.Zoom) []maptile.Tile {
	if !e.Valid() {
		return nil
	}
	lo := maptile.At(orb.Point{e.MinLon, math.Min(e.MaxLat, geom.MaxLat)}, z)
	hi := maptile.At(orb.Point{e.MaxLon, math.Max(e.MinLat, -geom.MaxLat)}, z)
	last := uint32(1)<<uint32(z) - 1
	clamp := func(v uint32) uint32 { return min(v, last) }
	var out []maptile.Tile
	for y := clamp(lo.Y); y <= clamp(hi.Y); y++ {
		for x := clamp(lo.X); x <= clamp(hi.X); x++ {
			out = append(out, maptile.New(x, y, z))
		}
	}
	return out
}

// covered reports whether t itself, or one of its ancestors, is loaded or
// in flight under the current generation. Caller holds mu.
func (c *Cache) covered(t maptile.Tile) bool {
	if e, ok := c.tiles[t]; ok && e.gen == c.gen {
		return true
	}
	return c.coveredByAncestor(t, true)
}

// coveredByAncestor reports whether a strict ancestor of t holds its whole
// area. Truncated ancestors never do. In-flight ancestors count only when
// pending is set. Caller holds mu.
func (c *Cache) coveredByAncestor(t maptile.Tile, pending bool) bool {
	for t.Z > 0 {
		t = t.Parent()
		e, ok := c.tiles[t]
		if !ok || e.gen != c.gen || e.truncated {
			continue
		}
		if e.state == tileLoaded || pending {
			return true
		}
	}
	return false
}

// dropDescendants forgets the tiles below t. Caller holds mu.
func (c *Cache) dropDescendants(t maptile.Tile) {
	for u := range c.tiles {
		if u.Z > t.Z && ancestorAt(u, t.Z) == t {
			delete(c.tiles, u)
		}
	}
}

func ancestorAt(t maptile.Tile, z maptile.Zoom) maptile.Tile {
	shift := uint32(t.Z - z)
	return maptile.New(t.X>>shift, t.Y>>shift, z)
}

// Load fetches the tiles needed to cover e at the view zoom and merges the
// results. Tiles already covered are not requested again. Failed tiles are
// logged and left unloaded so the next call retries them.
func (c *Cache) Load(ctx context.Context, e geom.Extent, viewZoom float64) Report {
	z := c.LoadZoom(viewZoom)
	c.mu.Lock()
	var need []maptile.Tile
	for _, t := range Tiles(e, z) {
		if c.covered(t) {
			continue
		}
		c.tiles[t] = tileEntry{state: tilePending, gen: c.gen}
		need = append(need, t)
	}
	gen := c.gen
	c.mu.Unlock()

	return c.fetch(ctx, need, gen)
}

// Refresh invalidates the whole cache and reloads the covered area. Tiles
// held by a complete ancestor are not requested again. It returns an error
// when any tile failed to reload; those tiles are retried by the next Load
// covering them.
func (c *Cache) Refresh(ctx context.Context) (Report, error) {
	c.mu.Lock()
	tiles := make([]maptile.Tile, 0, len(c.tiles))
	for t := range c.tiles {
		if !c.coveredByAncestor(t, true) {
			tiles = append(tiles, t)
		}
	}
	c.gen++
	gen := c.gen
	c.features = make(map[int64]Feature)
	c.tiles = make(map[maptile.Tile]tileEntry, len(tiles))
	for _, t := range tiles {
		c.tiles[t] = tileEntry{state: tilePending, gen: gen}
	}
	c.mu.Unlock()

	rep := c.fetch(ctx, tiles, gen)
	if rep.Failed > 0 {
		return rep, fmt.Errorf("refresh: %d of %d tiles failed", rep.Failed, rep.Requested)
	}
	return rep, nil
}

func (c *Cache) fetch(ctx context.Context, tiles []maptile.Tile, gen uint64) Report {
	rep := Report{Requested: len(tiles)}
	if len(tiles) == 0 {
		return rep
	}
	var (
		rmu sync.Mutex
		g   errgroup.Group
	)
	g.SetLimit(c.opts.Concurrency)
	for _, t := range tiles {
		g.Go(func() error {
			pois, err := c.loader.LoadExtent(ctx, geom.ExtentOf(t.Bound()), c.opts.Limit)
			failed, truncated := c.apply(t, gen, pois, err)
			rmu.Lock()
			if failed {
				rep.Failed++
			}
			if truncated {
				rep.Truncated++
			}
			rmu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return rep
}

func (c *Cache) apply(t maptile.Tile, gen uint64, pois []poi.POI, err error) (failed, truncated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	key := fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
	if gen != c.gen {
		logging.Debug().Str("tile", key).Uint64("gen", gen).Msg("dropping stale tile response")
		return false, false
	}
	if err != nil {
		delete(c.tiles, t)
		logging.Warn().Err(err).Str("tile", key).Msg("tile load failed")
		return true, false
	}
	for _, p := range pois {
		c.features[p.ID] = Feature{POI: p, Local: geom.Project(p.Lon, p.Lat)}
	}
	truncated = len(pois) >= c.opts.Limit
	if truncated {
		logging.Warn().Str("tile", key).Int("limit", c.opts.Limit).Msg("tile result hit the size cap")
	}
	if c.coveredByAncestor(t, false) {
		// An ancestor finished first and already holds this area.
		delete(c.tiles, t)
	} else {
		c.tiles[t] = tileEntry{state: tileLoaded, gen: gen, truncated: truncated}
		if !truncated {
			c.dropDescendants(t)
		}
	}
	logging.Debug().Str("tile", key).Int("features", len(pois)).Msg("tile loaded")
	return false, truncated
}

// Features returns the cached features ordered by id.
func (c *Cache) Features() []Feature {
	c.mu.Lock()
	out := make([]Feature, 0, len(c.features))
	for _, f := range c.features {
		out = append(out, f)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the cached feature with the given id.
func (c *Cache) Get(id int64) (Feature, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.features[id]
	return f, ok
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Features: len(c.features), Fetches: c.fetches}
	for _, e := range c.tiles {
		switch e.state {
		case tileLoaded:
			s.Loaded++
		case tilePending:
			s.Pending++
		}
	}
	return s
}
