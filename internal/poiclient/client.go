// Package poiclient talks to the POI gateway over HTTP.
//
// Reads go through a circuit breaker so a dead backend does not get one
// request per tile while the user keeps panning. Mutations are sent as is and
// never retried.
package poiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"poimap/internal/geom"
	"poimap/internal/logging"
	"poimap/internal/mutation"
	"poimap/internal/poi"
)

// ErrUnavailable marks transport failures and unexpected backend statuses.
var ErrUnavailable = errors.New("poi backend unavailable")

// StatusError is a non-success reply from the gateway.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// Unwrap maps the status onto the mutation error taxonomy.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return mutation.ErrInvalid
	case http.StatusNotFound:
		return mutation.ErrNotFound
	case http.StatusConflict:
		return mutation.ErrConflict
	}
	return ErrUnavailable
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements featurecache.Loader and mutation.Backend.
type Client struct {
	base string
	http *http.Client
	cb   *gobreaker.CircuitBreaker[[]poi.POI]
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	cb := gobreaker.NewCircuitBreaker[[]poi.POI](gobreaker.Settings{
		Name:        "poi-read",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		// Only backend trouble counts against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return &Client{base: strings.TrimRight(opts.BaseURL, "/"), http: hc, cb: cb}
}

// LoadExtent fetches the POIs inside e, at most limit of them. Features
// without a usable id are skipped.
func (c *Client) LoadExtent(ctx context.Context, e geom.Extent, limit int) ([]poi.POI, error) {
	pois, err := c.cb.Execute(func() ([]poi.POI, error) {
		return c.loadExtent(ctx, e, limit)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return pois, err
}

func (c *Client) loadExtent(ctx context.Context, e geom.Extent, limit int) ([]poi.POI, error) {
	q := url.Values{}
	q.Set("minlon", formatFloat(e.MinLon))
	q.Set("minlat", formatFloat(e.MinLat))
	q.Set("maxlon", formatFloat(e.MaxLon))
	q.Set("maxlat", formatFloat(e.MaxLat))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/poi?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")

	body, err := c.do(req, "load", http.StatusOK)
	if err != nil {
		return nil, err
	}
	pois, skipped, err := poi.ParseCollection(body)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", ErrUnavailable, err)
	}
	if skipped > 0 {
		logging.Warn().Int("skipped", skipped).Str("extent", e.String()).Msg("features without id ignored")
	}
	return pois, nil
}

type insertRequest struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

type insertResponse struct {
	ID int64 `json:"id"`
}

// Insert creates a POI and returns the id the server assigned.
func (c *Client) Insert(ctx context.Context, lon, lat float64, name string) (int64, error) {
	var out insertResponse
	if err := c.post(ctx, "insert", "/poi_insert", insertRequest{Lat: lat, Lon: lon, Name: name}, http.StatusCreated, &out); err != nil {
		return 0, err
	}
	if out.ID <= 0 {
		return 0, fmt.Errorf("%w: insert: server returned id %d", ErrUnavailable, out.ID)
	}
	return out.ID, nil
}

type deleteRequest struct {
	ID int64 `json:"id"`
}

type deleteResponse struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// Delete removes a POI. A 404 reply matches mutation.ErrNotFound and a 409
// reply matches mutation.ErrConflict.
func (c *Client) Delete(ctx context.Context, id int64) error {
	var out deleteResponse
	if err := c.post(ctx, "delete", "/poi_delete", deleteRequest{ID: id}, http.StatusOK, &out); err != nil {
		return err
	}
	if !out.Deleted {
		return &StatusError{Op: "delete", Status: http.StatusNotFound, Message: "not deleted"}
	}
	return nil
}

func (c *Client) post(ctx context.Context, op, path string, in any, want int, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, op, want)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", ErrUnavailable, op, err)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(req *http.Request, op string, want int) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrUnavailable, op, err)
	}
	if resp.StatusCode != want {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Message: eb.Error}
	}
	return body, nil
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
