package gateway

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"poimap/internal/logging"
	"poimap/internal/mutation"
	"poimap/internal/poi"
)

// DefaultLimit is the feature cap when the request names none.
const DefaultLimit = 5000

type insertInput struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
	Name string  `validate:"max=500"`
}

type deleteInput struct {
	ID int64 `validate:"gt=0"`
}

type listInput struct {
	Limit int `validate:"gte=0"`
}

type errorResponse struct {
	Error string `json:"error"`
	ID    *int64 `json:"id,omitempty"`
}

type insertResponse struct {
	ID int64 `json:"id"`
}

type deleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      int64  `json:"id"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) listPOI(w http.ResponseWriter, r *http.Request) {
	p := params{query: r.URL.Query()}
	q := poi.Query{Limit: DefaultLimit}
	for _, b := range []struct {
		key string
		dst **float64
	}{
		{"minlon", &q.MinLon},
		{"minlat", &q.MinLat},
		{"maxlon", &q.MaxLon},
		{"maxlat", &q.MaxLat},
	} {
		if _, ok := p.lookup(b.key); !ok {
			continue
		}
		v, ok := p.number(b.key)
		if !ok {
			writeError(w, http.StatusBadRequest, b.key+" must be numeric")
			return
		}
		*b.dst = &v
	}
	if _, ok := p.lookup("limit"); ok {
		n, ok := p.integer("limit")
		in := listInput{Limit: int(n)}
		if !ok || s.validate.Struct(in) != nil {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		q.Limit = in.Limit
	}

	fc, err := s.store.FeatureCollection(r.Context(), q)
	if err != nil {
		logging.Error().Err(err).Msg("fetch poi")
		writeError(w, http.StatusInternalServerError, "failed to fetch POI")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fc)
}

func (s *Server) insertPOI(w http.ResponseWriter, r *http.Request) {
	p, err := readParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lat, latOK := p.number("lat")
	lon, lonOK := p.number("lon")
	if !latOK || !lonOK {
		writeError(w, http.StatusBadRequest, "lat and lon are required and must be numeric")
		return
	}
	in := insertInput{Lat: lat, Lon: lon, Name: s.opts.DefaultName}
	if name, ok := p.text("name"); ok {
		in.Name = name
	}
	if err := s.validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, insertRejection(err))
		return
	}

	id, err := s.store.Insert(r.Context(), in.Lat, in.Lon, in.Name)
	if err != nil {
		logging.Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("insert poi")
		writeError(w, http.StatusInternalServerError, "failed to insert POI")
		return
	}
	w.Header().Set("Location", s.opts.BasePath+"/poi/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, insertResponse{ID: id})
}

func (s *Server) deletePOI(w http.ResponseWriter, r *http.Request) {
	p, err := readParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, ok := p.integer("id")
	if !ok || s.validate.Struct(deleteInput{ID: id}) != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	deleted, err := s.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, mutation.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: "cannot delete: the POI is referenced by other records",
			ID:    &id,
		})
	case err != nil:
		logging.Error().Err(err).Int64("id", id).Msg("delete poi")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to delete POI", ID: &id})
	case !deleted:
		writeJSON(w, http.StatusNotFound, deleteResponse{Deleted: false, ID: id, Error: "POI not found"})
	default:
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: true, ID: id})
	}
}

// insertRejection names the first field that failed validation.
func insertRejection(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Name" {
		return "name must be at most 500 characters"
	}
	return "invalid coordinates"
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
