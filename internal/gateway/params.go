package gateway

import (
	"bytes"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var errMalformedBody = errors.New("malformed JSON body")

// params resolves request parameters from the JSON body first, then from
// the query string.
type params struct {
	body  map[string]any
	query map[string][]string
}

func readParams(r *http.Request) (params, error) {
	p := params{query: r.URL.Query()}
	if r.Body == nil || r.Body == http.NoBody {
		return p, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return p, errMalformedBody
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return p, errMalformedBody
	}
	p.body = body
	return p, nil
}

// lookup returns the raw value for key and whether it was supplied at all.
func (p params) lookup(key string) (any, bool) {
	if v, ok := p.body[key]; ok && v != nil {
		return v, true
	}
	if vs, ok := p.query[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return nil, false
}

// number returns key as a finite number.
func (p params) number(key string) (float64, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return math.NaN(), false
	}
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return math.NaN(), false
		}
		f = n
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN(), false
		}
		f = n
	default:
		return math.NaN(), false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f, false
	}
	return f, true
}

// integer returns key as an integer. Fractional values are rejected.
func (p params) integer(key string) (int64, bool) {
	f, ok := p.number(key)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func (p params) text(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}
