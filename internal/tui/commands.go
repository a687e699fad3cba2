package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"poimap/internal/featurecache"
	"poimap/internal/geom"
	"poimap/internal/logging"
	"poimap/internal/mutation"
)

const (
	loadTimeout     = mutation.RefreshTimeout
	mutationTimeout = 15 * time.Second
	importTimeout   = 5 * time.Minute
)

type loadDoneMsg struct {
	extent geom.Extent
	report featurecache.Report
}

type createdMsg struct {
	id       int64
	lon, lat float64
	err      error
}

type deletedMsg struct {
	id      int64
	deleted bool
	err     error
}

type refreshedMsg struct {
	report featurecache.Report
	err    error
}

type importDoneMsg struct {
	path    string
	created int
	invalid int
	failed  int
	err     error
}

func loadCmd(c *featurecache.Cache, e geom.Extent, zoom float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return loadDoneMsg{extent: e, report: c.Load(ctx, e, zoom)}
	}
}

func refreshCmd(c *featurecache.Cache) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		r, err := c.Refresh(ctx)
		return refreshedMsg{report: r, err: err}
	}
}

func createCmd(g *mutation.Gateway, lon, lat float64, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		id, err := g.Create(ctx, lon, lat, name)
		return createdMsg{id: id, lon: lon, lat: lat, err: err}
	}
}

func deleteCmd(g *mutation.Gateway, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		ok, err := g.Delete(ctx, id)
		return deletedMsg{id: id, deleted: ok, err: err}
	}
}

// importCmd creates one POI per placemark in path. Invalid coordinates are
// counted and skipped; the first backend failure is reported.
func importCmd(g *mutation.Gateway, path string) tea.Cmd {
	return func() tea.Msg {
		out := importDoneMsg{path: path}
		pms, err := geom.LoadPlacemarks(path)
		if err != nil {
			out.err = err
			return out
		}
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()
		for _, p := range pms {
			_, err := g.Create(ctx, p.Point.Lon(), p.Point.Lat(), p.Name)
			var ve *mutation.ValidationError
			switch {
			case err == nil:
				out.created++
			case errors.As(err, &ve):
				out.invalid++
			default:
				out.failed++
				if out.err == nil {
					out.err = err
				}
			}
		}
		logging.Info().Str("path", path).Int("created", out.created).Int("invalid", out.invalid).Int("failed", out.failed).Msg("import finished")
		return out
	}
}
