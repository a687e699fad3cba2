package tui

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"poimap/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// importable lists the point files in dir that the import command reads.
func importable(dir string) ([]list.Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.Contains(geom.ImportExtensions, ext) {
			items = append(items, fileItem{title: e.Name(), desc: ext, path: filepath.Join(dir, e.Name())})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).title < items[j].(fileItem).title })
	return items, nil
}

func (m *Model) refreshDir() {
	items, err := importable(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	m.l.SetItems(items)
	if len(items) == 0 && m.showSidebar {
		m.status = "no importable files in " + m.cwd
	}
}
