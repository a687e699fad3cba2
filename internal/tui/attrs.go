package tui

import (
	"fmt"
	"strings"

	table "github.com/charmbracelet/bubbles/table"

	"poimap/internal/poi"
)

// inspectText is the popup body for an inspected POI.
func inspectText(p poi.POI) string {
	lines := []string{
		fmt.Sprintf("id:   %d", p.ID),
		fmt.Sprintf("name: %s", p.Name),
		fmt.Sprintf("lon:  %.6f", p.Lon),
		fmt.Sprintf("lat:  %.6f", p.Lat),
	}
	if n := len(p.Props); n > 0 {
		lines = append(lines, fmt.Sprintf("%d properties (v to list)", n))
	}
	return strings.Join(lines, "\n")
}

// attrRows lists every attribute of p, identity first, then properties by key.
func attrRows(p poi.POI) []table.Row {
	rows := []table.Row{
		{"id", fmt.Sprintf("%d", p.ID)},
		{"name", p.Name},
		{"lon", fmt.Sprintf("%.6f", p.Lon)},
		{"lat", fmt.Sprintf("%.6f", p.Lat)},
	}
	for _, k := range sortedKeys(p.Props) {
		if k == "id" || k == "name" {
			continue
		}
		rows = append(rows, table.Row{k, formatValue(p.Props[k])})
	}
	return rows
}

// refreshAttrs rebuilds the table from the inspected POI.
func (m *Model) refreshAttrs() {
	if m.inspected == nil {
		m.showAttrs = false
		return
	}
	rows := attrRows(*m.inspected)
	keyW, valW := 8, 12
	for _, r := range rows {
		keyW = max(keyW, min(24, len(r[0])+2))
		valW = max(valW, min(40, len(r[1])+2))
	}
	// Clear rows first so the column count never disagrees with a row.
	m.tbl.SetRows(nil)
	m.tbl.SetColumns([]table.Column{{Title: "attribute", Width: keyW}, {Title: "value", Width: valW}})
	m.tbl.SetRows(rows)
}
