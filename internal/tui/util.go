package tui

import (
	"fmt"
	"math"
	"sort"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// gridStep picks a graticule spacing in degrees so that neighbouring lines
// are at least minPx pixels apart.
func gridStep(pxPerDegree, minPx float64) float64 {
	for _, s := range []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 15, 30, 45, 90} {
		if s*pxPerDegree >= minPx {
			return s
		}
	}
	return 90
}

// formatValue renders a property value for the attribute table.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return fmt.Sprintf("%.0f", t)
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
