package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// ProjectMetrics are the four project rows.
type ProjectMetrics struct {
	Total   Metrics `json:"total"`
	Min     Metrics `json:"min"`
	Max     Metrics `json:"max"`
	Average Metrics `json:"average"`
}

// Aggregate builds the project rows. Total comes from the merged
// ProjectData (with the precomputed coverage, if any); Min, Max and
// Average fold the file rows field by field and are reclassified. An
// empty file set yields zero rows.
func Aggregate(files []FileMetrics, data ProjectData, t Thresholds, precomputed *float64) ProjectMetrics {
	if len(files) == 0 {
		return ProjectMetrics{}
	}

	minM := files[0].Metrics
	maxM := files[0].Metrics
	sum := files[0].Metrics
	for _, f := range files[1:] {
		minM = minM.Min(f.Metrics)
		maxM = maxM.Max(f.Metrics)
		sum = sum.Add(f.Metrics)
	}

	return ProjectMetrics{
		Total:   FromProjectData(data, t, precomputed),
		Min:     minM.Classify(t),
		Max:     maxM.Classify(t),
		Average: sum.Div(float64(len(files))).Classify(t),
	}
}

// ComplexFiles returns the names of files classified complex in
// dimension d, in input order.
func ComplexFiles(files []FileMetrics, d Dimension) []string {
	var out []string
	for _, f := range files {
		if f.Metrics.Dimension(d).IsComplex {
			out = append(out, f.Name)
		}
	}
	return out
}

// SortKey selects the value files and functions are ordered by.
type SortKey string

// Sort keys.
const (
	SortWCC   SortKey = "wcc"
	SortCRAP  SortKey = "crap"
	SortSKUNK SortKey = "skunk"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case SortWCC, SortCRAP, SortSKUNK:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want wcc, crap or skunk)", s)
}

// value reads the key from the cyclomatic dimension.
func (k SortKey) value(m Metrics) float64 {
	switch k {
	case SortCRAP:
		return m.Cyclomatic.CRAP
	case SortSKUNK:
		return m.Cyclomatic.SKUNK
	default:
		return m.Cyclomatic.WCC
	}
}

// SortFiles orders files, and the functions of each file, by key
// descending with ascending name as tie-break.
func SortFiles(files []FileMetrics, key SortKey) {
	sort.Slice(files, func(i, j int) bool {
		return less(key.value(files[i].Metrics), key.value(files[j].Metrics), files[i].Name, files[j].Name)
	})
	for i := range files {
		fns := files[i].Functions
		sort.Slice(fns, func(a, b int) bool {
			return less(key.value(fns[a].Metrics), key.value(fns[b].Metrics), fns[a].Name, fns[b].Name)
		})
	}
}

func less(vi, vj float64, ni, nj string) bool {
	if vi != vj {
		return vi > vj
	}
	return ni < nj
}
