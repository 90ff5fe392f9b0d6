package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"filemanager/internal/core/browser"
)

// FilterConfig bundles tuning parameters for filtering the listing.
type FilterConfig struct {
	MinCoverage float64 // minimal share of the query that must match
	MaxSpread   int     // maximal distance between first and last match index
	MaxResults  int     // upper limit of returned results
}

// filterHidden returns indices of entries to show. Dot-entries are dropped
// unless showHidden is set.
func filterHidden(entries []browser.Entry, showHidden bool) []int {
	idx := make([]int, 0, len(entries))
	for i, e := range entries {
		if !showHidden && strings.HasPrefix(e.Name, ".") {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// filterBySubstring performs a simple substring check against the prepared base
// list and returns matching indices limited by cfg.MaxResults.
func filterBySubstring(q string, base []string, idx []int, cfg FilterConfig) []int {
	sub := make([]int, 0, min(cfg.MaxResults, len(idx)))
	for _, i := range idx {
		if strings.Contains(base[i], q) {
			sub = append(sub, i)
			if len(sub) >= cfg.MaxResults {
				break
			}
		}
	}
	return sub
}

// filterByFuzzy applies fuzzy matching on the subset defined by idx and
// filters results based on coverage and spread thresholds from cfg.
// Results keep listing order, so directories stay on top.
func filterByFuzzy(q string, base []string, idx []int, cfg FilterConfig) []int {
	subset := make([]string, len(idx))
	for j, i := range idx {
		subset[j] = base[i]
	}
	matches := fuzzy.Find(q, subset)

	keep := make(map[int]bool, len(matches))
	for _, mt := range matches {
		if matchCoverage(q, mt) < cfg.MinCoverage || matchSpread(mt) > cfg.MaxSpread {
			continue
		}
		keep[mt.Index] = true
		if len(keep) >= cfg.MaxResults {
			break
		}
	}
	if len(keep) == 0 {
		for i := 0; i < len(matches) && i < cfg.MaxResults; i++ {
			keep[matches[i].Index] = true
		}
	}

	out := make([]int, 0, len(keep))
	for j, i := range idx {
		if keep[j] {
			out = append(out, i)
		}
	}
	return out
}

// matchCoverage returns the ratio of matched characters to the query length.
func matchCoverage(q string, m fuzzy.Match) float64 {
	if len(q) == 0 {
		return 1
	}
	return float64(len(m.MatchedIndexes)) / float64(len(q))
}

// matchSpread returns the distance between the first and last matched index.
func matchSpread(m fuzzy.Match) int {
	if len(m.MatchedIndexes) == 0 {
		return 0
	}
	return m.MatchedIndexes[len(m.MatchedIndexes)-1] - m.MatchedIndexes[0]
}

// applyFilter recomputes the visible rows from entries, the hidden toggle and
// the filter query. The cursor stays on the same entry when it is still shown.
func (m *Model) applyFilter() {
	m.refilter(m.selectedName())
}

// refilter is applyFilter for a listing that was just replaced; current is
// the name under the cursor before the replacement.
func (m *Model) refilter(current string) {
	idx := filterHidden(m.entries, m.showHidden)
	q := browser.SortKey(strings.TrimSpace(m.filter.query))
	if q != "" {
		base := make([]string, len(m.entries))
		for i, e := range m.entries {
			base[i] = browser.SortKey(e.Name)
		}
		sub := filterBySubstring(q, base, idx, m.filterCfg)
		if len(sub) == 0 {
			sub = filterByFuzzy(q, base, idx, m.filterCfg)
		}
		idx = sub
	}
	m.filter.visible = idx
	m.selectName(current)
}
