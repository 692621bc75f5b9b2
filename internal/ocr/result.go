package ocr

import (
	"fmt"
	"sort"
	"strings"
)

// PageResult is the outcome of OCR over a single page. Page numbers are
// 1-based. A page that failed recognition carries a diagnostic marker as its
// text and Err set; it never aborts the remaining pages.
type PageResult struct {
	Page int    `json:"page"`
	Text string `json:"text"`
	Err  bool   `json:"error,omitempty"`
}

// Aggregate concatenates page results into a single blob, one page-boundary
// marker per page, in ascending page order regardless of the order in which
// recognition completed. The input slice is sorted in place.
func Aggregate(results []PageResult) string {
	sort.Slice(results, func(i, j int) bool { return results[i].Page < results[j].Page })

	var sb strings.Builder
	for _, res := range results {
		sb.WriteString(fmt.Sprintf("\n\n===== PAGE %d =====\n%s\n", res.Page, res.Text))
	}
	return sb.String()
}
