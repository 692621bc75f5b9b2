package pdf

import "github.com/pdfcpu/pdfcpu/pkg/api"

// PageCount returns the number of pages of a PDF, or 0 when the document
// cannot be read (encrypted, corrupt). Admission records 0 as "unknown".
func PageCount(path string) int {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0
	}
	return n
}
