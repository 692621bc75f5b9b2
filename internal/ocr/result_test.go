package ocr

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateOrdersPages(t *testing.T) {
	// Results arrive in completion order, not page order.
	results := []PageResult{
		{Page: 3, Text: "third"},
		{Page: 1, Text: "first"},
		{Page: 2, Text: "second"},
	}

	text := Aggregate(results)

	pos1 := strings.Index(text, "===== PAGE 1 =====")
	pos2 := strings.Index(text, "===== PAGE 2 =====")
	pos3 := strings.Index(text, "===== PAGE 3 =====")
	require.True(t, pos1 >= 0 && pos2 >= 0 && pos3 >= 0)
	assert.True(t, pos1 < pos2 && pos2 < pos3)

	assert.Contains(t, text, "===== PAGE 1 =====\nfirst\n")
	assert.Contains(t, text, "===== PAGE 2 =====\nsecond\n")
	assert.Contains(t, text, "===== PAGE 3 =====\nthird\n")
}

func TestAggregateOneMarkerPerPage(t *testing.T) {
	var results []PageResult
	for i := 1; i <= 12; i++ {
		results = append(results, PageResult{Page: i, Text: fmt.Sprintf("page %d", i)})
	}

	text := Aggregate(results)

	assert.Equal(t, 12, strings.Count(text, "===== PAGE "))
	for i := 1; i <= 12; i++ {
		assert.Equal(t, 1, strings.Count(text, fmt.Sprintf("===== PAGE %d =====", i)))
	}
}

func TestAggregateKeepsErrorPages(t *testing.T) {
	results := []PageResult{
		{Page: 1, Text: "ok"},
		{Page: 2, Text: "ERROR OCR: boom", Err: true},
	}

	text := Aggregate(results)

	assert.Contains(t, text, "===== PAGE 2 =====\nERROR OCR: boom\n")
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, "", Aggregate(nil))
}
