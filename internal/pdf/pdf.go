// Package pdf renders a shopping list as a fixed-layout document, one line
// per aggregated ingredient.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/platefeed/backend/internal/types"
)

// Render lays the title centered at the top of an A4 page and each item as
// one "- name: amount unit" line below it. An empty item list still yields a
// valid document carrying only the title.
func Render(title string, items []types.ShoppingListItem) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 12, title, "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 12)
	for _, item := range items {
		line := fmt.Sprintf("- %s: %d %s", item.Name, item.Amount, item.MeasurementUnit)
		doc.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
