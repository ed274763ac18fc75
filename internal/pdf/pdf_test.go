package pdf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/pdf"
	"github.com/platefeed/backend/internal/types"
)

func TestRenderProducesPDF(t *testing.T) {
	items := []types.ShoppingListItem{
		{Name: "flour", Amount: 500, MeasurementUnit: "g"},
		{Name: "egg", Amount: 2, MeasurementUnit: "pcs"},
	}

	data, err := pdf.Render("Shopping list", items)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderEmptyList(t *testing.T) {
	data, err := pdf.Render("Shopping list", nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}
