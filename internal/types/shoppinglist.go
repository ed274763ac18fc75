package types

// ShoppingListItem is one aggregated line of a user's shopping list: the
// summed amount of every line item sharing an ingredient name across the
// recipes in the cart.
type ShoppingListItem struct {
	Name            string `json:"name"`
	Amount          int    `json:"amount"`
	MeasurementUnit string `json:"measurement_unit"`
}
