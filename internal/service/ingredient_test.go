package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

func TestListIngredientsPrefixSearch(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ingredients := service.NewIngredientService(db)

	testhelpers.CreateIngredient(t, db, "flour", "g")
	testhelpers.CreateIngredient(t, db, "Flaxseed", "g")
	testhelpers.CreateIngredient(t, db, "sugar", "g")

	found, err := ingredients.ListIngredients(context.Background(), "fl")
	require.NoError(t, err)
	require.Len(t, found, 2)
	// Case-insensitive, ordered by name.
	assert.Equal(t, "Flaxseed", found[0].Name)
	assert.Equal(t, "flour", found[1].Name)

	found, err = ingredients.ListIngredients(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

func TestListIngredientsSearchIsLiteral(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ingredients := service.NewIngredientService(db)

	testhelpers.CreateIngredient(t, db, "100% cocoa", "g")
	testhelpers.CreateIngredient(t, db, "100g chocolate", "g")
	testhelpers.CreateIngredient(t, db, "sea salt", "g")
	testhelpers.CreateIngredient(t, db, "s_a special", "g")

	// "%" in the term must not act as a wildcard.
	found, err := ingredients.ListIngredients(context.Background(), "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% cocoa", found[0].Name)

	// "_" must not match an arbitrary character.
	found, err = ingredients.ListIngredients(context.Background(), "s_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "s_a special", found[0].Name)
}

func TestGetIngredientNotFound(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ingredients := service.NewIngredientService(db)

	_, err := ingredients.GetIngredient(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
