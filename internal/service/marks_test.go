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

func TestAddMarkUnknownRecipe(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	marks := service.NewMarkService(db)
	user := testhelpers.CreateUser(t, db, "viewer")

	_, err := marks.AddMark(context.Background(), user.ID, uuid.New(), service.MarkFavorite)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAddMarkDuplicateConflicts(t *testing.T) {
	f := setupRecipeTest(t)
	marks := service.NewMarkService(f.db)
	recipe := f.createRecipe(t, "pancakes", []uuid.UUID{f.tags["breakfast"].ID},
		[]service.LineItemInput{{IngredientID: f.flour.ID, Amount: 100}})

	got, err := marks.AddMark(context.Background(), f.author.ID, recipe.ID, service.MarkFavorite)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)

	_, err = marks.AddMark(context.Background(), f.author.ID, recipe.ID, service.MarkFavorite)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestMarkKindsAreIndependent(t *testing.T) {
	f := setupRecipeTest(t)
	marks := service.NewMarkService(f.db)
	recipe := f.createRecipe(t, "pancakes", []uuid.UUID{f.tags["breakfast"].ID},
		[]service.LineItemInput{{IngredientID: f.flour.ID, Amount: 100}})

	_, err := marks.AddMark(context.Background(), f.author.ID, recipe.ID, service.MarkFavorite)
	require.NoError(t, err)
	// The same recipe can be in the cart too.
	_, err = marks.AddMark(context.Background(), f.author.ID, recipe.ID, service.MarkCart)
	require.NoError(t, err)

	favorited, inCart, err := marks.Annotations(context.Background(), &f.author.ID, []uuid.UUID{recipe.ID})
	require.NoError(t, err)
	assert.True(t, favorited[recipe.ID])
	assert.True(t, inCart[recipe.ID])
}

func TestRemoveMark(t *testing.T) {
	f := setupRecipeTest(t)
	marks := service.NewMarkService(f.db)
	recipe := f.createRecipe(t, "pancakes", []uuid.UUID{f.tags["breakfast"].ID},
		[]service.LineItemInput{{IngredientID: f.flour.ID, Amount: 100}})

	// Removing a never-set mark is an error, not a silent no-op.
	err := marks.RemoveMark(context.Background(), f.author.ID, recipe.ID, service.MarkCart)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = marks.AddMark(context.Background(), f.author.ID, recipe.ID, service.MarkCart)
	require.NoError(t, err)
	require.NoError(t, marks.RemoveMark(context.Background(), f.author.ID, recipe.ID, service.MarkCart))

	// Idempotence is not promised: the second removal reports not found.
	err = marks.RemoveMark(context.Background(), f.author.ID, recipe.ID, service.MarkCart)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAnnotationsAnonymousViewer(t *testing.T) {
	f := setupRecipeTest(t)
	marks := service.NewMarkService(f.db)
	recipe := f.createRecipe(t, "pancakes", []uuid.UUID{f.tags["breakfast"].ID},
		[]service.LineItemInput{{IngredientID: f.flour.ID, Amount: 100}})

	_, err := marks.AddMark(context.Background(), f.author.ID, recipe.ID, service.MarkFavorite)
	require.NoError(t, err)

	favorited, inCart, err := marks.Annotations(context.Background(), nil, []uuid.UUID{recipe.ID})
	require.NoError(t, err)
	assert.False(t, favorited[recipe.ID])
	assert.False(t, inCart[recipe.ID])
}
