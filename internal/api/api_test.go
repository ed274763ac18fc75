package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

type apiFixture struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

func setupAPITest(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	auth := service.NewAuthService(db, "test-secret")
	subscriptions := service.NewSubscriptionService(db)
	recipes := service.NewRecipeService(db)
	marks := service.NewMarkService(db)
	shoppingList := service.NewShoppingListService(db)
	images := service.NewImageService(service.NewLocalStorage(t.TempDir()))

	userHandler := api.NewUserHandler(auth, subscriptions)
	tagHandler := api.NewTagHandler(service.NewTagService(db))
	ingredientHandler := api.NewIngredientHandler(service.NewIngredientService(db))
	recipeHandler := api.NewRecipeHandler(recipes, marks, subscriptions, shoppingList, images, auth)

	engine := router.SetupRouter(userHandler, tagHandler, ingredientHandler, recipeHandler, nil)
	return &apiFixture{db: db, router: engine, auth: auth}
}

// registerUser creates an account through the API and returns a bearer token.
func (f *apiFixture) registerUser(t *testing.T, username string) string {
	t.Helper()
	body := map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "password123",
	}
	resp := f.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var payload struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.AuthToken)
	return payload.AuthToken
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func testImageURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4E, 0x47})
}

// seedCatalog creates a tag and two ingredients directly in the store and
// returns their IDs for use in write requests.
func (f *apiFixture) seedCatalog(t *testing.T) (tagID, flourID, eggID uuid.UUID) {
	t.Helper()
	tag := testhelpers.CreateTag(t, f.db, "Breakfast", "#E26C2D", "breakfast")
	flour := testhelpers.CreateIngredient(t, f.db, "flour", "g")
	egg := testhelpers.CreateIngredient(t, f.db, "egg", "pcs")
	return tag.ID, flour.ID, egg.ID
}

func (f *apiFixture) seedTag(t *testing.T, name, color, slug string) uuid.UUID {
	t.Helper()
	return testhelpers.CreateTag(t, f.db, name, color, slug).ID
}

func (f *apiFixture) recipeBody(name string, tagID uuid.UUID, items []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"text":         "instructions",
		"cooking_time": 20,
		"image":        testImageURI(),
		"tags":         []string{tagID.String()},
		"ingredients":  items,
	}
}

func (f *apiFixture) createRecipe(t *testing.T, token string, name string, tagID, ingredientID uuid.UUID) uuid.UUID {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/recipes", token, f.recipeBody(name, tagID, []map[string]interface{}{
		{"id": ingredientID.String(), "amount": 100},
	}))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var payload struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	return payload.ID
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), dst), resp.Body.String())
}

func recipePath(id uuid.UUID, suffix string) string {
	return fmt.Sprintf("/api/recipes/%s%s", id, suffix)
}
