package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	f := setupAPITest(t)

	resp := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"username": "x",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "short@example.com",
		"username": "short",
		"password": "tiny",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	f := setupAPITest(t)
	f.registerUser(t, "ada")

	resp := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "ada@example.com",
		"username": "ada2",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupAPITest(t)
	f.registerUser(t, "ada")

	resp := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	f := setupAPITest(t)
	token := f.registerUser(t, "ada")

	resp := f.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = f.do(t, http.MethodGet, "/api/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = f.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var me struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	decodeJSON(t, resp, &me)
	assert.Equal(t, "ada", me.Username)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestSubscribeFlow(t *testing.T) {
	f := setupAPITest(t)
	readerToken := f.registerUser(t, "reader")
	f.registerUser(t, "author")

	// Resolve the author's ID through the public listing.
	resp := f.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var listing struct {
		Results []struct {
			ID       uuid.UUID `json:"id"`
			Username string    `json:"username"`
		} `json:"results"`
	}
	decodeJSON(t, resp, &listing)
	var authorID uuid.UUID
	for _, u := range listing.Results {
		if u.Username == "author" {
			authorID = u.ID
		}
	}
	require.NotEqual(t, uuid.Nil, authorID)

	resp = f.do(t, http.MethodPost, "/api/users/"+authorID.String()+"/subscribe", readerToken, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var profile struct {
		Username     string `json:"username"`
		IsSubscribed bool   `json:"is_subscribed"`
	}
	decodeJSON(t, resp, &profile)
	assert.Equal(t, "author", profile.Username)
	assert.True(t, profile.IsSubscribed)

	// Subscribing twice is a conflict, surfaced as a 400.
	resp = f.do(t, http.MethodPost, "/api/users/"+authorID.String()+"/subscribe", readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodGet, "/api/users/subscriptions", readerToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var subs struct {
		Count   int64             `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	decodeJSON(t, resp, &subs)
	assert.EqualValues(t, 1, subs.Count)

	resp = f.do(t, http.MethodDelete, "/api/users/"+authorID.String()+"/subscribe", readerToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	// Unsubscribing again reports the missing edge.
	resp = f.do(t, http.MethodDelete, "/api/users/"+authorID.String()+"/subscribe", readerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSubscribeToSelfRejected(t *testing.T) {
	f := setupAPITest(t)
	token := f.registerUser(t, "ada")

	resp := f.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var me struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, resp, &me)

	resp = f.do(t, http.MethodPost, "/api/users/"+me.ID.String()+"/subscribe", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetUserAnnotatesSubscription(t *testing.T) {
	f := setupAPITest(t)
	readerToken := f.registerUser(t, "reader")
	f.registerUser(t, "author")

	resp := f.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var listing struct {
		Results []struct {
			ID       uuid.UUID `json:"id"`
			Username string    `json:"username"`
		} `json:"results"`
	}
	decodeJSON(t, resp, &listing)
	var authorID uuid.UUID
	for _, u := range listing.Results {
		if u.Username == "author" {
			authorID = u.ID
		}
	}

	resp = f.do(t, http.MethodPost, "/api/users/"+authorID.String()+"/subscribe", readerToken, nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var profile struct {
		IsSubscribed bool `json:"is_subscribed"`
	}
	resp = f.do(t, http.MethodGet, "/api/users/"+authorID.String(), readerToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeJSON(t, resp, &profile)
	assert.True(t, profile.IsSubscribed)

	// Anonymous viewers never see is_subscribed set.
	resp = f.do(t, http.MethodGet, "/api/users/"+authorID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeJSON(t, resp, &profile)
	assert.False(t, profile.IsSubscribed)
}
