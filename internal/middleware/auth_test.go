package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (s *stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	return s.claims, s.err
}

func newAuthRouter(v middleware.TokenValidator, optional bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mw := middleware.AuthMiddleware(v)
	if optional {
		mw = middleware.OptionalAuthMiddleware(v)
	}
	r.GET("/probe", mw, func(c *gin.Context) {
		viewer := middleware.ViewerID(c)
		if viewer == nil {
			c.JSON(http.StatusOK, gin.H{"viewer": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"viewer": viewer.String()})
	})
	return r
}

func probe(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "ada"}}

	t.Run("missing header", func(t *testing.T) {
		w := probe(newAuthRouter(valid, false), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := probe(newAuthRouter(valid, false), "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := probe(newAuthRouter(&stubValidator{err: errors.New("expired")}, false), "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := probe(newAuthRouter(valid, false), "Bearer abc")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "ada"}}

	t.Run("anonymous passes with nil viewer", func(t *testing.T) {
		w := probe(newAuthRouter(valid, true), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "null")
	})

	t.Run("present but invalid token is rejected", func(t *testing.T) {
		w := probe(newAuthRouter(&stubValidator{err: errors.New("expired")}, true), "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token identifies viewer", func(t *testing.T) {
		w := probe(newAuthRouter(valid, true), "Bearer abc")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}
