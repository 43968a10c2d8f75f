package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-plan/internal/config"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(j *JWT) *gin.Engine {
	r := gin.New()
	r.GET("/users/:id", j.Auth(), Owner(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsOwnToken(t *testing.T) {
	j := NewJWT(config.AuthConfig{JWTSecret: "s3cret", TokenTTL: 7 * 24 * time.Hour})
	tok, err := j.Issue("u1", "Ada")
	require.NoError(t, err)

	w := get(newRouter(j), "/users/u1", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.Empty(t, w.Header().Get("X-New-Token"))
}

func TestAuthRejects(t *testing.T) {
	j := NewJWT(config.AuthConfig{JWTSecret: "s3cret", TokenTTL: time.Hour})
	other := NewJWT(config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour})
	good, err := j.Issue("u1", "Ada")
	require.NoError(t, err)
	forged, err := other.Issue("u1", "Ada")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	r := newRouter(j)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/users/u1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/users/u1", forged).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/users/u1", none).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/users/u2", good).Code)
}

func TestAuthExpiredToken(t *testing.T) {
	j := NewJWT(config.AuthConfig{JWTSecret: "s3cret", TokenTTL: time.Hour})
	tok, err := j.Issue("u1", "Ada")
	require.NoError(t, err)

	j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, http.StatusUnauthorized, get(newRouter(j), "/users/u1", tok).Code)
}

func TestAuthRenewsNearExpiry(t *testing.T) {
	j := NewJWT(config.AuthConfig{JWTSecret: "s3cret", TokenTTL: 2 * time.Hour})
	tok, err := j.Issue("u1", "Ada")
	require.NoError(t, err)

	w := get(newRouter(j), "/users/u1", tok)
	require.Equal(t, http.StatusOK, w.Code)
	renewed := w.Header().Get("X-New-Token")
	require.NotEmpty(t, renewed)
	assert.Equal(t, http.StatusOK, get(newRouter(j), "/users/u1", renewed).Code)
}
