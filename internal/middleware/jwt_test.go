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

	"github.com/databayt/hogwarts-timetable/internal/models"
	"github.com/databayt/hogwarts-timetable/pkg/config"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, issuedAt time.Time, schoolID string) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID:   "user-1",
		SchoolID: schoolID,
		Role:     models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(24 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func runJWT(t *testing.T, cfg config.JWTConfig, authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/slots", nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req
	JWT(cfg)(c)
	return c, w
}

func TestJWTAcceptsFreshToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: testSecret, Expiration: time.Hour}
	token := mintToken(t, time.Now(), "school-1")

	c, w := runJWT(t, cfg, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	assert.Equal(t, "school-1", value.(*models.JWTClaims).SchoolID)
}

func TestJWTRejectsTokenOlderThanPolicy(t *testing.T) {
	// The upstream exp is still a day away, but the local age cap is an hour.
	cfg := config.JWTConfig{Secret: testSecret, Expiration: time.Hour}
	token := mintToken(t, time.Now().Add(-2*time.Hour), "school-1")

	_, w := runJWT(t, cfg, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMissingSchoolScope(t *testing.T) {
	cfg := config.JWTConfig{Secret: testSecret, Expiration: time.Hour}
	token := mintToken(t, time.Now(), "")

	_, w := runJWT(t, cfg, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	cfg := config.JWTConfig{Secret: testSecret}

	_, w := runJWT(t, cfg, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, w = runJWT(t, cfg, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
