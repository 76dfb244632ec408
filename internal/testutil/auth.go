package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"civicreport/internal/auth"
)

// AuthHelper issues tokens for handler tests.
type AuthHelper struct {
	JWTSecret []byte
}

func NewAuthHelper() *AuthHelper {
	return &AuthHelper{JWTSecret: []byte("test-secret-key-for-testing-only")}
}

// GenerateToken issues a signed token for the given actor.
func (h *AuthHelper) GenerateToken(userID uint, email string, actor auth.ActorType, roles []string) (string, error) {
	claims := auth.Claims{
		UserID: userID,
		Email:  email,
		Actor:  actor,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// AddAuthHeader attaches a bearer token to the request.
func (h *AuthHelper) AddAuthHeader(t *testing.T, req *http.Request, userID uint, email string, actor auth.ActorType, roles []string) {
	t.Helper()
	token, err := h.GenerateToken(userID, email, actor, roles)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// NewAuthedRequest builds a test request carrying a valid bearer token.
func (h *AuthHelper) NewAuthedRequest(t *testing.T, method, target string, userID uint, actor auth.ActorType, roles []string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	h.AddAuthHeader(t, req, userID, "test@test.local", actor, roles)
	return req
}
