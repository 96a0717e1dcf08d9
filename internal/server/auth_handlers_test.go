package server

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func registerUser(t *testing.T, app *fiber.App, email string) map[string]any {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", map[string]any{
		"email":       email,
		"password":    "StrongPass1",
		"displayName": "Jane Doe",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decodeJSON(t, resp)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	body := registerUser(t, app, "jane@example.com")
	assert.Equal(t, "jane@example.com", body["email"])
	assert.Equal(t, "Jane Doe", body["displayName"])
	assert.NotZero(t, body["uid"])
	assert.NotEmpty(t, body["customToken"])
}

func TestRegister_ErrorMessages(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	registerUser(t, app, "taken@example.com")

	tests := []struct {
		name    string
		payload map[string]any
		wantMsg string
	}{
		{
			"duplicate email",
			map[string]any{"email": "taken@example.com", "password": "StrongPass1", "displayName": "Jane"},
			"User with this email already exists.",
		},
		{
			"invalid email",
			map[string]any{"email": "not-an-email", "password": "StrongPass1", "displayName": "Jane"},
			"Invalid email address.",
		},
		{
			"weak password",
			map[string]any{"email": "new@example.com", "password": "weak", "displayName": "Jane"},
			"Password too weak. Use a stronger password.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", tt.payload)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			body := decodeJSON(t, resp)
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestSessionExchange_EstablishesCookie(t *testing.T) {
	t.Parallel()
	_, app := newTestServerWithRedis(t, newMiniredisClient(t))

	reg := registerUser(t, app, "jane@example.com")
	customToken := reg["customToken"].(string)

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/session", map[string]any{
		"token": customToken,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	assert.True(t, cookie.HttpOnly)

	// The cookie authenticates the session endpoint.
	resp = doJSON(t, app, fiber.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])

	// The exchange token is single use.
	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/session", map[string]any{
		"token": customToken,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionExchange_RejectsSessionToken(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	registerUser(t, app, "jane@example.com")
	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/signin", map[string]any{
		"email":    "jane@example.com",
		"password": "StrongPass1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)

	// A session token is not redeemable as an exchange token.
	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/session", map[string]any{
		"token": cookie.Value,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	registerUser(t, app, "jane@example.com")

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/api/auth/signin", map[string]any{
			"email":    "jane@example.com",
			"password": "WrongPass1",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/api/auth/signin", map[string]any{
			"email":    "ghost@example.com",
			"password": "StrongPass1",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("success sets cookie", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/api/auth/signin", map[string]any{
			"email":    "jane@example.com",
			"password": "StrongPass1",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeJSON(t, resp)
		assert.Equal(t, true, body["success"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "jane@example.com", user["email"])

		cookie := sessionCookie(t, resp)
		assert.True(t, cookie.HttpOnly)
	})
}

func TestSignOut_RevokesSession(t *testing.T) {
	t.Parallel()
	_, app := newTestServerWithRedis(t, newMiniredisClient(t))

	registerUser(t, app, "jane@example.com")
	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/signin", map[string]any{
		"email":    "jane@example.com",
		"password": "StrongPass1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)

	resp = doJSON(t, app, fiber.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/signout", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, true, body["success"])

	// The revoked token no longer authenticates, even if the client kept it.
	resp = doJSON(t, app, fiber.MethodGet, "/api/auth/session", nil, cookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionInfo_RequiresAuth(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
