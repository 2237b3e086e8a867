package serverutils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/private", NewJwtMiddleware(secret), func(ctx *fiber.Ctx) error {
		sub, _ := ctx.Locals("subject").(string)
		return ctx.SendString("ok " + sub)
	})
	return app
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func status(t *testing.T, app *fiber.App, target, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestJwtDisabledWithoutSecret(t *testing.T) {
	assert.Equal(t, http.StatusOK, status(t, protectedApp(""), "/private", ""))
}

func TestJwtGuardsRoutes(t *testing.T) {
	app := protectedApp("s3cret")
	valid := sign(t, jwt.SigningMethodHS256, []byte("s3cret"), jwt.MapClaims{
		"sub": "me",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	assert.Equal(t, http.StatusUnauthorized, status(t, app, "/private", ""))
	assert.Equal(t, http.StatusOK, status(t, app, "/private", valid))
	assert.Equal(t, http.StatusOK, status(t, app, "/private?token="+valid, ""))

	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "me"})
	assert.Equal(t, http.StatusUnauthorized, status(t, app, "/private", wrongKey))

	expired := sign(t, jwt.SigningMethodHS256, []byte("s3cret"), jwt.MapClaims{
		"sub": "me",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, status(t, app, "/private", expired))

	// Only HS256 is accepted even with the right key.
	hs512 := sign(t, jwt.SigningMethodHS512, []byte("s3cret"), jwt.MapClaims{"sub": "me"})
	assert.Equal(t, http.StatusUnauthorized, status(t, app, "/private", hs512))
}
