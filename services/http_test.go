package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"majordomo-backend/models"
)

// testApp builds a fiber app with the caller's identity pre-set, the way the
// auth middleware would after verifying a token.
func testApp(user *models.User, register func(app *fiber.App)) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("user_id", user.ID)
			c.Locals("home_id", user.HomeID)
		}
		return c.Next()
	})
	register(app)
	return app
}

func perform(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// performJSON runs one request and decodes the object body.
func performJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	status, raw := perform(t, app, method, path, payload)
	decoded := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return status, decoded
}

// performList runs one request and decodes the array body.
func performList(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, []map[string]interface{}) {
	t.Helper()
	status, raw := perform(t, app, method, path, payload)
	var decoded []map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return status, decoded
}

// errorCode digs the machine code out of a {"detail": {...}} error body.
func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	detail, ok := body["detail"].(map[string]interface{})
	require.True(t, ok, "expected detail object in %v", body)
	code, _ := detail["code"].(string)
	return code
}
