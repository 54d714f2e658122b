package services

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"majordomo-backend/models"
	"majordomo-backend/testutil"
	"majordomo-backend/utils"
)

func authTestApp(db *gorm.DB) *fiber.App {
	svc := NewAuthService(db)
	app := fiber.New()
	app.Post("/api/auth/login", svc.Login)
	app.Get("/api/auth/dev/token", svc.DevToken)
	return app
}

func loginPayload(home *models.Home, username, password string) map[string]interface{} {
	return map[string]interface{}{
		"username": username,
		"password": password,
		"home_id":  home.ID,
	}
}

func seedCredentialedUser(t *testing.T, db *gorm.DB) (*models.Home, *models.User) {
	t.Helper()
	home, user := seedHomeUser(t, db)
	hash, err := utils.HashPassword("alice123")
	require.NoError(t, err)
	user.PasswordHash = hash
	require.NoError(t, db.Save(user).Error)
	return home, user
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedCredentialedUser(t, db)
	app := authTestApp(db)

	status, body := performJSON(t, app, http.MethodPost, "/api/auth/login",
		loginPayload(home, "alice", "alice123"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, user.ID, body["user_id"])
	assert.Equal(t, home.ID, body["home_id"])

	// The token round-trips through the verifier with the right identity.
	claims, err := utils.VerifyAccessToken(body["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, home.ID, claims.HomeID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedCredentialedUser(t, db)
	app := authTestApp(db)

	status, body := performJSON(t, app, http.MethodPost, "/api/auth/login",
		loginPayload(home, "alice", "wrong"))
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))
}

func TestAuthService_Login_UnknownUserSameError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedCredentialedUser(t, db)
	app := authTestApp(db)

	// Unknown user and bad password are indistinguishable to the caller.
	status, body := performJSON(t, app, http.MethodPost, "/api/auth/login",
		loginPayload(home, "nobody", "alice123"))
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))
}

func TestAuthService_Login_WrongHome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, _ = seedCredentialedUser(t, db)
	other := &models.Home{Name: "Other Home", Slug: "other-home", InviteCode: "othercode"}
	require.NoError(t, db.Create(other).Error)
	app := authTestApp(db)

	status, body := performJSON(t, app, http.MethodPost, "/api/auth/login",
		loginPayload(other, "alice", "alice123"))
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))
}

func TestAuthService_DevToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	app := authTestApp(db)

	status, body := performJSON(t, app, http.MethodGet,
		"/api/auth/dev/token?user_id="+user.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["user"])
	assert.Equal(t, home.ID, body["home_id"])

	claims, err := utils.VerifyAccessToken(body["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_DevToken_DisabledInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	db := testutil.SetupTestDB(t)
	_, user := seedHomeUser(t, db)
	app := authTestApp(db)

	status, body := performJSON(t, app, http.MethodGet,
		"/api/auth/dev/token?user_id="+user.ID, nil)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}

func TestAuthService_DevToken_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	app := authTestApp(db)

	status, body := performJSON(t, app, http.MethodGet,
		"/api/auth/dev/token?user_id=00000000-0000-0000-0000-000000000000", nil)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, body))
}
