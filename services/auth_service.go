package services

import (
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
	"majordomo-backend/utils"
)

// AuthService issues JWT access tokens for household members.
type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// Login handles POST /api/auth/login. Usernames are only unique per home, so
// the client sends the home ID alongside the credentials. A wrong home, a
// missing user and a bad password all produce the same 401.
func (s *AuthService) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		HomeID   string `json:"home_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var user models.User
	err := s.DB.Where("home_id = ? AND username = ?", req.HomeID, req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.New(apperrors.CodeInvalidCredentials))
		}
		return respondError(c, err)
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return respondError(c, apperrors.New(apperrors.CodeInvalidCredentials))
	}

	token, err := utils.CreateAccessToken(user.ID, user.HomeID)
	if err != nil {
		log.Printf("❌ Failed to sign access token for %s: %v", user.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in"})
	}

	log.Printf("✅ Login: %s (home %s)", user.Username, user.HomeID)
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      user.ID,
		"home_id":      user.HomeID,
	})
}

// DevToken handles GET /api/auth/dev/token. Mints a token for any user
// without a password check; disabled in production.
func (s *AuthService) DevToken(c *fiber.Ctx) error {
	if os.Getenv("APP_ENV") == "production" {
		return respondError(c, apperrors.New(apperrors.CodeForbidden).
			WithMessage("Not available in production"))
	}

	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or missing user_id query parameter"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.New(apperrors.CodeUserNotFound).
				WithDetails(map[string]interface{}{"user_id": userID.String()}))
		}
		return respondError(c, err)
	}

	token, err := utils.CreateAccessToken(user.ID, user.HomeID)
	if err != nil {
		log.Printf("❌ Failed to sign access token for %s: %v", user.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mint token"})
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user.Username,
		"home_id":      user.HomeID,
	})
}
