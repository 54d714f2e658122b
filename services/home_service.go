package services

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
	"majordomo-backend/utils"
)

// HomeService manages households and membership. Create and join are the two
// public endpoints of the API; everything else is token-gated.
type HomeService struct {
	DB *gorm.DB
}

func NewHomeService(db *gorm.DB) *HomeService {
	return &HomeService{DB: db}
}

// ListHomes handles GET /api/homes.
func (s *HomeService) ListHomes(c *fiber.Ctx) error {
	var homes []models.Home
	if err := s.DB.Order("created_at ASC").Find(&homes).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(homes)
}

// GetHome handles GET /api/homes/:id.
func (s *HomeService) GetHome(c *fiber.Ctx) error {
	home, ok := s.loadOwnHome(c, "You are not authorized to access this home")
	if !ok {
		return nil
	}
	return c.JSON(home)
}

// HomeUsers handles GET /api/homes/:id/users, the household roster.
func (s *HomeService) HomeUsers(c *fiber.Ctx) error {
	home, ok := s.loadOwnHome(c, "You are not authorized to access this home")
	if !ok {
		return nil
	}

	var users []models.User
	if err := s.DB.Where("home_id = ?", home.ID).Order("created_at ASC").Find(&users).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// CreateHome handles POST /api/homes (public).
func (s *HomeService) CreateHome(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Home name is required").
			WithDetails(map[string]interface{}{"field": "name"}))
	}

	// Pre-check for the structured error; the unique index is the backstop.
	var count int64
	if err := s.DB.Model(&models.Home{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return respondError(c, err)
	}
	if count > 0 {
		return respondError(c, apperrors.New(apperrors.CodeDuplicateHomeName).
			WithDetails(map[string]interface{}{"home_name": req.Name}))
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return respondError(c, err)
	}

	home := models.Home{
		Name:       req.Name,
		Slug:       slug.Make(req.Name),
		InviteCode: code,
	}
	if err := s.DB.Create(&home).Error; err != nil {
		return respondError(c, err)
	}

	log.Printf("✅ Home created: %s (invite code %s)", home.Name, home.InviteCode)
	return c.Status(fiber.StatusCreated).JSON(home)
}

// JoinHome handles POST /api/homes/:id/join (public). Creates a member in
// the home; usernames are unique per home, not globally.
func (s *HomeService) JoinHome(c *fiber.Ctx) error {
	homeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid home ID"})
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Username is required").
			WithDetails(map[string]interface{}{"field": "username"}))
	}
	if req.Password == "" {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Password is required").
			WithDetails(map[string]interface{}{"field": "password"}))
	}

	var home models.Home
	if err := s.DB.First(&home, "id = ?", homeID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.New(apperrors.CodeHomeNotFound).
				WithDetails(map[string]interface{}{"home_id": homeID.String()}))
		}
		return respondError(c, err)
	}

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("home_id = ? AND username = ?", home.ID, req.Username).
		Count(&count).Error; err != nil {
		return respondError(c, err)
	}
	if count > 0 {
		return respondError(c, apperrors.New(apperrors.CodeDuplicateUsername).
			WithDetails(map[string]interface{}{"username": req.Username, "home_id": home.ID}))
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondError(c, err)
	}

	user := models.User{
		HomeID:       home.ID,
		Username:     req.Username,
		PasswordHash: hash,
		Level:        1,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return respondError(c, err)
	}

	log.Printf("✅ %s joined home %s", user.Username, home.Name)
	return c.Status(fiber.StatusCreated).JSON(user)
}

// DeleteHome handles DELETE /api/homes/:id. Own home only.
func (s *HomeService) DeleteHome(c *fiber.Ctx) error {
	home, ok := s.loadOwnHome(c, "Not authorized to delete this home")
	if !ok {
		return nil
	}

	if err := s.DB.Delete(home).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Home deleted"})
}

// loadOwnHome fetches the home from the :id param after checking it is the
// caller's own, writing the error response itself when it is not.
func (s *HomeService) loadOwnHome(c *fiber.Ctx, forbiddenMsg string) (*models.Home, bool) {
	homeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid home ID"})
		return nil, false
	}

	if homeID.String() != currentHomeID(c) {
		_ = respondError(c, apperrors.New(apperrors.CodeUnauthorizedAccess).
			WithMessage(forbiddenMsg).
			WithDetails(map[string]interface{}{
				"home_id":      homeID.String(),
				"your_home_id": currentHomeID(c),
			}))
		return nil, false
	}

	var home models.Home
	if err := s.DB.First(&home, "id = ?", homeID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = respondError(c, apperrors.New(apperrors.CodeHomeNotFound).
				WithDetails(map[string]interface{}{"home_id": homeID.String()}))
		} else {
			_ = respondError(c, err)
		}
		return nil, false
	}
	return &home, true
}
