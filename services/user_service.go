package services

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
	"majordomo-backend/utils"
)

const maxAvatarSize = 5 * 1024 * 1024

// UserService exposes member stats and the manual XP/gold grant endpoints.
// All balance changes go through ProgressionService so level recomputation
// stays in one place.
type UserService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewUserService(db *gorm.DB, progression *ProgressionService) *UserService {
	return &UserService{DB: db, Progression: progression}
}

// GetMe handles GET /api/users/me.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.New(apperrors.CodeUserNotFound).
				WithDetails(map[string]interface{}{"user_id": currentUserID(c)}))
		}
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/users, the caller's home roster.
func (s *UserService) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := s.DB.Where("home_id = ?", currentHomeID(c)).
		Order("created_at ASC").Find(&users).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id. Unlike the mutation endpoints this one
// distinguishes a missing user from a cross-home one.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.New(apperrors.CodeUserNotFound).
				WithDetails(map[string]interface{}{"user_id": userID.String()}))
		}
		return respondError(c, err)
	}

	if user.HomeID != currentHomeID(c) {
		return respondError(c, apperrors.New(apperrors.CodeForbidden).
			WithMessage("Not authorized to access this user").
			WithDetails(map[string]interface{}{"user_id": user.ID}))
	}

	return c.JSON(user)
}

// GrantXP handles POST /api/users/:id/xp?amount=. Negative amounts are
// rejected inside AwardXP; XP only ever grows.
func (s *UserService) GrantXP(c *fiber.Ctx) error {
	amount, ok := queryAmount(c)
	if !ok {
		return nil
	}

	user, ok := s.loadHomeUser(c)
	if !ok {
		return nil
	}

	var updated *models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		updated, txErr = s.Progression.AwardXP(tx, user.ID, amount, "manual grant")
		return txErr
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// GrantGold handles POST /api/users/:id/gold?amount=. This endpoint only
// grants; spending happens through the reward shop, so a negative amount is
// rejected here rather than passed to AwardGold as a spend.
func (s *UserService) GrantGold(c *fiber.Ctx) error {
	amount, ok := queryAmount(c)
	if !ok {
		return nil
	}
	if amount < 0 {
		return respondError(c, apperrors.New(apperrors.CodeNegativeAmount).
			WithDetails(map[string]interface{}{"amount": amount}))
	}

	user, ok := s.loadHomeUser(c)
	if !ok {
		return nil
	}

	var updated *models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		updated, txErr = s.Progression.AwardGold(tx, user.ID, amount, "manual grant")
		return txErr
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// UpdateUser handles PUT /api/users/:id. Admin-style override of the raw
// stats; setting xp recomputes the level unless the request pins one.
func (s *UserService) UpdateUser(c *fiber.Ctx) error {
	user, ok := s.loadHomeUser(c)
	if !ok {
		return nil
	}

	var req struct {
		Level *int `json:"level"`
		XP    *int `json:"xp"`
		Gold  *int `json:"gold"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Level != nil && *req.Level < 1 {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Level must be at least 1").
			WithDetails(map[string]interface{}{"level": *req.Level}))
	}
	if req.XP != nil && *req.XP < 0 {
		return respondError(c, apperrors.New(apperrors.CodeNegativeXP).
			WithDetails(map[string]interface{}{"amount": *req.XP}))
	}
	if req.Gold != nil && *req.Gold < 0 {
		return respondError(c, apperrors.New(apperrors.CodeNegativeAmount).
			WithDetails(map[string]interface{}{"amount": *req.Gold}))
	}

	if req.XP != nil {
		user.XP = *req.XP
		user.Level = LevelForXP(user.XP)
	}
	if req.Level != nil {
		user.Level = *req.Level
	}
	if req.Gold != nil {
		user.Gold = *req.Gold
	}

	if err := s.DB.Save(user).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UploadAvatar handles POST /api/users/:id/avatar. The image goes to R2 when
// object storage is configured, otherwise to the local uploads directory
// served by the static mount.
func (s *UserService) UploadAvatar(c *fiber.Ctx) error {
	user, ok := s.loadHomeUser(c)
	if !ok {
		return nil
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if avatarFile.Size > maxAvatarSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 5MB)"})
	}

	ext := filepath.Ext(avatarFile.Filename)
	if ext == "" {
		ext = ".png"
	}

	if utils.R2Configured() {
		key := "avatars/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(avatarFile, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Failed to upload avatar"})
		}
		user.AvatarURL = url
	} else {
		localPath := utils.GetUploadPath("avatars/" + uuid.NewString() + ext)
		if err := utils.SaveFile(avatarFile, localPath); err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Failed to save avatar"})
		}
		user.AvatarURL = "/" + localPath
	}

	if err := s.DB.Save(user).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id.
func (s *UserService) DeleteUser(c *fiber.Ctx) error {
	user, ok := s.loadHomeUser(c)
	if !ok {
		return nil
	}

	if err := s.DB.Delete(user).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "User deleted"})
}

// loadHomeUser fetches the home-scoped user from the :id param, writing the
// error response itself when the lookup fails. Cross-home IDs read as not
// found so the endpoints do not leak other households' member IDs.
func (s *UserService) loadHomeUser(c *fiber.Ctx) (*models.User, bool) {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
		return nil, false
	}

	var user models.User
	err = s.DB.Where("id = ? AND home_id = ?", userID.String(), currentHomeID(c)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = respondError(c, apperrors.New(apperrors.CodeUserNotFound).
			WithDetails(map[string]interface{}{"user_id": userID.String()}))
		return nil, false
	}
	if err != nil {
		_ = respondError(c, err)
		return nil, false
	}
	return &user, true
}

func queryAmount(c *fiber.Ctx) (int, bool) {
	raw := c.Query("amount")
	if raw == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or missing amount query parameter"})
		return 0, false
	}
	amount, err := strconv.Atoi(raw)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or missing amount query parameter"})
		return 0, false
	}
	return amount, true
}
