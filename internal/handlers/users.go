package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/models"
)

// GetUsers lists all users, for adding participants to meetings.
func GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	result := make([]models.UserInfo, len(users))
	for i, u := range users {
		result[i] = models.UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	}
	return c.JSON(result)
}

// GetUsersByIDs resolves a comma-separated id list to participant info.
func GetUsersByIDs(c *fiber.Ctx) error {
	raw := c.Query("ids")
	if raw == "" {
		return c.JSON([]models.UserInfo{})
	}

	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid user ID",
			})
		}
		ids = append(ids, id)
	}

	var users []models.User
	if err := database.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	result := make([]models.UserInfo, len(users))
	for i, u := range users {
		result[i] = models.UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return c.JSON(result)
}

// GetUserByEmail looks up a user for adding participants by email.
func GetUserByEmail(c *fiber.Ctx) error {
	email := c.Params("email")

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(models.UserInfo{ID: user.ID, Name: user.Name, Email: user.Email})
}
