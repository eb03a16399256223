package controller

import (
	"log"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealerdesk/models"
	"dealerdesk/utils"
)

// AdminController exposes the privileged user-management operations. All
// routes sit behind AdminOnly.
type AdminController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAdminController(db *gorm.DB, logger *log.Logger) *AdminController {
	return &AdminController{
		DB:     db,
		Logger: logger,
	}
}

// GetUsers lists all accounts with their roles.
func (ac *AdminController) GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := ac.DB.Preload("Role").Order("created_at ASC").Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}
	return c.JSON(utils.SuccessResponse(users))
}

// CreateUser provisions an account with an explicit role.
func (ac *AdminController) CreateUser(c *fiber.Ctx) error {
	var input struct {
		Email            string `json:"email" validate:"required,email"`
		Password         string `json:"password" validate:"required,min=8"`
		FullName         string `json:"full_name" validate:"required,max=100"`
		Role             string `json:"role" validate:"required,oneof=admin user"`
		AgentPhoneNumber string `json:"agent_phone_number" validate:"omitempty,e164"`
		Designation      string `json:"designation" validate:"omitempty,max=100"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := checkmail.ValidateFormat(input.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
	}

	email := strings.ToLower(input.Email)

	var existing models.User
	if err := ac.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "An account with this email already exists", nil)
	}

	user := models.User{
		Email:            email,
		FullName:         input.FullName,
		AgentPhoneNumber: input.AgentPhoneNumber,
		Designation:      input.Designation,
		IsActive:         true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.UserRole{UserID: user.ID, Role: input.Role}).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserPreference{UserID: user.ID}).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	ac.Logger.Printf("Admin created user %d (%s) with role %s", user.ID, user.Email, input.Role)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

// DeleteUser removes an account. The deleted user's leads drop back into
// the pool rather than disappearing with the account.
func (ac *AdminController) DeleteUser(c *fiber.Ctx) error {
	actor := c.Locals("user").(*models.User)
	userID := utils.ParseUint(c.Params("id"))

	if userID == actor.ID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "You cannot delete your own account", nil)
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Lead{}).Where("owner_id = ?", user.ID).
			Updates(map[string]interface{}{"owner_id": nil, "claimed_at": nil}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Conversation{}).Where("assigned_to = ?", user.ID).
			Update("assigned_to", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserPreference{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete user", err)
	}

	ac.Logger.Printf("Admin %d deleted user %d (%s)", actor.ID, user.ID, user.Email)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "User deleted successfully",
	}))
}

// UpdateUserRole changes an account's role or deactivates it.
func (ac *AdminController) UpdateUserRole(c *fiber.Ctx) error {
	var input struct {
		Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
		IsActive *bool   `json:"is_active"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var user models.User
	if err := ac.DB.Preload("Role").First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	if input.Role != nil {
		if err := ac.DB.Model(&models.UserRole{}).Where("user_id = ?", user.ID).
			Update("role", *input.Role).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update role", err)
		}
	}
	if input.IsActive != nil {
		if err := ac.DB.Model(&user).Update("is_active", *input.IsActive).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update account", err)
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "User updated",
	}))
}
