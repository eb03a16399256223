package controller

import (
	"github.com/gofiber/fiber/v2"

	"dealerdesk/config"
	"dealerdesk/models"
	"dealerdesk/utils"
)

// GetPreferences returns the caller's dashboard preferences, creating the
// default record on first access.
func GetPreferences(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var prefs models.UserPreference
	err := config.DB.Where("user_id = ?", user.ID).
		FirstOrCreate(&prefs, models.UserPreference{UserID: user.ID}).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch preferences", err)
	}

	return c.JSON(utils.SuccessResponse(prefs))
}

// UpdatePreferences saves the caller's dashboard preferences.
func UpdatePreferences(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		VisibleLeadColumns *[]string `json:"visible_lead_columns"`
		DefaultLeadSort    *string   `json:"default_lead_sort" validate:"omitempty,oneof=created_at first_name last_name status"`
		DefaultLeadOrder   *string   `json:"default_lead_order" validate:"omitempty,oneof=asc desc"`
		LeadsPerPage       *int      `json:"leads_per_page" validate:"omitempty,min=10,max=100"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var prefs models.UserPreference
	err := config.DB.Where("user_id = ?", user.ID).
		FirstOrCreate(&prefs, models.UserPreference{UserID: user.ID}).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch preferences", err)
	}

	if input.VisibleLeadColumns != nil {
		prefs.VisibleLeadColumns = *input.VisibleLeadColumns
	}
	if input.DefaultLeadSort != nil {
		prefs.DefaultLeadSort = *input.DefaultLeadSort
	}
	if input.DefaultLeadOrder != nil {
		prefs.DefaultLeadOrder = *input.DefaultLeadOrder
	}
	if input.LeadsPerPage != nil {
		prefs.LeadsPerPage = *input.LeadsPerPage
	}

	if err := config.DB.Save(&prefs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save preferences", err)
	}

	return c.JSON(utils.SuccessResponse(prefs))
}
