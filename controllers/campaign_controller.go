package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealerdesk/models"
	"dealerdesk/utils"
)

type CampaignController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCampaignController(db *gorm.DB, logger *log.Logger) *CampaignController {
	return &CampaignController{
		DB:     db,
		Logger: logger,
	}
}

type campaignMessageInput struct {
	DayNumber       int    `json:"day_number" validate:"min=0"`
	SequenceOrder   int    `json:"sequence_order" validate:"required,min=1"`
	MessageTemplate string `json:"message_template" validate:"required"`
}

// validateMessageSequence enforces the sequencing rules: sequence_order
// strictly increasing, day_number non-decreasing.
func validateMessageSequence(messages []campaignMessageInput) error {
	for i := 1; i < len(messages); i++ {
		if messages[i].SequenceOrder <= messages[i-1].SequenceOrder {
			return fmt.Errorf("sequence_order must be strictly increasing (position %d)", i+1)
		}
		if messages[i].DayNumber < messages[i-1].DayNumber {
			return fmt.Errorf("day_number must never decrease (position %d)", i+1)
		}
	}
	return nil
}

func toCampaignMessages(campaignID uint, inputs []campaignMessageInput) []models.TagCampaignMessage {
	out := make([]models.TagCampaignMessage, 0, len(inputs))
	for _, m := range inputs {
		out = append(out, models.TagCampaignMessage{
			CampaignID:      campaignID,
			DayNumber:       m.DayNumber,
			SequenceOrder:   m.SequenceOrder,
			MessageTemplate: m.MessageTemplate,
		})
	}
	return out
}

// GetCampaigns returns all tag campaigns with their message sequences.
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	var campaigns []models.TagCampaign
	if err := cc.DB.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order ASC")
	}).Order("tag ASC").Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	return c.JSON(utils.SuccessResponse(campaigns))
}

// GetCampaign returns one campaign by ID.
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	var campaign models.TagCampaign
	if err := cc.DB.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order ASC")
	}).First(&campaign, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// CreateCampaign binds a new tag to a message sequence. Exactly one
// campaign may own a tag. The reserved Initial_Message tag always maps to
// the system campaign: creating it replaces that campaign's sequence
// instead of adding a second owner.
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Tag                   string                 `json:"tag" validate:"required,max=100"`
		Name                  string                 `json:"name" validate:"required,max=200"`
		IsActive              *bool                  `json:"is_active"`
		TargetPipelineStageID *uint                  `json:"target_pipeline_stage_id"`
		Messages              []campaignMessageInput `json:"messages" validate:"required,min=1,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := validateMessageSequence(input.Messages); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid message sequence", err)
	}

	if input.Tag == models.InitialMessageTag {
		return cc.replaceSystemCampaign(c, input.Name, input.Messages)
	}

	var existing models.TagCampaign
	if err := cc.DB.Where("tag = ?", input.Tag).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "A campaign already owns this tag", nil)
	}

	campaign := models.TagCampaign{
		UserID:                &user.ID,
		Tag:                   input.Tag,
		Name:                  input.Name,
		IsActive:              true,
		TargetPipelineStageID: input.TargetPipelineStageID,
	}
	if input.IsActive != nil {
		campaign.IsActive = *input.IsActive
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&campaign).Error; err != nil {
			return err
		}
		messages := toCampaignMessages(campaign.ID, input.Messages)
		return tx.Create(&messages).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(campaign))
}

// replaceSystemCampaign swaps the Initial_Message sequence in place. The
// system campaign keeps its identity (and existing enrollments) across
// edits; only the messages and display name change.
func (cc *CampaignController) replaceSystemCampaign(c *fiber.Ctx, name string, messages []campaignMessageInput) error {
	var campaign models.TagCampaign
	if err := cc.DB.Where("tag = ?", models.InitialMessageTag).First(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "System campaign is missing", err)
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&models.TagCampaignMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&campaign).Update("name", name).Error; err != nil {
			return err
		}
		newMessages := toCampaignMessages(campaign.ID, messages)
		return tx.Create(&newMessages).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update system campaign", err)
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// UpdateCampaign edits a campaign's metadata and optionally replaces its
// message sequence.
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	var input struct {
		Name                  *string                `json:"name" validate:"omitempty,max=200"`
		IsActive              *bool                  `json:"is_active"`
		TargetPipelineStageID *uint                  `json:"target_pipeline_stage_id"`
		Messages              []campaignMessageInput `json:"messages" validate:"omitempty,min=1,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Messages != nil {
		if err := validateMessageSequence(input.Messages); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid message sequence", err)
		}
	}

	var campaign models.TagCampaign
	if err := cc.DB.First(&campaign, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	if input.Name != nil {
		campaign.Name = *input.Name
	}
	if input.IsActive != nil {
		campaign.IsActive = *input.IsActive
	}
	if input.TargetPipelineStageID != nil {
		campaign.TargetPipelineStageID = input.TargetPipelineStageID
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&campaign).Error; err != nil {
			return err
		}
		if input.Messages == nil {
			return nil
		}
		if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&models.TagCampaignMessage{}).Error; err != nil {
			return err
		}
		messages := toCampaignMessages(campaign.ID, input.Messages)
		return tx.Create(&messages).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", err)
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// DeleteCampaign removes a campaign, its messages and its enrollments. The
// system Initial_Message campaign can be deactivated but never deleted.
func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	var campaign models.TagCampaign
	if err := cc.DB.First(&campaign, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	if campaign.IsSystem() {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "The system campaign cannot be deleted", nil)
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&models.TagCampaignMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&models.CampaignEnrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&campaign).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Campaign deleted successfully",
	}))
}

// GetCatalog serves the built-in template catalog the seeder installs from.
func (cc *CampaignController) GetCatalog(c *fiber.Ctx) error {
	return c.JSON(utils.SuccessResponse(models.CampaignCatalog))
}
