package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"dealerdesk/models"
	"dealerdesk/utils"
)

// GetLeadPool lists unassigned leads whose conversation is waiting on a
// human. Any agent can claim from here.
func (lc *LeadController) GetLeadPool(c *fiber.Ctx) error {
	var leads []models.Lead
	err := lc.DB.
		Preload("PipelineStage").
		Preload("Conversation").
		Joins("JOIN conversations ON conversations.lead_id = leads.id").
		Where("leads.owner_id IS NULL AND conversations.requires_human_handoff = ?", true).
		Order("conversations.handoff_triggered_at ASC").
		Find(&leads).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead pool", err)
	}

	return c.JSON(utils.SuccessResponse(leads))
}

// ClaimLead assigns a pooled lead to the requesting agent. The guarded
// update on owner_id IS NULL means the first claim wins; a lost race
// returns 409 instead of silently reassigning.
func (lc *LeadController) ClaimLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	now := time.Now()
	result := lc.DB.Model(&models.Lead{}).
		Where("id = ? AND owner_id IS NULL", leadID).
		Updates(map[string]interface{}{
			"owner_id":   user.ID,
			"claimed_at": now,
		})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to claim lead", result.Error)
	}
	if result.RowsAffected == 0 {
		var lead models.Lead
		if err := lc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusConflict, "Lead was already claimed by another agent", nil)
	}

	// The claimer also takes the conversation.
	var conv models.Conversation
	if err := lc.DB.Where("lead_id = ?", leadID).First(&conv).Error; err == nil {
		lc.DB.Model(&conv).Updates(map[string]interface{}{
			"assigned_to":   user.ID,
			"ai_controlled": false,
		})
		lc.Hub.Broadcast("conversations", "update", conv.ID)
	}

	lc.Hub.Broadcast("leads", "update", utils.ParseUint(leadID))

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message":    "Lead claimed",
		"owner_id":   user.ID,
		"claimed_at": now,
	}))
}
