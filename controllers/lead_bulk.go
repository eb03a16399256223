package controller

import (
	"github.com/gofiber/fiber/v2"

	"dealerdesk/models"
	"dealerdesk/utils"
)

// SendFirstMessage runs the bulk "Send 1st Message" action. Leads are
// processed sequentially and independently: each lead's tag/status write
// commits before its webhook attempt, and one lead's failure never aborts
// the rest. Leads already tagged Initial_Message are counted as skipped
// with no write and no webhook.
func (lc *LeadController) SendFirstMessage(c *fiber.Ctx) error {
	var input struct {
		LeadIDs []uint `json:"lead_ids" validate:"required,min=1"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var updated, webhooksSent, webhooksFailed, skipped, errors int

	for _, leadID := range input.LeadIDs {
		var lead models.Lead
		if err := lc.DB.First(&lead, leadID).Error; err != nil {
			lc.Logger.Printf("Bulk send: lead %d not found: %v", leadID, err)
			skipped++
			continue
		}

		if lead.HasTag(models.InitialMessageTag) {
			skipped++
			continue
		}

		lead.Tags = models.DedupeTags(append(lead.Tags, models.InitialMessageTag))
		lead.Status = "contacted"

		// A failed save is a storage error, not a webhook outcome; the
		// lead is left untagged so a retry of the action picks it up.
		if err := lc.DB.Save(&lead).Error; err != nil {
			lc.Logger.Printf("Bulk send: failed to update lead %d: %v", lead.ID, err)
			errors++
			continue
		}
		updated++

		sent, failed := TriggerCampaignsForTags(lc.DB, lc.Automation, lc.Logger, &lead, []string{models.InitialMessageTag})
		webhooksSent += sent
		webhooksFailed += failed

		lc.Hub.Broadcast("leads", "update", lead.ID)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"updated":         updated,
		"webhooks_sent":   webhooksSent,
		"webhooks_failed": webhooksFailed,
		"skipped":         skipped,
		"errors":          errors,
	}))
}
