package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealerdesk/models"
	"dealerdesk/realtime"
	"dealerdesk/utils"
)

// WebhookController receives callbacks from the SMS provider and the
// automation platform. Routes under /webhooks are shared-token
// authenticated, not JWT.
type WebhookController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Hub    *realtime.Hub
}

func NewWebhookController(db *gorm.DB, logger *log.Logger, hub *realtime.Hub) *WebhookController {
	return &WebhookController{
		DB:     db,
		Logger: logger,
		Hub:    hub,
	}
}

// DeliveryStatus updates a message's delivery fields by provider SID. The
// provider retries unacknowledged callbacks, so an unknown SID is answered
// 200 to stop the retry loop and merely logged.
func (wc *WebhookController) DeliveryStatus(c *fiber.Ctx) error {
	var input struct {
		ProviderSID    string `json:"provider_sid" validate:"required"`
		DeliveryStatus string `json:"delivery_status" validate:"required,oneof=queued sent delivered failed"`
		ErrorCode      string `json:"error_code"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var message models.Message
	if err := wc.DB.Where("provider_sid = ?", input.ProviderSID).First(&message).Error; err != nil {
		wc.Logger.Printf("Delivery status for unknown provider SID %q", input.ProviderSID)
		return c.JSON(utils.SuccessResponse(fiber.Map{"updated": false}))
	}

	updates := map[string]interface{}{"delivery_status": input.DeliveryStatus}
	if input.ErrorCode != "" {
		updates["error_code"] = input.ErrorCode
	}
	if err := wc.DB.Model(&message).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update delivery status", err)
	}

	wc.Hub.Broadcast("messages", "update", message.ID)

	return c.JSON(utils.SuccessResponse(fiber.Map{"updated": true}))
}

// InboundSMS records an incoming message from a lead. The conversation is
// created on first contact if the tag workflow has not made one yet.
func (wc *WebhookController) InboundSMS(c *fiber.Ctx) error {
	var input struct {
		From        string `json:"from" validate:"required"`
		To          string `json:"to"`
		Content     string `json:"content" validate:"required"`
		ProviderSID string `json:"provider_sid"`
		AIGenerated bool   `json:"is_ai_generated"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	phone, err := utils.NormalizePhone(input.From)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sender phone", err)
	}

	var lead models.Lead
	if err := wc.DB.Where("phone = ?", phone).First(&lead).Error; err != nil {
		wc.Logger.Printf("Inbound SMS from unknown number %s", phone)
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No lead matches the sender number", nil)
	}

	now := time.Now()

	var conversation models.Conversation
	var message models.Message
	err = wc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", lead.ID).First(&conversation).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			conversation = models.Conversation{
				LeadID:        lead.ID,
				UserID:        lead.UserID,
				LastMessageAt: now,
			}
			if err := tx.Create(&conversation).Error; err != nil {
				return err
			}
		}

		message = models.Message{
			ConversationID: conversation.ID,
			Direction:      "inbound",
			Content:        input.Content,
			Sender:         phone,
			Recipient:      input.To,
			ProviderSID:    input.ProviderSID,
			DeliveryStatus: "delivered",
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		return tx.Model(&conversation).Updates(map[string]interface{}{
			"unread_count":    gorm.Expr("unread_count + 1"),
			"last_message_at": now,
		}).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record inbound message", err)
	}

	// A reply pauses campaign sequencing for this lead.
	wc.DB.Model(&models.CampaignEnrollment{}).
		Where("lead_id = ? AND is_completed = ?", lead.ID, false).
		Updates(map[string]interface{}{
			"is_paused":        true,
			"last_response_at": now,
		})

	wc.Hub.Broadcast("messages", "insert", message.ID)
	wc.Hub.Broadcast("conversations", "update", conversation.ID)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"conversation_id": conversation.ID,
		"message_id":      message.ID,
	}))
}

// Handoff flags a conversation as needing a human. The AI side of the
// automation platform calls this when it runs out of script.
func (wc *WebhookController) Handoff(c *fiber.Ctx) error {
	var input struct {
		ConversationID uint   `json:"conversation_id"`
		LeadID         uint   `json:"lead_id"`
		Reason         string `json:"reason"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if input.ConversationID == 0 && input.LeadID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "conversation_id or lead_id is required", nil)
	}

	var conversation models.Conversation
	query := wc.DB
	if input.ConversationID != 0 {
		query = query.Where("id = ?", input.ConversationID)
	} else {
		query = query.Where("lead_id = ?", input.LeadID)
	}
	if err := query.First(&conversation).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Conversation not found", nil)
	}

	now := time.Now()
	err := wc.DB.Model(&conversation).Updates(map[string]interface{}{
		"requires_human_handoff": true,
		"handoff_triggered_at":   now,
	}).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to flag handoff", err)
	}

	if input.Reason != "" {
		wc.Logger.Printf("Handoff for conversation %d: %s", conversation.ID, input.Reason)
	}

	wc.Hub.Broadcast("conversations", "update", conversation.ID)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"conversation_id": conversation.ID,
		"handoff":         true,
	}))
}
