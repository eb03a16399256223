package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealerdesk/models"
	"dealerdesk/realtime"
	"dealerdesk/utils"
)

type ConversationController struct {
	DB         *gorm.DB
	Logger     *log.Logger
	Automation *utils.AutomationClient
	Hub        *realtime.Hub
}

func NewConversationController(db *gorm.DB, logger *log.Logger, automation *utils.AutomationClient, hub *realtime.Hub) *ConversationController {
	return &ConversationController{
		DB:         db,
		Logger:     logger,
		Automation: automation,
		Hub:        hub,
	}
}

// GetConversations returns conversations newest-first with filters for the
// inbox views (needs-human, AI-controlled, unread, lead name search).
func (cc *ConversationController) GetConversations(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "25"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := cc.DB.Model(&models.Conversation{}).Preload("Lead")

	switch c.Query("filter") {
	case "handoff":
		query = query.Where("requires_human_handoff = ?", true)
	case "ai":
		query = query.Where("ai_controlled = ? AND requires_human_handoff = ?", true, false)
	case "unread":
		query = query.Where("unread_count > 0")
	}
	if assigned := c.Query("assigned_to"); assigned != "" {
		query = query.Where("assigned_to = ?", utils.ParseUint(assigned))
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Joins("JOIN leads ON leads.id = conversations.lead_id").
			Where("leads.first_name ILIKE ? OR leads.last_name ILIKE ? OR leads.phone LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count conversations", err)
	}

	var conversations []models.Conversation
	if err := query.Order("last_message_at DESC").Offset(offset).Limit(limit).Find(&conversations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch conversations", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  conversations,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetConversation returns one conversation with its full message log.
func (cc *ConversationController) GetConversation(c *fiber.Ctx) error {
	var conversation models.Conversation
	if err := cc.DB.Preload("Lead").Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&conversation, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Conversation not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch conversation", err)
	}

	return c.JSON(utils.SuccessResponse(conversation))
}

// SendMessage stores a manual outbound SMS and forwards it to the provider
// webhook. The message row commits first; a webhook failure is reported as
// a degraded success, the stored message stays.
func (cc *ConversationController) SendMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Content string `json:"content" validate:"required,max=1600"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var conversation models.Conversation
	if err := cc.DB.Preload("Lead").First(&conversation, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Conversation not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch conversation", err)
	}

	message := models.Message{
		ConversationID: conversation.ID,
		Direction:      "outbound",
		Content:        input.Content,
		Sender:         user.AgentPhoneNumber,
		Recipient:      conversation.Lead.Phone,
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&conversation).Updates(map[string]interface{}{
			"last_message_at": time.Now(),
			"ai_controlled":   false,
		}).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store message", err)
	}

	webhookErr := cc.Automation.SendSMS(utils.SMSPayload{
		ConversationID: conversation.ID,
		Content:        input.Content,
		Sender:         user.AgentPhoneNumber,
		Recipient:      conversation.Lead.Phone,
		SentBy:         user.ID,
	})

	cc.Hub.Broadcast("messages", "insert", message.ID)
	cc.Hub.Broadcast("conversations", "update", conversation.ID)

	response := fiber.Map{"message": message}
	if webhookErr != nil {
		response["warning"] = "Message stored but delivery webhook failed; the backup system will retry."
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(response))
}

// MarkRead zeroes the unread counter.
func (cc *ConversationController) MarkRead(c *fiber.Ctx) error {
	conversationID := c.Params("id")

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("unread_count", 0)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Message{}).
			Where("conversation_id = ? AND direction = ?", conversationID, "inbound").
			Update("is_read", true).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Conversation not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark conversation read", err)
	}

	cc.Hub.Broadcast("conversations", "update", utils.ParseUint(conversationID))

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Conversation marked as read",
	}))
}

// TakeOver flags the conversation for human control and assigns it to the
// requesting agent.
func (cc *ConversationController) TakeOver(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	conversationID := c.Params("id")

	result := cc.DB.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"ai_controlled": false,
			"assigned_to":   user.ID,
		})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to take over conversation", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Conversation not found", nil)
	}

	cc.Hub.Broadcast("conversations", "update", utils.ParseUint(conversationID))

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Conversation is now human-controlled",
	}))
}

// InitiateCall asks the automation platform to bridge a call between the
// agent's provider number and the lead.
func (cc *ConversationController) InitiateCall(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.AgentPhoneNumber == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Your account has no agent phone number configured", nil)
	}

	var conversation models.Conversation
	if err := cc.DB.Preload("Lead").First(&conversation, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Conversation not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch conversation", err)
	}

	err := cc.Automation.InitiateCall(utils.CallPayload{
		LeadID:         conversation.LeadID,
		AgentID:        user.ID,
		ConversationID: conversation.ID,
		AgentPhone:     user.AgentPhoneNumber,
		LeadPhone:      conversation.Lead.Phone,
		LeadName:       conversation.Lead.FullName(),
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to initiate the call", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Call initiated",
	}))
}
