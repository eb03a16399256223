package controller

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealerdesk/models"
	"dealerdesk/realtime"
	"dealerdesk/utils"
)

type LeadController struct {
	DB         *gorm.DB
	Logger     *log.Logger
	Automation *utils.AutomationClient
	Hub        *realtime.Hub
}

func NewLeadController(db *gorm.DB, logger *log.Logger, automation *utils.AutomationClient, hub *realtime.Hub) *LeadController {
	return &LeadController{
		DB:         db,
		Logger:     logger,
		Automation: automation,
		Hub:        hub,
	}
}

// leadConflict is the shape returned alongside a 409 so the operator can
// jump to the existing record instead of creating a collision.
func leadConflict(lead *models.Lead) fiber.Map {
	return fiber.Map{
		"id":         lead.ID,
		"name":       lead.FullName(),
		"status":     lead.Status,
		"owner_id":   lead.OwnerID,
		"created_at": lead.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

// firstStage returns the first-ordered pipeline stage.
func (lc *LeadController) firstStage() (*models.PipelineStage, error) {
	var stage models.PipelineStage
	if err := lc.DB.Order("order_position ASC").First(&stage).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

// CreateLead creates a lead from the manual-entry form. The phone is
// normalized and checked against existing leads before any write; a
// collision returns 409 with the conflicting record.
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		FirstName       string   `json:"first_name" validate:"required,max=100"`
		LastName        string   `json:"last_name" validate:"required,max=100"`
		Phone           string   `json:"phone" validate:"required"`
		Email           string   `json:"email" validate:"omitempty,email"`
		Address         string   `json:"address" validate:"omitempty,max=200"`
		City            string   `json:"city" validate:"omitempty,max=100"`
		State           string   `json:"state" validate:"omitempty,max=50"`
		Zip             string   `json:"zip" validate:"omitempty,max=20"`
		Notes           string   `json:"notes"`
		Tags            []string `json:"tags"`
		PipelineStageID *uint    `json:"pipeline_stage_id"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	phone, err := utils.NormalizePhone(input.Phone)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number", err)
	}

	// Advisory duplicate check; the unique index is the real guard.
	var existing models.Lead
	if err := lc.DB.Where("phone = ?", phone).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":       false,
			"error":         "A lead with this phone number already exists",
			"existing_lead": leadConflict(&existing),
		})
	}

	stageID := uint(0)
	if input.PipelineStageID != nil {
		var stage models.PipelineStage
		if err := lc.DB.First(&stage, *input.PipelineStageID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Pipeline stage not found", nil)
		}
		stageID = stage.ID
	} else {
		stage, err := lc.firstStage()
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "No pipeline stages configured", err)
		}
		stageID = stage.ID
	}

	lead := models.Lead{
		UserID:          user.ID,
		OwnerID:         &user.ID,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Phone:           phone,
		Email:           strings.ToLower(input.Email),
		Address:         input.Address,
		City:            input.City,
		State:           input.State,
		Zip:             input.Zip,
		Notes:           input.Notes,
		Status:          "new",
		LeadSource:      "manual_entry",
		Tags:            models.DedupeTags(input.Tags),
		PipelineStageID: stageID,
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "A lead with this phone number already exists",
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	// Every tag on a brand-new lead counts as newly added.
	triggered, failed := TriggerCampaignsForTags(lc.DB, lc.Automation, lc.Logger, &lead, lead.Tags)

	lc.Hub.Broadcast("leads", "insert", lead.ID)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"lead":               lead,
		"webhooks_triggered": triggered,
		"webhooks_failed":    failed,
	}))
}

// GetLeads returns paginated leads with filters
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "25"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := lc.DB.Model(&models.Lead{}).
		Preload("PipelineStage").
		Preload("Conversation")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if stageID := c.Query("stage_id"); stageID != "" {
		query = query.Where("pipeline_stage_id = ?", utils.ParseUint(stageID))
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("lead_source = ?", source)
	}
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	}
	switch c.Query("owner") {
	case "me":
		query = query.Where("owner_id = ?", user.ID)
	case "unassigned":
		query = query.Where("owner_id IS NULL")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR phone LIKE ? OR email ILIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count leads", err)
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetLead returns a single lead by ID
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.Preload("PipelineStage").Preload("Conversation").First(&lead, "id = ?", leadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// UpdateLead updates lead details and fires campaign webhooks for any tags
// that are newly present relative to the stored tag set. The tag/status
// write commits before any webhook attempt; webhook failures degrade the
// response, they never roll the write back.
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var input struct {
		FirstName *string   `json:"first_name" validate:"omitempty,max=100"`
		LastName  *string   `json:"last_name" validate:"omitempty,max=100"`
		Phone     *string   `json:"phone"`
		Email     *string   `json:"email" validate:"omitempty,email"`
		Address   *string   `json:"address"`
		City      *string   `json:"city"`
		State     *string   `json:"state"`
		Zip       *string   `json:"zip"`
		Notes     *string   `json:"notes"`
		Status    *string   `json:"status" validate:"omitempty,oneof=new contacted qualified lost"`
		Tags      *[]string `json:"tags"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	// Snapshot the tag set before the write; the diff is computed against
	// this, not against whatever a concurrent writer may have stored.
	oldTags := make([]string, len(lead.Tags))
	copy(oldTags, lead.Tags)

	if input.Phone != nil {
		phone, err := utils.NormalizePhone(*input.Phone)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number", err)
		}
		if phone != lead.Phone {
			var existing models.Lead
			if err := lc.DB.Where("phone = ? AND id <> ?", phone, lead.ID).First(&existing).Error; err == nil {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"success":       false,
					"error":         "A lead with this phone number already exists",
					"existing_lead": leadConflict(&existing),
				})
			}
			lead.Phone = phone
		}
	}

	if input.FirstName != nil {
		lead.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		lead.LastName = *input.LastName
	}
	if input.Email != nil {
		lead.Email = strings.ToLower(*input.Email)
	}
	if input.Address != nil {
		lead.Address = *input.Address
	}
	if input.City != nil {
		lead.City = *input.City
	}
	if input.State != nil {
		lead.State = *input.State
	}
	if input.Zip != nil {
		lead.Zip = *input.Zip
	}
	if input.Notes != nil {
		lead.Notes = *input.Notes
	}
	if input.Status != nil {
		lead.Status = *input.Status
	}
	if input.Tags != nil {
		lead.Tags = models.DedupeTags(*input.Tags)
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "A lead with this phone number already exists",
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}

	added := models.AddedTags(oldTags, lead.Tags)
	triggered, failed := TriggerCampaignsForTags(lc.DB, lc.Automation, lc.Logger, &lead, added)

	lc.Hub.Broadcast("leads", "update", lead.ID)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"lead":               lead,
		"webhooks_triggered": triggered,
		"webhooks_failed":    failed,
	}))
}

// UpdateLeadStage moves a lead between pipeline stages. Drag-and-drop on
// the board maps to this single-field update.
func (lc *LeadController) UpdateLeadStage(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var input struct {
		PipelineStageID uint `json:"pipeline_stage_id" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var stage models.PipelineStage
	if err := lc.DB.First(&stage, input.PipelineStageID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Pipeline stage not found", nil)
	}

	result := lc.DB.Model(&models.Lead{}).
		Where("id = ?", leadID).
		Update("pipeline_stage_id", stage.ID)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to move lead", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	lc.Hub.Broadcast("leads", "update", utils.ParseUint(leadID))

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message":           "Lead moved",
		"pipeline_stage_id": stage.ID,
	}))
}

// DeleteLead deletes a lead and its conversation history. Admin only.
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Where("lead_id = ?", lead.ID).First(&conv).Error; err == nil {
			if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&conv).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.CampaignEnrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lead).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}

	lc.Hub.Broadcast("leads", "delete", lead.ID)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Lead deleted successfully",
	}))
}

// CheckPhone is the advisory duplicate guard for the manual-entry form.
func (lc *LeadController) CheckPhone(c *fiber.Ctx) error {
	raw := c.Query("phone")
	if raw == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "phone query parameter is required", nil)
	}

	phone, err := utils.NormalizePhone(raw)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number", err)
	}

	var existing models.Lead
	if err := lc.DB.Where("phone = ?", phone).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(utils.SuccessResponse(fiber.Map{
				"is_duplicate": false,
				"phone":        phone,
			}))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check phone", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"is_duplicate":  true,
		"phone":         phone,
		"existing_lead": leadConflict(&existing),
	}))
}
