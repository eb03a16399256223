package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealerdesk/models"
	"dealerdesk/realtime"
	"dealerdesk/utils"
)

type PipelineController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Hub    *realtime.Hub
}

func NewPipelineController(db *gorm.DB, logger *log.Logger, hub *realtime.Hub) *PipelineController {
	return &PipelineController{
		DB:     db,
		Logger: logger,
		Hub:    hub,
	}
}

// GetStages returns all pipeline stages in board order, each with its
// current lead count.
func (pc *PipelineController) GetStages(c *fiber.Ctx) error {
	var stages []models.PipelineStage
	if err := pc.DB.Order("order_position ASC").Find(&stages).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stages", err)
	}

	type stageWithCount struct {
		models.PipelineStage
		LeadCount int64 `json:"lead_count"`
	}

	out := make([]stageWithCount, 0, len(stages))
	for _, stage := range stages {
		var count int64
		pc.DB.Model(&models.Lead{}).Where("pipeline_stage_id = ?", stage.ID).Count(&count)
		out = append(out, stageWithCount{PipelineStage: stage, LeadCount: count})
	}

	return c.JSON(utils.SuccessResponse(out))
}

// CreateStage appends a new stage after the current maximum order position.
// Positions are gap-tolerant; deletions do not renumber survivors.
func (pc *PipelineController) CreateStage(c *fiber.Ctx) error {
	var input struct {
		Name  string `json:"name" validate:"required,max=100"`
		Color string `json:"color" validate:"required,max=20"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var maxPosition int
	pc.DB.Model(&models.PipelineStage{}).Select("COALESCE(MAX(order_position), 0)").Scan(&maxPosition)

	stage := models.PipelineStage{
		Name:          input.Name,
		Color:         input.Color,
		OrderPosition: maxPosition + 1,
	}

	if err := pc.DB.Create(&stage).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create stage", err)
	}

	pc.Hub.Broadcast("pipeline_stages", "insert", stage.ID)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(stage))
}

// UpdateStage renames or recolors a stage.
func (pc *PipelineController) UpdateStage(c *fiber.Ctx) error {
	stageID := c.Params("id")

	var input struct {
		Name          *string `json:"name" validate:"omitempty,max=100"`
		Color         *string `json:"color" validate:"omitempty,max=20"`
		OrderPosition *int    `json:"order_position"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var stage models.PipelineStage
	if err := pc.DB.First(&stage, "id = ?", stageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Stage not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stage", err)
	}

	if input.Name != nil {
		stage.Name = *input.Name
	}
	if input.Color != nil {
		stage.Color = *input.Color
	}
	if input.OrderPosition != nil {
		stage.OrderPosition = *input.OrderPosition
	}

	if err := pc.DB.Save(&stage).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update stage", err)
	}

	pc.Hub.Broadcast("pipeline_stages", "update", stage.ID)

	return c.JSON(utils.SuccessResponse(stage))
}

// DeleteStage removes a stage. The delete is refused outright while any
// lead still references the stage; it is never attempted and rolled back.
func (pc *PipelineController) DeleteStage(c *fiber.Ctx) error {
	stageID := c.Params("id")

	var stage models.PipelineStage
	if err := pc.DB.First(&stage, "id = ?", stageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Stage not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stage", err)
	}

	var leadCount int64
	if err := pc.DB.Model(&models.Lead{}).Where("pipeline_stage_id = ?", stage.ID).Count(&leadCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check stage usage", err)
	}
	if leadCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict,
			"Cannot delete a stage that still has leads in it. Move the leads to another stage first.", nil)
	}

	if err := pc.DB.Delete(&stage).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete stage", err)
	}

	pc.Hub.Broadcast("pipeline_stages", "delete", stage.ID)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Stage deleted successfully",
	}))
}
