package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealerdesk/models"
	"dealerdesk/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type countRow struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func (dc *DashboardController) countBy(model interface{}, column string) ([]countRow, error) {
	var rows []countRow
	err := dc.DB.Model(model).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// GetDashboardStats returns the headline numbers for the dashboard page.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	var totalLeads, pooledLeads, handoffCount, unreadTotal int64

	if err := dc.DB.Model(&models.Lead{}).Count(&totalLeads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}
	dc.DB.Model(&models.Lead{}).Where("owner_id IS NULL").Count(&pooledLeads)
	dc.DB.Model(&models.Conversation{}).Where("requires_human_handoff = ?", true).Count(&handoffCount)
	dc.DB.Model(&models.Conversation{}).Select("COALESCE(SUM(unread_count), 0)").Scan(&unreadTotal)

	byStatus, err := dc.countBy(&models.Lead{}, "status")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}
	bySource, _ := dc.countBy(&models.Lead{}, "lead_source")

	var byStage []struct {
		StageID   uint   `json:"stage_id"`
		StageName string `json:"stage_name"`
		Count     int64  `json:"count"`
	}
	dc.DB.Model(&models.Lead{}).
		Select("pipeline_stages.id AS stage_id, pipeline_stages.name AS stage_name, COUNT(leads.id) AS count").
		Joins("JOIN pipeline_stages ON pipeline_stages.id = leads.pipeline_stage_id").
		Group("pipeline_stages.id, pipeline_stages.name, pipeline_stages.order_position").
		Order("pipeline_stages.order_position ASC").
		Scan(&byStage)

	var activeEnrollments int64
	dc.DB.Model(&models.CampaignEnrollment{}).
		Where("is_completed = ? AND is_paused = ?", false, false).
		Count(&activeEnrollments)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"total_leads":        totalLeads,
		"pooled_leads":       pooledLeads,
		"handoff_count":      handoffCount,
		"unread_messages":    unreadTotal,
		"active_enrollments": activeEnrollments,
		"leads_by_status":    byStatus,
		"leads_by_source":    bySource,
		"leads_by_stage":     byStage,
	}))
}

// GetMessageVolume returns daily inbound/outbound message counts for the
// last N days (default 30).
func (dc *DashboardController) GetMessageVolume(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var rows []struct {
		Day       time.Time `json:"day"`
		Direction string    `json:"direction"`
		Count     int64     `json:"count"`
	}
	err := dc.DB.Model(&models.Message{}).
		Select("DATE_TRUNC('day', created_at) AS day, direction, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("day, direction").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute message volume", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"days":   days,
		"volume": rows,
	}))
}
