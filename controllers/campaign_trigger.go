package controller

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dealerdesk/models"
	"dealerdesk/utils"
)

// TriggerCampaignsForTags fires one automation webhook per added tag that is
// owned by an active campaign, and records an enrollment for each successful
// fire. The caller must have committed the tag write before calling; nothing
// here ever rolls that write back.
//
// Enrollment is the idempotence marker: a lead already enrolled in a tag's
// campaign is skipped, so re-running the same diff cannot double-fire. A
// webhook failure leaves no enrollment, which is what the backstop sweep
// keys on to retry later.
func TriggerCampaignsForTags(db *gorm.DB, client *utils.AutomationClient, logger *log.Logger, lead *models.Lead, added []string) (triggered, failed int) {
	if len(added) == 0 {
		return 0, 0
	}

	var campaigns []models.TagCampaign
	if err := db.Where("tag IN ? AND is_active = ?", added, true).Find(&campaigns).Error; err != nil {
		logger.Printf("Failed to look up campaigns for tags %v: %v", added, err)
		return 0, len(added)
	}

	for _, campaign := range campaigns {
		var existing models.CampaignEnrollment
		err := db.Where("lead_id = ? AND campaign_id = ?", lead.ID, campaign.ID).First(&existing).Error
		if err == nil {
			logger.Printf("Lead %d already enrolled in campaign %q, skipping webhook", lead.ID, campaign.Tag)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logger.Printf("Failed to check enrollment for lead %d campaign %d: %v", lead.ID, campaign.ID, err)
			failed++
			continue
		}

		if err := client.TriggerTagCampaign(lead, campaign.Tag); err != nil {
			// The tag write is already durable; the backstop sweep will
			// re-fire because no enrollment exists yet.
			failed++
			continue
		}

		enrollment := models.CampaignEnrollment{
			LeadID:     lead.ID,
			CampaignID: campaign.ID,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment).Error; err != nil {
			logger.Printf("Failed to record enrollment for lead %d campaign %d: %v", lead.ID, campaign.ID, err)
		}
		triggered++
	}

	return triggered, failed
}
