package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	controller "dealerdesk/controllers"
	"dealerdesk/models"
	"dealerdesk/utils"
)

// BackstopWorker is the safety net behind the inline trigger: a lead
// carrying a campaign tag with no matching enrollment means the webhook
// failed (or the process died between the write and the attempt). The
// sweep re-fires those, which is safe because enrollment creation is the
// idempotence marker.
type BackstopWorker struct {
	db         *gorm.DB
	automation *utils.AutomationClient
	logger     *log.Logger
	interval   time.Duration
}

func NewBackstopWorker(db *gorm.DB, automation *utils.AutomationClient, logger *log.Logger, interval time.Duration) *BackstopWorker {
	return &BackstopWorker{
		db:         db,
		automation: automation,
		logger:     logger,
		interval:   interval,
	}
}

func (bw *BackstopWorker) Start(ctx context.Context) {
	bw.logger.Println("Starting webhook backstop worker...")
	ticker := time.NewTicker(bw.interval)

	for {
		select {
		case <-ticker.C:
			bw.sweep()
		case <-ctx.Done():
			bw.logger.Println("Stopping webhook backstop worker...")
			ticker.Stop()
			return
		}
	}
}

func (bw *BackstopWorker) sweep() {
	var campaigns []models.TagCampaign
	if err := bw.db.Where("is_active = ?", true).Find(&campaigns).Error; err != nil {
		bw.logger.Printf("Backstop sweep: failed to load campaigns: %v", err)
		return
	}

	// Leads touched within the last minute are skipped so the sweep never
	// races a request that is between its write and its webhook attempt.
	cutoff := time.Now().Add(-time.Minute)

	for _, campaign := range campaigns {
		var leads []models.Lead
		err := bw.db.
			Where("? = ANY(tags) AND updated_at < ?", campaign.Tag, cutoff).
			Where("NOT EXISTS (SELECT 1 FROM campaign_enrollments WHERE campaign_enrollments.lead_id = leads.id AND campaign_enrollments.campaign_id = ? AND campaign_enrollments.deleted_at IS NULL)", campaign.ID).
			Limit(100).
			Find(&leads).Error
		if err != nil {
			bw.logger.Printf("Backstop sweep: query failed for campaign %q: %v", campaign.Tag, err)
			continue
		}

		for i := range leads {
			triggered, failed := controller.TriggerCampaignsForTags(bw.db, bw.automation, bw.logger, &leads[i], []string{campaign.Tag})
			if triggered > 0 {
				bw.logger.Printf("Backstop sweep: re-fired %q for lead %d", campaign.Tag, leads[i].ID)
			}
			if failed > 0 {
				// Still failing; the next sweep picks it up again.
				bw.logger.Printf("Backstop sweep: webhook for lead %d tag %q still failing", leads[i].ID, campaign.Tag)
			}
		}
	}
}
