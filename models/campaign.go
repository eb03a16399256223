package models

import (
	"time"

	"gorm.io/gorm"
)

// InitialMessageTag is the reserved tag bound to the single system-level
// campaign (nil UserID). It participates in the general trigger mechanism
// like any other campaign tag.
const InitialMessageTag = "Initial_Message"

// TagCampaign binds a lead tag to an ordered message sequence. Applying the
// tag to a lead enrolls it; the automation platform advances the sequence
// one step per scheduled day unless the lead replies.
type TagCampaign struct {
	gorm.Model
	UserID *uint `gorm:"index" json:"user_id"` // nil = seeded, not owned by an agent

	Tag      string `gorm:"not null;uniqueIndex" json:"tag"`
	Name     string `gorm:"not null" json:"name"`
	IsActive bool   `gorm:"default:true;index" json:"is_active"`

	TargetPipelineStageID *uint `json:"target_pipeline_stage_id"`

	// Relations
	Messages []TagCampaignMessage `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// IsSystem reports whether the campaign is the reserved Initial_Message
// sequence. The system campaign can be edited and deactivated but never
// deleted or re-owned.
func (tc *TagCampaign) IsSystem() bool {
	return tc.Tag == InitialMessageTag
}

// SeedSystemCampaign installs the reserved Initial_Message campaign on
// first boot. Its message is a placeholder the admin replaces; the record
// itself must always exist because bulk send and the campaign editor both
// address it by tag.
func SeedSystemCampaign(db *gorm.DB) error {
	var existing TagCampaign
	err := db.Where("tag = ?", InitialMessageTag).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	campaign := TagCampaign{
		Tag:      InitialMessageTag,
		Name:     "Initial Message",
		IsActive: true,
	}
	if err := db.Create(&campaign).Error; err != nil {
		return err
	}

	return db.Create(&TagCampaignMessage{
		CampaignID:      campaign.ID,
		DayNumber:       1,
		SequenceOrder:   1,
		MessageTemplate: "Hi {{first_name}}, thanks for reaching out about a vehicle. I'm here to help whenever you're ready. What are you looking for?",
	}).Error
}

// TagCampaignMessage is one templated step of a campaign. SequenceOrder is
// strictly increasing within a campaign and DayNumber never decreases.
type TagCampaignMessage struct {
	gorm.Model
	CampaignID uint `gorm:"not null;index" json:"campaign_id"`

	DayNumber       int    `gorm:"not null" json:"day_number"`
	SequenceOrder   int    `gorm:"not null" json:"sequence_order"`
	MessageTemplate string `gorm:"type:text;not null" json:"message_template"`
}

// CampaignEnrollment links a lead to a campaign it has been entered into.
// One row per lead+campaign pair; the trigger creates rows idempotently so
// re-firing the same tag diff can never double-enroll.
type CampaignEnrollment struct {
	gorm.Model
	LeadID     uint `gorm:"not null;index;uniqueIndex:idx_enrollment_lead_campaign" json:"lead_id"`
	CampaignID uint `gorm:"not null;index;uniqueIndex:idx_enrollment_lead_campaign" json:"campaign_id"`

	CurrentMessageIndex int    `gorm:"default:0" json:"current_message_index"`
	Status              string `gorm:"not null;default:'active'" json:"status"`
	IsPaused            bool   `gorm:"default:false" json:"is_paused"`
	IsCompleted         bool   `gorm:"default:false" json:"is_completed"`

	LastSentAt     *time.Time `json:"last_sent_at"`
	LastResponseAt *time.Time `json:"last_response_at"`
	CompletedAt    *time.Time `json:"completed_at"`

	// Relations
	Campaign TagCampaign `json:"campaign,omitempty"`
}
