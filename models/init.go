package models

import "gorm.io/gorm"

// Migrate runs the schema migration for every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserRole{},
		&UserPreference{},
		&PipelineStage{},
		&Lead{},
		&Conversation{},
		&Message{},
		&TagCampaign{},
		&TagCampaignMessage{},
		&CampaignEnrollment{},
	)
}

// Seed populates the default pipeline stages and the canned campaign
// catalog. Safe to run on every boot.
func Seed(db *gorm.DB) error {
	if err := DefaultPipelineStages(db); err != nil {
		return err
	}
	if err := SeedSystemCampaign(db); err != nil {
		return err
	}
	return SeedCampaignCatalog(db)
}
