package models

import "gorm.io/gorm"

// PipelineStage is an ordered named bucket in the sales process. Stages
// cannot be deleted while any lead still references them; new stages are
// appended after the current maximum order position (gap-tolerant).
type PipelineStage struct {
	gorm.Model
	Name          string `gorm:"not null" json:"name"`
	Color         string `gorm:"not null" json:"color"`
	OrderPosition int    `gorm:"not null;index" json:"order_position"`
}

// DefaultPipelineStages seeds the stage board on first boot. FirstOrCreate
// keeps reboots idempotent.
func DefaultPipelineStages(db *gorm.DB) error {
	stages := []PipelineStage{
		{Name: "New Contact", Color: "#3B82F6", OrderPosition: 1},
		{Name: "Engaged", Color: "#8B5CF6", OrderPosition: 2},
		{Name: "Appointment Booked", Color: "#F59E0B", OrderPosition: 3},
		{Name: "Approved", Color: "#10B981", OrderPosition: 4},
		{Name: "Delivered", Color: "#059669", OrderPosition: 5},
		{Name: "Lost", Color: "#EF4444", OrderPosition: 6},
	}
	for _, stage := range stages {
		if err := db.FirstOrCreate(&stage, "name = ?", stage.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
