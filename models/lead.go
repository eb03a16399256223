package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Lead represents a single sales prospect. Phone numbers are stored in
// E.164 form (+1XXXXXXXXXX) and are globally unique; the database
// constraint is the authoritative duplicate guard, application-level
// checks are advisory.
type Lead struct {
	gorm.Model
	UserID  uint  `gorm:"not null;index" json:"user_id"`
	OwnerID *uint `gorm:"index" json:"owner_id"` // nil = unassigned (lead pool)

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Phone     string `gorm:"not null;uniqueIndex:unique_phone_number" json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Notes     string `gorm:"type:text" json:"notes"`

	Status     string         `gorm:"not null;default:'new'" json:"status"` // new, contacted, qualified, lost
	LeadSource string         `json:"lead_source"`                          // manual_entry, csv_upload
	Tags       pq.StringArray `gorm:"type:text[]" json:"tags"`

	// Every lead sits in exactly one pipeline stage.
	PipelineStageID uint       `gorm:"not null;index" json:"pipeline_stage_id"`
	ClaimedAt       *time.Time `json:"claimed_at"`

	// Relations
	PipelineStage PipelineStage `json:"pipeline_stage,omitempty"`
	Conversation  *Conversation `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"conversation,omitempty"`
}

// HasTag reports whether the lead already carries the given tag.
func (l *Lead) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FullName joins the name parts for webhook payloads and logs.
func (l *Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}

// DedupeTags returns the tag list with duplicates removed, preserving first
// occurrence order. Tag storage is always deduped before a diff is computed
// against a previous tag set.
func DedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// AddedTags computes newTags minus oldTags with set semantics. The new set
// is deduped first, so a tag repeated in newTags is never reported twice.
func AddedTags(oldTags, newTags []string) []string {
	prev := make(map[string]struct{}, len(oldTags))
	for _, t := range oldTags {
		prev[t] = struct{}{}
	}
	var added []string
	for _, t := range DedupeTags(newTags) {
		if _, ok := prev[t]; !ok {
			added = append(added, t)
		}
	}
	return added
}
