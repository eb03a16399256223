package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is the single SMS thread attached to a lead. The handoff
// flags drive lead-pool visibility: a lead is poolable only while its
// conversation requires a human.
type Conversation struct {
	gorm.Model
	LeadID     uint  `gorm:"not null;uniqueIndex" json:"lead_id"`
	UserID     uint  `gorm:"not null;index" json:"user_id"`
	AssignedTo *uint `json:"assigned_to"`

	Channel string `gorm:"not null;default:'sms'" json:"channel"`
	Status  string `gorm:"not null;default:'active'" json:"status"` // active, closed

	AIControlled         bool       `gorm:"default:true" json:"ai_controlled"`
	AIMessageCount       int        `gorm:"default:0" json:"ai_message_count"`
	RequiresHumanHandoff bool       `gorm:"default:false;index" json:"requires_human_handoff"`
	HandoffTriggeredAt   *time.Time `json:"handoff_triggered_at"`

	UnreadCount   int       `gorm:"default:0" json:"unread_count"`
	LastMessageAt time.Time `gorm:"not null" json:"last_message_at"`

	// Relations
	Lead     Lead      `json:"lead,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// Message is a single inbound or outbound SMS. Rows are immutable once
// created except for the delivery fields, which the external SMS provider
// updates asynchronously through the status callback.
type Message struct {
	gorm.Model
	ConversationID uint `gorm:"not null;index" json:"conversation_id"`

	Direction     string `gorm:"not null" json:"direction"` // inbound, outbound
	Content       string `gorm:"type:text;not null" json:"content"`
	Sender        string `json:"sender"`
	Recipient     string `json:"recipient"`
	IsAIGenerated bool   `gorm:"default:false" json:"is_ai_generated"`
	IsRead        bool   `gorm:"default:false" json:"is_read"`

	ProviderSID    string `gorm:"index" json:"provider_sid"`
	DeliveryStatus string `gorm:"default:'queued'" json:"delivery_status"` // queued, sent, delivered, failed
	ErrorCode      string `json:"error_code"`
}
