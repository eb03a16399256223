package models

import (
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an agent or admin account. Role gates stage CRUD, campaign CRUD,
// user management and bulk delete; the checks are enforced server-side on
// every admin route regardless of what the UI hides.
type User struct {
	gorm.Model
	Email        string `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `gorm:"not null" json:"full_name"`

	PhoneNumber      string `json:"phone_number"`
	AgentPhoneNumber string `json:"agent_phone_number"` // provider number calls originate from
	Designation      string `json:"designation"`
	IsActive         bool   `gorm:"default:true" json:"is_active"`
	ReceiveSMSAlerts bool   `gorm:"default:false" json:"receive_sms_notifications"`

	// Relations
	Role *UserRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsAdmin reports whether the user's role row grants admin.
func (u *User) IsAdmin() bool {
	return u.Role != nil && u.Role.Role == RoleAdmin
}

// UserRole holds the single role assigned to a user.
type UserRole struct {
	gorm.Model
	UserID uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Role   string `gorm:"not null;default:'user'" json:"role"` // admin, user
}

// UserPreference is the server-owned replacement for UI state the dashboard
// used to keep in localStorage (visible columns, default filters).
type UserPreference struct {
	gorm.Model
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`

	VisibleLeadColumns pq.StringArray `gorm:"type:text[]" json:"visible_lead_columns"`
	DefaultLeadSort    string         `gorm:"default:'created_at'" json:"default_lead_sort"`
	DefaultLeadOrder   string         `gorm:"default:'desc'" json:"default_lead_order"`
	LeadsPerPage       int            `gorm:"default:25" json:"leads_per_page"`
}
