package model

import "time"

// AuditRecord is one answered legal query, persisted asynchronously when the
// audit trail is enabled.
type AuditRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;not null;index" json:"username"`
	Query     string    `gorm:"type:text;not null" json:"query"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	KeyPoints int       `gorm:"not null" json:"key_points"`
	CreatedAt time.Time `json:"created_at"`
}
