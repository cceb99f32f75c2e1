package model

import "time"

// AdminCredentialOverrideID is the fixed key of the single admin override row.
const AdminCredentialOverrideID = "admin"

// AdminCredentialOverride replaces the default admin credentials while present.
type AdminCredentialOverride struct {
	ID        string    `gorm:"primaryKey;size:16"`
	Username  string    `gorm:"not null;size:200"`
	Password  string    `gorm:"not null;size:200"`
	UpdatedBy string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
