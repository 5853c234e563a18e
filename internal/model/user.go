package model

import (
	"strings"
	"time"
)

// User owns corpora and documents. Staff accounts are created through the
// CLI only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnsIndex reports whether an external search index name belongs to the
// user. Index names are always prefixed with the owner's username.
func (u *User) OwnsIndex(name string) bool {
	return u.Username != "" && strings.HasPrefix(name, u.Username)
}
