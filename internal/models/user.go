package models

import (
	"time"

	"tokenvault/internal/identifier"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the authenticated account. Rows are created lazily from the session
// principal the first time a user stakes, transfers or opens their wallet.
type User struct {
	ID         string  `gorm:"primaryKey;size:36" json:"id"`
	Email      string  `gorm:"size:255;not null;index" json:"email"`
	ReferrerID *string `gorm:"size:36;index" json:"referrer_id,omitempty"` // no cycle check on the referrer chain
	FCMToken   string  `gorm:"size:512" json:"-"`

	// Derived public identifier, stored so recipients resolve through an index.
	// Not unique: different users can derive the same tag.
	PublicTag    string `gorm:"size:32;index" json:"public_tag"`
	PublicPrefix string `gorm:"size:16;index:idx_users_public_parts,priority:1" json:"-"`
	PublicSuffix string `gorm:"size:16;index:idx_users_public_parts,priority:2" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id when missing and fills the derived identifier columns.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	id := identifier.Derive(u.Email, u.ID)
	u.PublicPrefix = id.Prefix
	u.PublicSuffix = id.Suffix
	u.PublicTag = id.String()
	return nil
}

// Identifier returns the user's public account tag.
func (u *User) Identifier() identifier.ID {
	return identifier.Derive(u.Email, u.ID)
}
