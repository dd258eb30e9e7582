package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wishlist is the aggregate root. Products and collaborator links are loaded
// alongside it and share its lifetime.
type Wishlist struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	Title         string                 `gorm:"type:text;not null"`
	Description   *string                `gorm:"column:description"`
	OwnerID       uuid.UUID              `gorm:"column:owner_id;type:uuid;not null;index"`
	Owner         *User                  `gorm:"foreignKey:OwnerID"`
	IsPublic      bool                   `gorm:"column:is_public;not null;default:false;index"`
	Products      []Product              `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	Collaborators []WishlistCollaborator `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Wishlist) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WishlistCollaborator links a user to a wishlist they may write products to.
// The owner is never linked here; ownership is a distinct role.
type WishlistCollaborator struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	WishlistID uuid.UUID `gorm:"column:wishlist_id;type:uuid;not null;index:wishlist_collaborators_wishlist_idx;uniqueIndex:wishlist_collaborators_pair_key"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:wishlist_collaborators_user_idx;uniqueIndex:wishlist_collaborators_pair_key"`
	User       *User     `gorm:"foreignKey:UserID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *WishlistCollaborator) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
