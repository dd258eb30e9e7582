package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wishlane/wishlane-backend/pkg/enums"
	"gorm.io/gorm"
)

// Product is an entry nested inside exactly one wishlist. Position preserves
// insertion order across reloads.
type Product struct {
	ID          uuid.UUID              `gorm:"type:uuid;primaryKey"`
	WishlistID  uuid.UUID              `gorm:"column:wishlist_id;type:uuid;not null;index"`
	Name        string                 `gorm:"type:text;not null"`
	Description *string                `gorm:"column:description"`
	Price       decimal.Decimal        `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL    *string                `gorm:"column:image_url"`
	URL         *string                `gorm:"column:url"`
	Category    *string                `gorm:"column:category"`
	Priority    enums.ProductPriority  `gorm:"column:priority;type:text;not null;default:medium"`
	Position    int                    `gorm:"column:position;not null"`
	AddedByID   uuid.UUID              `gorm:"column:added_by;type:uuid;not null;index"`
	AddedBy     *User                  `gorm:"foreignKey:AddedByID"`
	AddedAt     time.Time              `gorm:"column:added_at;not null"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;not null"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
