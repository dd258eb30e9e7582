package wishlists

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wishlane/wishlane-backend/internal/users"
	"github.com/wishlane/wishlane-backend/pkg/db/models"
	"github.com/wishlane/wishlane-backend/pkg/enums"
)

// ProductDTO is the transport shape of a wishlist entry with its adder resolved.
type ProductDTO struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	Price       decimal.Decimal       `json:"price"`
	ImageURL    *string               `json:"image_url,omitempty"`
	URL         *string               `json:"url,omitempty"`
	Category    *string               `json:"category,omitempty"`
	Priority    enums.ProductPriority `json:"priority"`
	AddedBy     *users.SummaryDTO     `json:"added_by"`
	AddedAt     time.Time             `json:"added_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// WishlistDTO is the fully resolved aggregate returned by every read and
// mutation. Credential hashes never appear here.
type WishlistDTO struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Description   *string            `json:"description,omitempty"`
	Owner         *users.SummaryDTO  `json:"owner"`
	Collaborators []users.SummaryDTO `json:"collaborators"`
	Products      []ProductDTO       `json:"products"`
	IsPublic      bool               `json:"is_public"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CreateWishlistInput carries the fields accepted when creating a wishlist.
type CreateWishlistInput struct {
	Title       string
	Description *string
	IsPublic    *bool
}

// UpdateWishlistInput is a partial update; nil fields are left unchanged.
type UpdateWishlistInput struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

// AddProductInput carries the fields accepted when appending a product.
type AddProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	ImageURL    *string
	URL         *string
	Category    *string
	Priority    *enums.ProductPriority
}

// UpdateProductInput is a partial update; nil means "leave unchanged" while a
// pointer to the empty string clears an optional text field.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	URL         *string
	Category    *string
	Priority    *enums.ProductPriority
}

func FromModel(w *models.Wishlist) *WishlistDTO {
	if w == nil {
		return nil
	}

	collaborators := make([]users.SummaryDTO, 0, len(w.Collaborators))
	for _, link := range w.Collaborators {
		if summary := users.SummaryFromModel(link.User); summary != nil {
			collaborators = append(collaborators, *summary)
		}
	}

	products := make([]ProductDTO, 0, len(w.Products))
	for i := range w.Products {
		products = append(products, productFromModel(&w.Products[i]))
	}

	return &WishlistDTO{
		ID:            w.ID,
		Title:         w.Title,
		Description:   w.Description,
		Owner:         users.SummaryFromModel(w.Owner),
		Collaborators: collaborators,
		Products:      products,
		IsPublic:      w.IsPublic,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func productFromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		URL:         p.URL,
		Category:    p.Category,
		Priority:    p.Priority,
		AddedBy:     users.SummaryFromModel(p.AddedBy),
		AddedAt:     p.AddedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
