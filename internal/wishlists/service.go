package wishlists

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wishlane/wishlane-backend/pkg/db/models"
	"github.com/wishlane/wishlane-backend/pkg/enums"
	pkgerrors "github.com/wishlane/wishlane-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	maxTitleLength       = 100
	maxNameLength        = 100
	maxDescriptionLength = 500
	maxCategoryLength    = 50
)

// Service defines the behavior needed by the wishlist controller. Every
// mutation validates input, checks the actor's capability, and returns the
// fully resolved aggregate.
type Service interface {
	List(ctx context.Context, actorID uuid.UUID) ([]WishlistDTO, error)
	ListPublic(ctx context.Context) ([]WishlistDTO, error)
	Get(ctx context.Context, actorID, wishlistID uuid.UUID) (*WishlistDTO, error)
	Create(ctx context.Context, actorID uuid.UUID, in CreateWishlistInput) (*WishlistDTO, error)
	UpdateMetadata(ctx context.Context, actorID, wishlistID uuid.UUID, in UpdateWishlistInput) (*WishlistDTO, error)
	Delete(ctx context.Context, actorID, wishlistID uuid.UUID) error
	AddProduct(ctx context.Context, actorID, wishlistID uuid.UUID, in AddProductInput) (*WishlistDTO, error)
	UpdateProduct(ctx context.Context, actorID, wishlistID, productID uuid.UUID, in UpdateProductInput) (*WishlistDTO, error)
	DeleteProduct(ctx context.Context, actorID, wishlistID, productID uuid.UUID) (*WishlistDTO, error)
	AddCollaborator(ctx context.Context, actorID, wishlistID, userID uuid.UUID) (*WishlistDTO, error)
	RemoveCollaborator(ctx context.Context, actorID, wishlistID, userID uuid.UUID) (*WishlistDTO, error)
}

type wishlistRepository interface {
	ListVisible(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error)
	ListPublic(ctx context.Context) ([]models.Wishlist, error)
	FindVisible(ctx context.Context, id, userID uuid.UUID) (*models.Wishlist, error)
	FindWritable(ctx context.Context, id, userID uuid.UUID) (*models.Wishlist, error)
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Wishlist, error)
	Create(ctx context.Context, w *models.Wishlist) error
	UpdateMetadata(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppendProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, wishlistID, productID uuid.UUID, updates map[string]any) error
	RemoveProduct(ctx context.Context, wishlistID, productID uuid.UUID) error
	AddCollaborator(ctx context.Context, wishlistID, userID uuid.UUID) error
	RemoveCollaborator(ctx context.Context, wishlistID, userID uuid.UUID) error
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams bundles the dependencies required to build a wishlist service.
type ServiceParams struct {
	WishlistRepo wishlistRepository
	UserRepo     userRepository
}

type service struct {
	wishlists wishlistRepository
	users     userRepository
}

// NewService constructs a wishlist service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, fmt.Errorf("wishlist repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{
		wishlists: params.WishlistRepo,
		users:     params.UserRepo,
	}, nil
}

// List returns every wishlist the actor may view, most recently touched first.
func (s *service) List(ctx context.Context, actorID uuid.UUID) ([]WishlistDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	lists, err := s.wishlists.ListVisible(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlists")
	}
	return toDTOs(lists), nil
}

// ListPublic returns public wishlists for discovery browsing.
func (s *service) ListPublic(ctx context.Context) ([]WishlistDTO, error) {
	lists, err := s.wishlists.ListPublic(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list public wishlists")
	}
	return toDTOs(lists), nil
}

// Get loads one wishlist the actor may view.
func (s *service) Get(ctx context.Context, actorID, wishlistID uuid.UUID) (*WishlistDTO, error) {
	w, err := s.findVisible(ctx, actorID, wishlistID)
	if err != nil {
		return nil, err
	}
	return FromModel(w), nil
}

// Create inserts a wishlist owned by the actor.
func (s *service) Create(ctx context.Context, actorID uuid.UUID, in CreateWishlistInput) (*WishlistDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}

	w := models.Wishlist{
		Title:       title,
		Description: description,
		OwnerID:     actorID,
	}
	if in.IsPublic != nil {
		w.IsPublic = *in.IsPublic
	}

	if err := s.wishlists.Create(ctx, &w); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wishlist")
	}
	return s.reload(ctx, actorID, w.ID)
}

// UpdateMetadata applies a partial update to title, description, or
// visibility. Collaborators can see the wishlist but only the owner may
// change its metadata.
func (s *service) UpdateMetadata(ctx context.Context, actorID, wishlistID uuid.UUID, in UpdateWishlistInput) (*WishlistDTO, error) {
	w, err := s.findWritable(ctx, actorID, wishlistID)
	if err != nil {
		return nil, err
	}
	if !CanEditMetadata(actorID, w) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can update wishlist details")
	}

	updates := map[string]any{}
	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if in.Description != nil {
		description, err := normalizeDescription(in.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}

	if err := s.wishlists.UpdateMetadata(ctx, wishlistID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wishlist")
	}
	return s.reload(ctx, actorID, wishlistID)
}

// Delete removes a wishlist and everything nested under it. Non-owners get
// not-found rather than forbidden so the lookup leaks nothing.
func (s *service) Delete(ctx context.Context, actorID, wishlistID uuid.UUID) error {
	w, err := s.findOwned(ctx, actorID, wishlistID)
	if err != nil {
		return err
	}
	if err := s.wishlists.Delete(ctx, w.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wishlist")
	}
	return nil
}

// AddProduct appends a product to a wishlist the actor may write to.
func (s *service) AddProduct(ctx context.Context, actorID, wishlistID uuid.UUID, in AddProductInput) (*WishlistDTO, error) {
	w, err := s.findWritable(ctx, actorID, wishlistID)
	if err != nil {
		return nil, err
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateProductFields(in.Description, in.Price.IsNegative(), in.ImageURL, in.URL, in.Category); err != nil {
		return nil, err
	}

	priority := enums.ProductPriorityMedium
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "priority must be low, medium, or high")
		}
		priority = *in.Priority
	}

	now := time.Now().UTC()
	p := models.Product{
		WishlistID:  w.ID,
		Name:        name,
		Description: emptyToNil(in.Description),
		Price:       in.Price,
		ImageURL:    emptyToNil(in.ImageURL),
		URL:         emptyToNil(in.URL),
		Category:    emptyToNil(in.Category),
		Priority:    priority,
		AddedByID:   actorID,
		AddedAt:     now,
		UpdatedAt:   now,
	}
	if err := s.wishlists.AppendProduct(ctx, &p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add product")
	}
	return s.reload(ctx, actorID, wishlistID)
}

// UpdateProduct applies a partial update to a product. Any writer on the
// wishlist may edit any product. An update carrying no fields still
// refreshes timestamps.
func (s *service) UpdateProduct(ctx context.Context, actorID, wishlistID, productID uuid.UUID, in UpdateProductInput) (*WishlistDTO, error) {
	w, err := s.findWritable(ctx, actorID, wishlistID)
	if err != nil {
		return nil, err
	}
	if findProduct(w, productID) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	updates := map[string]any{}
	if in.Name != nil {
		name, err := normalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	negativePrice := in.Price != nil && in.Price.IsNegative()
	if err := validateProductFields(in.Description, negativePrice, in.ImageURL, in.URL, in.Category); err != nil {
		return nil, err
	}
	if in.Description != nil {
		updates["description"] = emptyToNil(in.Description)
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.ImageURL != nil {
		updates["image_url"] = emptyToNil(in.ImageURL)
	}
	if in.URL != nil {
		updates["url"] = emptyToNil(in.URL)
	}
	if in.Category != nil {
		updates["category"] = emptyToNil(in.Category)
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "priority must be low, medium, or high")
		}
		updates["priority"] = *in.Priority
	}

	if err := s.wishlists.UpdateProduct(ctx, wishlistID, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.reload(ctx, actorID, wishlistID)
}

// DeleteProduct removes a product. Only the list owner or whoever added the
// product may remove it; other collaborators get forbidden.
func (s *service) DeleteProduct(ctx context.Context, actorID, wishlistID, productID uuid.UUID) (*WishlistDTO, error) {
	w, err := s.findWritable(ctx, actorID, wishlistID)
	if err != nil {
		return nil, err
	}
	p := findProduct(w, productID)
	if p == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !CanDeleteProduct(actorID, w, p) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or the user who added this product can remove it")
	}

	if err := s.wishlists.RemoveProduct(ctx, wishlistID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove product")
	}
	return s.reload(ctx, actorID, wishlistID)
}

// AddCollaborator links a user to a wishlist. Owner-only; adding an existing
// collaborator is a no-op.
func (s *service) AddCollaborator(ctx context.Context, actorID, wishlistID, userID uuid.UUID) (*WishlistDTO, error) {
	w, err := s.findOwned(ctx, actorID, wishlistID)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if userID == w.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "the owner cannot be added as a collaborator")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if err := s.wishlists.AddCollaborator(ctx, wishlistID, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add collaborator")
	}
	return s.reload(ctx, actorID, wishlistID)
}

// RemoveCollaborator unlinks a user from a wishlist. Owner-only; removing a
// user who is not linked is a no-op.
func (s *service) RemoveCollaborator(ctx context.Context, actorID, wishlistID, userID uuid.UUID) (*WishlistDTO, error) {
	w, err := s.findOwned(ctx, actorID, wishlistID)
	if err != nil {
		return nil, err
	}
	if err := s.wishlists.RemoveCollaborator(ctx, w.ID, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove collaborator")
	}
	return s.reload(ctx, actorID, wishlistID)
}

func (s *service) findVisible(ctx context.Context, actorID, wishlistID uuid.UUID) (*models.Wishlist, error) {
	if actorID == uuid.Nil || wishlistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist id is required")
	}
	w, err := s.wishlists.FindVisible(ctx, wishlistID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "wishlist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return w, nil
}

func (s *service) findWritable(ctx context.Context, actorID, wishlistID uuid.UUID) (*models.Wishlist, error) {
	if actorID == uuid.Nil || wishlistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist id is required")
	}
	w, err := s.wishlists.FindWritable(ctx, wishlistID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "wishlist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return w, nil
}

func (s *service) findOwned(ctx context.Context, actorID, wishlistID uuid.UUID) (*models.Wishlist, error) {
	if actorID == uuid.Nil || wishlistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist id is required")
	}
	w, err := s.wishlists.FindOwned(ctx, wishlistID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "wishlist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return w, nil
}

func (s *service) reload(ctx context.Context, actorID, wishlistID uuid.UUID) (*WishlistDTO, error) {
	w, err := s.wishlists.FindVisible(ctx, wishlistID, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wishlist")
	}
	return FromModel(w), nil
}

func toDTOs(lists []models.Wishlist) []WishlistDTO {
	out := make([]WishlistDTO, 0, len(lists))
	for i := range lists {
		out = append(out, *FromModel(&lists[i]))
	}
	return out
}

func findProduct(w *models.Wishlist, productID uuid.UUID) *models.Product {
	for i := range w.Products {
		if w.Products[i].ID == productID {
			return &w.Products[i]
		}
	}
	return nil
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return title, nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return name, nil
}

func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	if utf8.RuneCountInString(*description) > maxDescriptionLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	return emptyToNil(description), nil
}

func validateProductFields(description *string, negativePrice bool, imageURL, rawURL, category *string) error {
	if negativePrice {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	if category != nil && utf8.RuneCountInString(*category) > maxCategoryLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("category must be at most %d characters", maxCategoryLength))
	}
	if err := validateURL("image_url", imageURL); err != nil {
		return err
	}
	return validateURL("url", rawURL)
}

func validateURL(field string, raw *string) error {
	if raw == nil || *raw == "" {
		return nil
	}
	parsed, err := url.Parse(*raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a valid http or https URL", field))
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
