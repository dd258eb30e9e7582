package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wishlane/wishlane-backend/api/middleware"
	"github.com/wishlane/wishlane-backend/api/responses"
	"github.com/wishlane/wishlane-backend/api/validators"
	"github.com/wishlane/wishlane-backend/internal/wishlists"
	"github.com/wishlane/wishlane-backend/pkg/enums"
	pkgerrors "github.com/wishlane/wishlane-backend/pkg/errors"
	"github.com/wishlane/wishlane-backend/pkg/logger"
)

type createWishlistPayload struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

type updateWishlistPayload struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

type addProductPayload struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	URL         *string         `json:"url,omitempty" validate:"omitempty,url"`
	Category    *string         `json:"category,omitempty" validate:"omitempty,max=50"`
	Priority    *string         `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

type updateProductPayload struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	URL         *string          `json:"url,omitempty"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=50"`
	Priority    *string          `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// WishlistList returns every wishlist the caller may view.
func WishlistList(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, err := actorFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		lists, err := svc.List(ctx, actorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, lists)
	}
}

// WishlistListPublic returns public wishlists only.
func WishlistListPublic(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		lists, err := svc.ListPublic(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, lists)
	}
}

// WishlistGet loads one wishlist the caller may view.
func WishlistGet(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, actorID, wishlistID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// WishlistCreate creates a wishlist owned by the caller.
func WishlistCreate(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, err := actorFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createWishlistPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, actorID, wishlists.CreateWishlistInput{
			Title:       payload.Title,
			Description: payload.Description,
			IsPublic:    payload.IsPublic,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// WishlistUpdate applies a partial metadata update. Owner only.
func WishlistUpdate(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateWishlistPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateMetadata(ctx, actorID, wishlistID, wishlists.UpdateWishlistInput{
			Title:       payload.Title,
			Description: payload.Description,
			IsPublic:    payload.IsPublic,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// WishlistDelete removes a wishlist and everything nested in it. Owner only.
func WishlistDelete(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, actorID, wishlistID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ProductAdd appends a product to a wishlist the caller may write to.
func ProductAdd(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload addProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		priority, err := parsePriority(payload.Priority)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.AddProduct(ctx, actorID, wishlistID, wishlists.AddProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			ImageURL:    payload.ImageURL,
			URL:         payload.URL,
			Category:    payload.Category,
			Priority:    priority,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ProductUpdate applies a partial update to a product.
func ProductUpdate(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		priority, err := parsePriority(payload.Priority)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(ctx, actorID, wishlistID, productID, wishlists.UpdateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			ImageURL:    payload.ImageURL,
			URL:         payload.URL,
			Category:    payload.Category,
			Priority:    priority,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductDelete removes a product. Owner or adder only.
func ProductDelete(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.DeleteProduct(ctx, actorID, wishlistID, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CollaboratorAdd links a user to a wishlist. Owner only; idempotent.
func CollaboratorAdd(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.AddCollaborator(ctx, actorID, wishlistID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CollaboratorRemove unlinks a user from a wishlist. Owner only.
func CollaboratorRemove(svc wishlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID, wishlistID, err := actorAndWishlist(ctx, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.RemoveCollaborator(ctx, actorID, wishlistID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func actorFromContext(ctx context.Context) (uuid.UUID, error) {
	actorID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}
	return actorID, nil
}

func actorAndWishlist(ctx context.Context, r *http.Request) (uuid.UUID, uuid.UUID, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	wishlistID, err := pathUUID(r, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return actorID, wishlistID, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}

func parsePriority(raw *string) (*enums.ProductPriority, error) {
	if raw == nil {
		return nil, nil
	}
	priority, err := enums.ParseProductPriority(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "priority must be low, medium, or high")
	}
	return &priority, nil
}
