package wishlists

import (
	"github.com/google/uuid"
	"github.com/wishlane/wishlane-backend/pkg/db/models"
)

// Pure capability checks over a loaded wishlist. The repo folds the same
// rules into its queries so denied lookups surface as not-found; these exist
// for the decisions that must distinguish forbidden from missing.

// IsOwner reports whether userID owns the wishlist.
func IsOwner(userID uuid.UUID, w *models.Wishlist) bool {
	return w != nil && w.OwnerID == userID
}

// IsCollaborator reports whether userID is linked as a collaborator.
// Ownership does not imply collaboration.
func IsCollaborator(userID uuid.UUID, w *models.Wishlist) bool {
	if w == nil {
		return false
	}
	for _, link := range w.Collaborators {
		if link.UserID == userID {
			return true
		}
	}
	return false
}

// CanView holds for the owner, any collaborator, and anyone on a public list.
func CanView(userID uuid.UUID, w *models.Wishlist) bool {
	if w == nil {
		return false
	}
	return w.IsPublic || IsOwner(userID, w) || IsCollaborator(userID, w)
}

// CanMutateProducts holds for the owner and collaborators. Public visibility
// grants no write access.
func CanMutateProducts(userID uuid.UUID, w *models.Wishlist) bool {
	return IsOwner(userID, w) || IsCollaborator(userID, w)
}

// CanEditMetadata is owner-only. Collaborators may touch products but never
// the list's title, description, or visibility.
func CanEditMetadata(userID uuid.UUID, w *models.Wishlist) bool {
	return IsOwner(userID, w)
}

// CanDelete is owner-only.
func CanDelete(userID uuid.UUID, w *models.Wishlist) bool {
	return IsOwner(userID, w)
}

// CanManageCollaborators is owner-only.
func CanManageCollaborators(userID uuid.UUID, w *models.Wishlist) bool {
	return IsOwner(userID, w)
}

// CanDeleteProduct holds for the list owner and for whoever added the
// product. Other collaborators may edit it but not remove it.
func CanDeleteProduct(userID uuid.UUID, w *models.Wishlist, p *models.Product) bool {
	if p == nil {
		return false
	}
	return IsOwner(userID, w) || p.AddedByID == userID
}
