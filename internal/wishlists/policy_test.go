package wishlists

import (
	"testing"

	"github.com/google/uuid"
	"github.com/wishlane/wishlane-backend/pkg/db/models"
)

func fixtureWishlist(ownerID uuid.UUID, collaboratorIDs []uuid.UUID, isPublic bool) *models.Wishlist {
	w := &models.Wishlist{
		ID:       uuid.New(),
		Title:    "gifts",
		OwnerID:  ownerID,
		IsPublic: isPublic,
	}
	for _, id := range collaboratorIDs {
		w.Collaborators = append(w.Collaborators, models.WishlistCollaborator{
			WishlistID: w.ID,
			UserID:     id,
		})
	}
	return w
}

func TestPolicyCapabilities(t *testing.T) {
	owner := uuid.New()
	collaborator := uuid.New()
	stranger := uuid.New()

	cases := []struct {
		name         string
		isPublic     bool
		actor        uuid.UUID
		canView      bool
		canMutate    bool
		canEditMeta  bool
		canDelete    bool
		canManage    bool
	}{
		{"owner private", false, owner, true, true, true, true, true},
		{"owner public", true, owner, true, true, true, true, true},
		{"collaborator private", false, collaborator, true, true, false, false, false},
		{"collaborator public", true, collaborator, true, true, false, false, false},
		{"stranger private", false, stranger, false, false, false, false, false},
		{"stranger public", true, stranger, true, false, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := fixtureWishlist(owner, []uuid.UUID{collaborator}, tc.isPublic)
			if got := CanView(tc.actor, w); got != tc.canView {
				t.Fatalf("CanView = %v, want %v", got, tc.canView)
			}
			if got := CanMutateProducts(tc.actor, w); got != tc.canMutate {
				t.Fatalf("CanMutateProducts = %v, want %v", got, tc.canMutate)
			}
			if got := CanEditMetadata(tc.actor, w); got != tc.canEditMeta {
				t.Fatalf("CanEditMetadata = %v, want %v", got, tc.canEditMeta)
			}
			if got := CanDelete(tc.actor, w); got != tc.canDelete {
				t.Fatalf("CanDelete = %v, want %v", got, tc.canDelete)
			}
			if got := CanManageCollaborators(tc.actor, w); got != tc.canManage {
				t.Fatalf("CanManageCollaborators = %v, want %v", got, tc.canManage)
			}
		})
	}
}

func TestPolicyOwnershipDoesNotImplyCollaboration(t *testing.T) {
	owner := uuid.New()
	w := fixtureWishlist(owner, nil, false)
	if IsCollaborator(owner, w) {
		t.Fatalf("owner should not count as collaborator")
	}
	if !IsOwner(owner, w) {
		t.Fatalf("expected owner")
	}
}

func TestPolicyCanDeleteProduct(t *testing.T) {
	owner := uuid.New()
	adder := uuid.New()
	other := uuid.New()
	w := fixtureWishlist(owner, []uuid.UUID{adder, other}, false)
	p := &models.Product{ID: uuid.New(), WishlistID: w.ID, AddedByID: adder}

	if !CanDeleteProduct(owner, w, p) {
		t.Fatalf("owner should be able to delete any product")
	}
	if !CanDeleteProduct(adder, w, p) {
		t.Fatalf("adder should be able to delete their own product")
	}
	if CanDeleteProduct(other, w, p) {
		t.Fatalf("unrelated collaborator should not delete someone else's product")
	}
	if CanDeleteProduct(owner, w, nil) {
		t.Fatalf("nil product should never be deletable")
	}
}

func TestPolicyNilWishlist(t *testing.T) {
	actor := uuid.New()
	if CanView(actor, nil) || CanMutateProducts(actor, nil) || CanDelete(actor, nil) {
		t.Fatalf("nil wishlist should grant nothing")
	}
}
