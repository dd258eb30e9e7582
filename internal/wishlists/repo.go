package wishlists

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wishlane/wishlane-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const collaboratorExistsClause = "EXISTS (SELECT 1 FROM wishlist_collaborators c WHERE c.wishlist_id = wishlists.id AND c.user_id = ?)"

// Repository encapsulates wishlist persistence. Visibility and write scoping
// are folded into the queries themselves, so a lookup the caller is not
// allowed to see fails exactly like a lookup of a row that does not exist.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func withAggregate(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Owner").
		Preload("Collaborators.User").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Products.AddedBy")
}

// ListVisible returns every wishlist the user owns, collaborates on, or that
// is public, most recently touched first.
func (r *Repository) ListVisible(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	var lists []models.Wishlist
	err := withAggregate(r.db.WithContext(ctx)).
		Where("owner_id = ? OR is_public OR "+collaboratorExistsClause, userID, userID).
		Order("updated_at DESC").
		Find(&lists).
		Error
	return lists, err
}

// ListPublic returns public wishlists only, most recently touched first.
func (r *Repository) ListPublic(ctx context.Context) ([]models.Wishlist, error) {
	var lists []models.Wishlist
	err := withAggregate(r.db.WithContext(ctx)).
		Where("is_public").
		Order("updated_at DESC").
		Find(&lists).
		Error
	return lists, err
}

// FindVisible loads one wishlist the user may view. Missing and denied are
// indistinguishable; both return gorm.ErrRecordNotFound.
func (r *Repository) FindVisible(ctx context.Context, id, userID uuid.UUID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := withAggregate(r.db.WithContext(ctx)).
		Where("wishlists.id = ?", id).
		Where("owner_id = ? OR is_public OR "+collaboratorExistsClause, userID, userID).
		First(&w).
		Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FindWritable loads one wishlist the user may mutate products on, meaning
// the owner or a collaborator. Public visibility grants no write access.
func (r *Repository) FindWritable(ctx context.Context, id, userID uuid.UUID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := withAggregate(r.db.WithContext(ctx)).
		Where("wishlists.id = ?", id).
		Where("owner_id = ? OR "+collaboratorExistsClause, userID, userID).
		First(&w).
		Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FindOwned loads one wishlist only if ownerID owns it.
func (r *Repository) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := withAggregate(r.db.WithContext(ctx)).
		Where("wishlists.id = ? AND owner_id = ?", id, ownerID).
		First(&w).
		Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create inserts a new wishlist row.
func (r *Repository) Create(ctx context.Context, w *models.Wishlist) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// UpdateMetadata applies a partial column update to a wishlist.
func (r *Repository) UpdateMetadata(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return r.touch(r.db.WithContext(ctx), id)
	}
	return r.db.WithContext(ctx).
		Model(&models.Wishlist{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

// Delete removes a wishlist together with its products and collaborator
// links in one transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wishlist_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("wishlist_id = ?", id).Delete(&models.WishlistCollaborator{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Wishlist{}).Error
	})
}

// AppendProduct inserts a product at the end of the wishlist and bumps the
// parent's updated_at.
func (r *Repository) AppendProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos *int
		err := tx.Model(&models.Product{}).
			Where("wishlist_id = ?", p.WishlistID).
			Select("MAX(position)").
			Scan(&maxPos).
			Error
		if err != nil {
			return err
		}
		if maxPos != nil {
			p.Position = *maxPos + 1
		}

		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return r.touch(tx, p.WishlistID)
	})
}

// UpdateProduct applies a partial column update to a product and bumps the
// parent's updated_at. An empty update still refreshes both timestamps.
func (r *Repository) UpdateProduct(ctx context.Context, wishlistID, productID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if updates == nil {
			updates = map[string]any{}
		}
		updates["updated_at"] = time.Now().UTC()

		err := tx.Model(&models.Product{}).
			Where("id = ? AND wishlist_id = ?", productID, wishlistID).
			Updates(updates).
			Error
		if err != nil {
			return err
		}
		return r.touch(tx, wishlistID)
	})
}

// RemoveProduct deletes a product and bumps the parent's updated_at.
func (r *Repository) RemoveProduct(ctx context.Context, wishlistID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND wishlist_id = ?", productID, wishlistID).
			Delete(&models.Product{}).
			Error
		if err != nil {
			return err
		}
		return r.touch(tx, wishlistID)
	})
}

// AddCollaborator links a user to a wishlist and ignores duplicates.
func (r *Repository) AddCollaborator(ctx context.Context, wishlistID, userID uuid.UUID) error {
	link := models.WishlistCollaborator{WishlistID: wishlistID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wishlist_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&link).
		Error
}

// RemoveCollaborator unlinks a user from a wishlist if linked.
func (r *Repository) RemoveCollaborator(ctx context.Context, wishlistID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ? AND user_id = ?", wishlistID, userID).
		Delete(&models.WishlistCollaborator{}).
		Error
}

func (r *Repository) touch(tx *gorm.DB, wishlistID uuid.UUID) error {
	return tx.Model(&models.Wishlist{}).
		Where("id = ?", wishlistID).
		UpdateColumn("updated_at", time.Now().UTC()).
		Error
}
