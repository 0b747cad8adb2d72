package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/lib/pq"
)

var (
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
	ErrWishlistItemExists   = errors.New("wishlist item already exists")
)

type WishlistStorage interface {
	GetWishlistItems(ctx context.Context, userID int64) ([]*models.WishlistItem, error)
	GetWishlistItem(ctx context.Context, userID, productID int64) (*models.WishlistItem, error)
	CreateWishlistItem(ctx context.Context, userID, productID int64) error
	DeleteWishlistItem(ctx context.Context, id int64) error
}

type wishlistRepository struct {
	db *sql.DB
}

func NewWishlistRepository(db *sql.DB) WishlistStorage {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) GetWishlistItems(ctx context.Context, userID int64) ([]*models.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.id, w.user_id, w.product_id, p.name, p.price
		FROM wishlist w
		JOIN products p ON w.product_id = p.id
		WHERE w.user_id = $1
		ORDER BY w.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.WishlistItem
	for rows.Next() {
		item := &models.WishlistItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID,
			&item.ProductName, &item.ProductPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) GetWishlistItem(ctx context.Context, userID, productID int64) (*models.WishlistItem, error) {
	item := &models.WishlistItem{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id FROM wishlist WHERE user_id = $1 AND product_id = $2",
		userID, productID)
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWishlistItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// CreateWishlistItem добавляет товар в список; конкурентный дубль
// различим для вызывающего через ErrWishlistItemExists
func (r *wishlistRepository) CreateWishlistItem(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO wishlist (user_id, product_id) VALUES ($1, $2)", userID, productID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrWishlistItemExists
		}
		return err
	}
	return nil
}

func (r *wishlistRepository) DeleteWishlistItem(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM wishlist WHERE id = $1", id)
	return err
}
