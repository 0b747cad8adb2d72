package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anantkv/saree-store/internal/domain/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStorage описывает методы для работы с корзиной.
// Методы с суффиксом Tx работают в рамках транзакции checkout.
type CartStorage interface {
	GetCartItems(ctx context.Context, userID int64) ([]*models.CartItem, error)
	GetCartItemsTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error)
	GetCartItemByID(ctx context.Context, id int64) (*models.CartItem, error)
	GetCartItemByProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	CreateCartItem(ctx context.Context, userID, productID int64, quantity int) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	DeleteCartItem(ctx context.Context, id int64) error
	DeleteCartItemsTx(ctx context.Context, tx *sql.Tx, userID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

const cartSelect = `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.stock
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id`

func scanCartRows(rows *sql.Rows) ([]*models.CartItem, error) {
	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.ProductName, &item.ProductPrice, &item.ProductStock); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) GetCartItems(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartSelect, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartRows(rows)
}

// GetCartItemsTx читает корзину внутри транзакции checkout, чтобы проверка
// на пустоту и фаза фиксации видели один и тот же снимок
func (r *cartRepository) GetCartItemsTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error) {
	rows, err := tx.QueryContext(ctx, cartSelect, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartRows(rows)
}

func (r *cartRepository) GetCartItemByID(ctx context.Context, id int64) (*models.CartItem, error) {
	item := &models.CartItem{}
	row := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.stock
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.id = $1`, id)
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
		&item.ProductName, &item.ProductPrice, &item.ProductStock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) GetCartItemByProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	item := &models.CartItem{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id = $1 AND product_id = $2",
		userID, productID)
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// CreateCartItem делает upsert по паре (user_id, product_id): два
// конкурентных первых добавления сливаются в одну позицию вместо того,
// чтобы второе упало на уникальном констрейнте
func (r *cartRepository) CreateCartItem(ctx context.Context, userID, productID int64, quantity int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE id = $2", quantity, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// DeleteCartItem идемпотентен: удаление отсутствующей позиции не ошибка
func (r *cartRepository) DeleteCartItem(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", id)
	return err
}

// DeleteCartItemsTx очищает корзину пользователя в рамках транзакции checkout
func (r *cartRepository) DeleteCartItemsTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
