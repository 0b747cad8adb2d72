package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/lib/pq"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderCodeTaken = errors.New("order code already taken")
)

// OrderStorage описывает методы для работы с журналом заказов.
// Заказы append-only: после фиксации меняется только payment_status.
type OrderStorage interface {
	// CreateOrder вставляет заказ с нулевой суммой и возвращает его id
	// и момент создания по часам БД. При коллизии order_code возвращает
	// ErrOrderCodeTaken, оставляя транзакцию пригодной для повтора.
	CreateOrder(ctx context.Context, tx *sql.Tx, code string, userID int64, mode models.PaymentMode, status models.PaymentStatus) (int64, time.Time, error)
	CreateOrderItem(ctx context.Context, tx *sql.Tx, orderID int64, productName string, price, quantity int) error
	SetOrderTotal(ctx context.Context, tx *sql.Tx, orderID int64, total int) error
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

// CreateOrder вставляет заказ под точкой сохранения: после ошибки любого
// запроса Postgres отклоняет все последующие запросы транзакции (25P02),
// поэтому без ROLLBACK TO SAVEPOINT повтор с новым кодом был бы невозможен.
func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, code string, userID int64, mode models.PaymentMode, status models.PaymentStatus) (int64, time.Time, error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT create_order"); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to create order: %w", err)
	}

	var id int64
	var createdAt time.Time
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (order_code, user_id, payment_mode, payment_status, total_amount, created_at)
		 VALUES ($1, $2, $3, $4, 0, NOW()) RETURNING id, created_at`,
		code, userID, string(mode), string(status),
	).Scan(&id, &createdAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT create_order"); rbErr != nil {
				return 0, time.Time{}, fmt.Errorf("failed to recover transaction after code collision: %w", rbErr)
			}
			return 0, time.Time{}, ErrOrderCodeTaken
		}
		return 0, time.Time{}, fmt.Errorf("failed to create order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT create_order"); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to create order: %w", err)
	}
	return id, createdAt, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, orderID int64, productName string, price, quantity int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_name, price, quantity)
		 VALUES ($1, $2, $3, $4)`,
		orderID, productName, price, quantity)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) SetOrderTotal(ctx context.Context, tx *sql.Tx, orderID int64, total int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET total_amount = $1 WHERE id = $2", total, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

const orderColumns = "id, order_code, user_id, payment_mode, payment_status, total_amount, created_at"

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.OrderCode, &order.UserID,
			&order.PaymentMode, &order.PaymentStatus, &order.TotalAmount, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.getOrderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, product_name, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductName, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrdersByUserID возвращает заказы пользователя, новые сверху
func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.queryOrders(ctx, query, userID)
}

// GetAllOrders возвращает все заказы для административной панели
func (r *orderRepository) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC`
	return r.queryOrders(ctx, query)
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err := row.Scan(&order.ID, &order.OrderCode, &order.UserID,
		&order.PaymentMode, &order.PaymentStatus, &order.TotalAmount, &order.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET payment_status = $1 WHERE id = $2", string(status), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
