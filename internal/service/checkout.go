package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/storage"
)

// CheckoutService превращает корзину пользователя в заказ.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID int64, mode models.PaymentMode) (*models.Order, error)
}

type checkoutService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) CheckoutService {
	return &checkoutService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// количество попыток вставки заказа при коллизии order_code
const orderCodeAttempts = 5

// PlaceOrder оформляет заказ: читает корзину, проверяет остатки,
// списывает stock, снимает снимки позиций и очищает корзину —
// всё в одной транзакции. Любой сбой откатывает все изменения разом.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID int64, mode models.PaymentMode) (*models.Order, error) {
	const op = "service.CheckoutService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("mode", string(mode)))
	logger.Info("starting checkout transaction")

	if _, err := models.ParsePaymentMode(string(mode)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPaymentMode)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
	}
	// откат на любом пути выхода, включая панику; после Commit — no-op
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	// Читаем корзину внутри транзакции
	items, err := s.cartRepo.GetCartItemsTx(ctx, tx, userID)
	if err != nil {
		logger.Error("failed to load cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
	}
	if len(items) == 0 {
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	// Фаза проверки: блокируем строки товаров и сверяем остатки.
	// Корзина остаётся нетронутой, если хотя бы одной позиции не хватает.
	products := make(map[int64]*models.Product, len(items))
	for _, item := range items {
		product, err := s.productRepo.LockProductByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				logger.Warn("product missing from catalog", slog.Int64("productID", item.ProductID))
				return nil, fmt.Errorf("%s: %w: %s", op, ErrInsufficientStock, item.ProductName)
			}
			logger.Error("failed to lock product", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
		}
		if item.Quantity > product.Stock {
			logger.Warn("insufficient stock",
				slog.String("product", product.Name),
				slog.Int("requested", item.Quantity),
				slog.Int("available", product.Stock))
			return nil, fmt.Errorf("%s: %w: %s", op, ErrInsufficientStock, product.Name)
		}
		products[item.ProductID] = product
	}

	// Создаём заказ с провизорной суммой; код перегенерируем при коллизии
	orderID, orderCode, createdAt, err := s.insertOrderWithFreshCode(ctx, tx, userID, mode)
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
	}

	// Фаза фиксации: списание остатков и снимки позиций
	total := 0
	for _, item := range items {
		product := products[item.ProductID]

		ok, err := s.productRepo.DecrementStock(ctx, tx, product.ID, item.Quantity)
		if err != nil {
			logger.Error("failed to decrement stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
		}
		if !ok {
			// остаток изменился после проверки — заказ целиком не состоялся
			logger.Warn("stock dropped below requested quantity", slog.String("product", product.Name))
			return nil, fmt.Errorf("%s: %w: %s", op, ErrInsufficientStock, product.Name)
		}

		if err := s.orderRepo.CreateOrderItem(ctx, tx, orderID, product.Name, product.Price, item.Quantity); err != nil {
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
		}
		total += product.Price * item.Quantity
	}

	if err := s.orderRepo.SetOrderTotal(ctx, tx, orderID, total); err != nil {
		logger.Error("failed to set order total", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
	}

	if err := s.cartRepo.DeleteCartItemsTx(ctx, tx, userID); err != nil {
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrCheckoutFailed)
	}
	committed = true

	logger.Info("checkout completed", slog.String("orderCode", orderCode), slog.Int("total", total))
	// момент создания — по часам БД, как в сохранённой строке заказа
	return &models.Order{
		ID:            orderID,
		OrderCode:     orderCode,
		UserID:        userID,
		PaymentMode:   mode,
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   total,
		CreatedAt:     createdAt,
	}, nil
}

// insertOrderWithFreshCode вставляет заказ, перегенерируя код при
// нарушении уникальности. Коллизии не видны вызывающему: хранилище
// откатывается к точке сохранения, и повтор идёт в той же транзакции.
func (s *checkoutService) insertOrderWithFreshCode(ctx context.Context, tx *sql.Tx, userID int64, mode models.PaymentMode) (int64, string, time.Time, error) {
	for i := 0; i < orderCodeAttempts; i++ {
		code, err := newOrderCode()
		if err != nil {
			return 0, "", time.Time{}, err
		}
		orderID, createdAt, err := s.orderRepo.CreateOrder(ctx, tx, code, userID, mode, models.PaymentStatusPending)
		if err != nil {
			if errors.Is(err, storage.ErrOrderCodeTaken) {
				continue
			}
			return 0, "", time.Time{}, err
		}
		return orderID, code, createdAt, nil
	}
	return 0, "", time.Time{}, fmt.Errorf("failed to generate unique order code after %d attempts", orderCodeAttempts)
}

// newOrderCode генерирует человекочитаемый код заказа. Секундной метки
// времени недостаточно при конкурентных оформлениях, поэтому к ней
// добавляется случайный суффикс; уникальность гарантирует констрейнт БД.
func newOrderCode() (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate order code: %w", err)
	}
	return fmt.Sprintf("ORD%s%s",
		time.Now().UTC().Format("20060102150405"),
		hex.EncodeToString(suffix)), nil
}
