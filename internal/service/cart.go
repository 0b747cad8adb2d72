package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/storage"
)

// CartService определяет операции над корзиной пользователя.
// Владелец передаётся явно в каждый вызов — неявного "текущего
// пользователя" в бизнес-логике нет.
type CartService interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int) error
	UpdateItem(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID int64) error
	List(ctx context.Context, userID int64) ([]*models.CartItem, int, error)
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem добавляет товар в корзину или увеличивает количество.
// Суммарное количество сверяется с текущим остатком.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		logger.Warn("product lookup failed", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	existingQty := 0
	item, err := s.cartRepo.GetCartItemByProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, storage.ErrCartItemNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if item != nil {
		existingQty = item.Quantity
	}

	if existingQty+quantity > product.Stock {
		logger.Warn("insufficient stock",
			slog.Int("requested", existingQty+quantity),
			slog.Int("available", product.Stock))
		return fmt.Errorf("%s: %w: %s", op, ErrInsufficientStock, product.Name)
	}

	if item != nil {
		if err := s.cartRepo.UpdateQuantity(ctx, item.ID, existingQty+quantity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	} else {
		if err := s.cartRepo.CreateCartItem(ctx, userID, productID, quantity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	logger.Info("item added to cart", slog.Int("quantity", quantity))
	return nil
}

// UpdateItem выставляет новое количество. Ноль и меньше удаляют позицию —
// это штатный исход, не ошибка.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) error {
	const op = "service.CartService.UpdateItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("itemID", itemID))

	item, err := s.cartRepo.GetCartItemByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if item.UserID != userID {
		logger.Warn("cart item belongs to another user")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteCartItem(ctx, itemID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Info("item removed via zero quantity")
		return nil
	}

	// сверка с актуальным остатком в момент записи, не со старым чтением
	product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if quantity > product.Stock {
		logger.Warn("insufficient stock", slog.Int("requested", quantity), slog.Int("available", product.Stock))
		return fmt.Errorf("%s: %w: %s", op, ErrInsufficientStock, product.Name)
	}

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("cart item updated", slog.Int("quantity", quantity))
	return nil
}

// RemoveItem удаляет позицию. Повторное удаление — не ошибка.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	const op = "service.CartService.RemoveItem"

	item, err := s.cartRepo.GetCartItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return nil // идемпотентность
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if item.UserID != userID {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.cartRepo.DeleteCartItem(ctx, itemID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает позиции корзины и живую сумму по текущим ценам каталога
func (s *cartService) List(ctx context.Context, userID int64) ([]*models.CartItem, int, error) {
	const op = "service.CartService.List"

	items, err := s.cartRepo.GetCartItems(ctx, userID)
	if err != nil {
		s.log.Error("failed to list cart", slog.String("op", op), slog.Any("error", err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	total := 0
	for _, item := range items {
		total += item.ProductPrice * item.Quantity
	}
	return items, total, nil
}
