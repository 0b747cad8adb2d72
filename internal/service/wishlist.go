package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/storage"
)

// WishlistService — переключение и просмотр отложенных товаров.
type WishlistService interface {
	// Toggle добавляет товар в список, если его там нет, и убирает, если есть.
	// Возвращает true, если товар оказался в списке после вызова.
	Toggle(ctx context.Context, userID, productID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]*models.WishlistItem, error)
}

type wishlistService struct {
	log          *slog.Logger
	wishlistRepo storage.WishlistStorage
	productRepo  storage.ProductStorage
}

func NewWishlistService(log *slog.Logger, wishlistRepo storage.WishlistStorage, productRepo storage.ProductStorage) WishlistService {
	return &wishlistService{
		log:          log,
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	const op = "service.WishlistService.Toggle"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	item, err := s.wishlistRepo.GetWishlistItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, storage.ErrWishlistItemNotFound) {
			if err := s.wishlistRepo.CreateWishlistItem(ctx, userID, productID); err != nil {
				// конкурентный дубль: товар уже в списке, итог тот же
				if errors.Is(err, storage.ErrWishlistItemExists) {
					return true, nil
				}
				return false, fmt.Errorf("%s: %w", op, err)
			}
			logger.Info("item added to wishlist")
			return true, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.wishlistRepo.DeleteWishlistItem(ctx, item.ID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("item removed from wishlist")
	return false, nil
}

func (s *wishlistService) List(ctx context.Context, userID int64) ([]*models.WishlistItem, error) {
	const op = "service.WishlistService.List"

	items, err := s.wishlistRepo.GetWishlistItems(ctx, userID)
	if err != nil {
		s.log.Error("failed to list wishlist", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
