package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/storage"
)

// OrderService — чтение журнала заказов и административная смена статуса оплаты.
type OrderService interface {
	ListForUser(ctx context.Context, userID int64) ([]*models.Order, error)
	ListAll(ctx context.Context, actorID int64) ([]*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status string, actorID int64) error
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	userRepo  storage.UserStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, userRepo storage.UserStorage) OrderService {
	return &orderService{
		log:       log,
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

// ListForUser возвращает заказы пользователя с позициями, новые сверху
func (s *orderService) ListForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListForUser"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// ListAll возвращает все заказы; доступно только администратору
func (s *orderService) ListAll(ctx context.Context, actorID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListAll"

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		s.log.Error("failed to get all orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdatePaymentStatus переводит оплату Pending -> Paid (повторный перевод
// в Paid идемпотентен). Позиции и сумма заказа не меняются никогда.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID int64, status string, actorID int64) error {
	const op = "service.OrderService.UpdatePaymentStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.String("status", status))

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	newStatus, err := models.ParsePaymentStatus(status)
	if err != nil {
		logger.Warn("rejected unknown payment status")
		return fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	if _, err := s.orderRepo.GetOrderByID(ctx, orderID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, newStatus); err != nil {
		logger.Error("failed to update payment status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("payment status updated")
	return nil
}

// requireAdmin сверяет флаг is_admin по базе, а не по данным запроса
func (s *orderService) requireAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return ErrForbidden
	}
	return nil
}
