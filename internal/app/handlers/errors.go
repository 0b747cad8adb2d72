package handlers

import (
	"errors"
	"net/http"

	"github.com/anantkv/saree-store/internal/service"
	"github.com/anantkv/saree-store/internal/storage"
)

// statusFromError переводит ошибки бизнес-логики в HTTP-статусы.
// Неопознанные ошибки считаются внутренними.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPaymentMode),
		errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrCartItemNotFound),
		errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrWishlistItemNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
