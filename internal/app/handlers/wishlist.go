package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/jwt-new/jwtmiddleware"
	"github.com/anantkv/saree-store/internal/service"
	"github.com/go-chi/chi/v5"
)

// ToggleWishlistResponse сообщает, оказался ли товар в списке после вызова.
type ToggleWishlistResponse struct {
	Message    string `json:"message"`
	Wishlisted bool   `json:"wishlisted"`
}

// ToggleWishlistHandler обрабатывает запрос POST /api/wishlist/{productID}
func ToggleWishlistHandler(log *slog.Logger, wishlistService service.WishlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ToggleWishlistHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
		if err != nil {
			logger.Error("invalid product id", slog.Any("error", err))
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		wishlisted, err := wishlistService.Toggle(r.Context(), userID, productID)
		if err != nil {
			logger.Error("failed to toggle wishlist", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		msg := "Item Removed from Wishlist"
		if wishlisted {
			msg = "Item Added to Wishlist"
		}
		writeJSON(w, logger, ToggleWishlistResponse{Message: msg, Wishlisted: wishlisted})
	}
}

// WishlistHandler обрабатывает запрос GET /api/wishlist
func WishlistHandler(log *slog.Logger, wishlistService service.WishlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.WishlistHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := wishlistService.List(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list wishlist", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []*models.WishlistItem{}
		}

		writeJSON(w, logger, items)
	}
}
