package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/jwt-new/jwtmiddleware"
	"github.com/anantkv/saree-store/internal/service"
	"github.com/go-chi/chi/v5"
)

// AddToCartRequest представляет входной JSON для добавления товара в корзину.
type AddToCartRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest — новое количество для позиции корзины.
// Ноль допустим и означает удаление позиции.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse — корзина с живой суммой по текущим ценам.
type CartResponse struct {
	Items []*models.CartItem `json:"items"`
	Total int                `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// CartHandler обрабатывает запрос GET /api/cart
func CartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, total, err := cartService.List(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list cart", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []*models.CartItem{}
		}

		writeJSON(w, logger, CartResponse{Items: items, Total: total})
	}
}

// AddToCartHandler обрабатывает запрос POST /api/cart/{productID}
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
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

		var req AddToCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		if err := cartService.AddItem(r.Context(), userID, productID, req.Quantity); err != nil {
			logger.Error("failed to add item to cart", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		writeJSON(w, logger, messageResponse{Message: "Added to cart"})
	}
}

// UpdateCartItemHandler обрабатывает запрос PUT /api/cart/items/{itemID}
func UpdateCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
		if err != nil {
			logger.Error("invalid item id", slog.Any("error", err))
			http.Error(w, "invalid item id", http.StatusBadRequest)
			return
		}

		var req UpdateCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := cartService.UpdateItem(r.Context(), userID, itemID, req.Quantity); err != nil {
			logger.Error("failed to update cart item", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		writeJSON(w, logger, messageResponse{Message: "Cart updated"})
	}
}

// RemoveCartItemHandler обрабатывает запрос DELETE /api/cart/items/{itemID}
func RemoveCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveCartItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
		if err != nil {
			logger.Error("invalid item id", slog.Any("error", err))
			http.Error(w, "invalid item id", http.StatusBadRequest)
			return
		}

		if err := cartService.RemoveItem(r.Context(), userID, itemID); err != nil {
			logger.Error("failed to remove cart item", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		writeJSON(w, logger, messageResponse{Message: "Item removed"})
	}
}
