package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/jwt-new/jwtmiddleware"
	"github.com/anantkv/saree-store/internal/service"
)

// CheckoutRequest — выбор способа оплаты при оформлении заказа.
type CheckoutRequest struct {
	PaymentMode string `json:"payment_mode" validate:"required"`
}

// CheckoutResponse возвращает данные созданного заказа для страницы подтверждения.
type CheckoutResponse struct {
	OrderCode     string `json:"order_code"`
	TotalAmount   int    `json:"total_amount"`
	PaymentMode   string `json:"payment_mode"`
	PaymentStatus string `json:"payment_status"`
}

// CheckoutHandler обрабатывает запрос POST /api/checkout
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req CheckoutRequest
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

		mode, err := models.ParsePaymentMode(req.PaymentMode)
		if err != nil {
			logger.Error("invalid payment mode", slog.Any("error", err))
			http.Error(w, "invalid payment mode", http.StatusBadRequest)
			return
		}

		order, err := checkoutService.PlaceOrder(r.Context(), userID, mode)
		if err != nil {
			logger.Error("checkout failed", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		resp := CheckoutResponse{
			OrderCode:     order.OrderCode,
			TotalAmount:   order.TotalAmount,
			PaymentMode:   string(order.PaymentMode),
			PaymentStatus: string(order.PaymentStatus),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
