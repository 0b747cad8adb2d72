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

// ProductRequest — тело запроса на создание/изменение товара.
type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	MRP         int    `json:"mrp" validate:"required,gt=0"`
	Price       int    `json:"price" validate:"required,gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// UpdateStockRequest — прямая правка остатка.
type UpdateStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

// UpdateOrderStatusRequest — смена статуса оплаты заказа.
type UpdateOrderStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// Права проверяет бизнес-логика по базе; обработчики только передают
// личность вызывающего явным аргументом.

// CreateProductHandler обрабатывает запрос POST /api/admin/products
func CreateProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req ProductRequest
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

		product := &models.Product{
			Name:        req.Name,
			MRP:         req.MRP,
			Price:       req.Price,
			Stock:       req.Stock,
			Image:       req.Image,
			Description: req.Description,
		}
		created, err := catalogService.CreateProduct(r.Context(), userID, product)
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(created); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// UpdateProductHandler обрабатывает запрос PUT /api/admin/products/{id}
func UpdateProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid product id", slog.Any("error", err))
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		var req ProductRequest
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

		product := &models.Product{
			ID:          id,
			Name:        req.Name,
			MRP:         req.MRP,
			Price:       req.Price,
			Stock:       req.Stock,
			Image:       req.Image,
			Description: req.Description,
		}
		if err := catalogService.UpdateProduct(r.Context(), userID, product); err != nil {
			logger.Error("failed to update product", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		writeJSON(w, logger, messageResponse{Message: "Product updated"})
	}
}

// DeleteProductHandler обрабатывает запрос DELETE /api/admin/products/{id}
func DeleteProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid product id", slog.Any("error", err))
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		if err := catalogService.DeleteProduct(r.Context(), userID, id); err != nil {
			logger.Error("failed to delete product", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		writeJSON(w, logger, messageResponse{Message: "Product deleted"})
	}
}

// UpdateStockHandler обрабатывает запрос POST /api/admin/products/{id}/stock
func UpdateStockHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateStockHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid product id", slog.Any("error", err))
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		var req UpdateStockRequest
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

		if err := catalogService.SetStock(r.Context(), userID, id, req.Stock); err != nil {
			logger.Error("failed to update stock", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		writeJSON(w, logger, messageResponse{Message: "Stock updated successfully"})
	}
}

// AdminOrdersHandler обрабатывает запрос GET /api/admin/orders — все заказы магазина
func AdminOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderService.ListAll(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get orders", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}

		writeJSON(w, logger, orders)
	}
}

// UpdateOrderStatusHandler обрабатывает запрос POST /api/admin/orders/{id}/status
func UpdateOrderStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid order id", slog.Any("error", err))
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		var req UpdateOrderStatusRequest
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

		if err := orderService.UpdatePaymentStatus(r.Context(), orderID, req.PaymentStatus, userID); err != nil {
			logger.Error("failed to update payment status", slog.Any("error", err))
			http.Error(w, err.Error(), statusFromError(err))
			return
		}

		writeJSON(w, logger, messageResponse{Message: "Order payment status updated"})
	}
}
