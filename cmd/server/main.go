package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anantkv/saree-store/internal/app"
	"github.com/anantkv/saree-store/internal/app/handlers"
	"github.com/anantkv/saree-store/internal/config"
	"github.com/anantkv/saree-store/internal/jwt-new/jwtmiddleware"
	"github.com/anantkv/saree-store/internal/lib/logger"
	"github.com/anantkv/saree-store/internal/lib/logger/handlers/urllog"
	"github.com/anantkv/saree-store/internal/service"
	"github.com/anantkv/saree-store/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	wishlistRepo := storage.NewWishlistRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo, userRepo)
	cartService := service.NewCartService(application.Logger, cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(application.Logger, application.DB, cartRepo, productRepo, orderRepo)
	orderService := service.NewOrderService(application.Logger, orderRepo, userRepo)
	wishlistService := service.NewWishlistService(application.Logger, wishlistRepo, productRepo)

	// наполнение пустого каталога демонстрационными товарами
	if cfg.Catalog.SeedOnStart {
		if err := catalogService.Seed(context.Background()); err != nil {
			log.Error("failed to seed catalog", slog.Any("error", err))
		}
	}

	// открытые эндпоинты: регистрация, аутентификация, витрина
	router.Post("/api/register", handlers.RegisterHandler(application.Logger, authService))
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.GetProductHandler(application.Logger, catalogService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		// корзина
		r.Get("/api/cart", handlers.CartHandler(application.Logger, cartService))
		r.Post("/api/cart/{productID}", handlers.AddToCartHandler(application.Logger, cartService))
		r.Put("/api/cart/items/{itemID}", handlers.UpdateCartItemHandler(application.Logger, cartService))
		r.Delete("/api/cart/items/{itemID}", handlers.RemoveCartItemHandler(application.Logger, cartService))
		// оформление заказа и история
		r.Post("/api/checkout", handlers.CheckoutHandler(application.Logger, checkoutService))
		r.Get("/api/orders", handlers.OrdersHandler(application.Logger, orderService))
		// отложенные товары
		r.Get("/api/wishlist", handlers.WishlistHandler(application.Logger, wishlistService))
		r.Post("/api/wishlist/{productID}", handlers.ToggleWishlistHandler(application.Logger, wishlistService))
		// административная часть; права перепроверяет бизнес-логика
		r.Post("/api/admin/products", handlers.CreateProductHandler(application.Logger, catalogService))
		r.Put("/api/admin/products/{id}", handlers.UpdateProductHandler(application.Logger, catalogService))
		r.Delete("/api/admin/products/{id}", handlers.DeleteProductHandler(application.Logger, catalogService))
		r.Post("/api/admin/products/{id}/stock", handlers.UpdateStockHandler(application.Logger, catalogService))
		r.Get("/api/admin/orders", handlers.AdminOrdersHandler(application.Logger, orderService))
		r.Post("/api/admin/orders/{id}/status", handlers.UpdateOrderStatusHandler(application.Logger, orderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
