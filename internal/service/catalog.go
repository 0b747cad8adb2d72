package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/storage"
)

// CatalogService — витрина и административное управление товарами.
// Прямые правки каталога не обязаны учитывать содержимое чьих-либо корзин:
// checkout сам перепроверит остатки.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, actorID int64, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, actorID int64, p *models.Product) error
	DeleteProduct(ctx context.Context, actorID, id int64) error
	SetStock(ctx context.Context, actorID, id int64, stock int) error
	Seed(ctx context.Context) error
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	userRepo    storage.UserStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage, userRepo storage.UserStorage) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetProduct"
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if p.Price <= 0 || p.MRP <= 0 {
		return fmt.Errorf("product price must be positive")
	}
	if p.Stock < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, actorID int64, p *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("actorID", actorID))

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateProduct(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.productRepo.CreateProduct(ctx, p)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actorID int64, p *models.Product) error {
	const op = "service.CatalogService.UpdateProduct"

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := validateProduct(p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.UpdateProduct(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product updated", slog.String("op", op), slog.Int64("productID", p.ID))
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, actorID, id int64) error {
	const op = "service.CatalogService.DeleteProduct"

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product deleted", slog.String("op", op), slog.Int64("productID", id))
	return nil
}

// SetStock — прямая правка остатка администратором. Допустимо любое
// неотрицательное значение; резервов под чужие корзины нет.
func (s *catalogService) SetStock(ctx context.Context, actorID, id int64, stock int) error {
	const op = "service.CatalogService.SetStock"

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if stock < 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	if err := s.productRepo.SetStock(ctx, id, stock); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("stock updated", slog.String("op", op), slog.Int64("productID", id), slog.Int("stock", stock))
	return nil
}

func (s *catalogService) requireAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// Seed наполняет пустой каталог демонстрационными товарами
func (s *catalogService) Seed(ctx context.Context) error {
	const op = "service.CatalogService.Seed"

	n, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}

	for _, p := range seedProducts() {
		if _, err := s.productRepo.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	s.log.Info("catalog seeded", slog.String("op", op))
	return nil
}

func seedProducts() []*models.Product {
	placeholder := "https://via.placeholder.com/300"
	return []*models.Product{
		{Name: "Kanjeevaram Silk Saree", MRP: 3499, Price: 2499, Stock: 200, Image: placeholder, Description: "Premium silk saree"},
		{Name: "Banarasi Saree", MRP: 2999, Price: 1999, Stock: 200, Image: placeholder, Description: "Luxurious silk with intricate zari work, traditionally woven in Varanasi"},
		{Name: "Cotton Handloom Saree", MRP: 1999, Price: 999, Stock: 200, Image: placeholder, Description: "Homely ware sarees"},
		{Name: "Designing Party Saree", MRP: 4999, Price: 3999, Stock: 200, Image: placeholder, Description: "Party ware sarees"},
		{Name: "Phulkari Saree", MRP: 2999, Price: 1999, Stock: 200, Image: placeholder, Description: "Colourful flower-work embroidery using silk threads"},
		{Name: "Chanderi Saree", MRP: 5999, Price: 4999, Stock: 200, Image: placeholder, Description: "Lightweight texture and intricate patterns, woven in Chanderi"},
		{Name: "Bhagalpuri Saree", MRP: 9999, Price: 8999, Stock: 200, Image: placeholder, Description: "Tussar silk handwoven in Bhagalpur with nature-inspired motifs"},
		{Name: "Bandhani Saree", MRP: 10999, Price: 9999, Stock: 200, Image: placeholder, Description: "Vibrant tie-dye patterns crafted in Rajasthan and Gujarat"},
	}
}
