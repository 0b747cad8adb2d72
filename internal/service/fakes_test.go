package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/storage"
)

// Фиктивные репозитории для тестов сервисов: данные в памяти,
// параметр транзакции игнорируется.

type fakeUserRepo struct {
	users map[string]*models.User // ключ — email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

type fakeProductRepo struct {
	products map[int64]*models.Product
	nextID   int64

	lockErr        error // принудительная ошибка LockProductByIDTx
	decrementErr   error // принудительная ошибка DecrementStock
	decrementShort bool  // имитация гонки: списание не проходит при валидном остатке
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*models.Product), nextID: 1}
}

func (f *fakeProductRepo) add(p *models.Product) *models.Product {
	if p.ID == 0 {
		p.ID = f.nextID
	}
	if p.ID >= f.nextID {
		f.nextID = p.ID + 1
	}
	f.products[p.ID] = p
	return p
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	ids := make([]int64, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.products[id])
	}
	return out, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.GetProductByID(ctx, id)
}

func (f *fakeProductRepo) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) (bool, error) {
	if f.decrementErr != nil {
		return false, f.decrementErr
	}
	if f.decrementShort {
		return false, nil
	}
	p, ok := f.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = 0
	return f.add(p), nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return storage.ErrProductNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) SetStock(ctx context.Context, id int64, stock int) error {
	p, ok := f.products[id]
	if !ok {
		return storage.ErrProductNotFound
	}
	p.Stock = stock
	return nil
}

func (f *fakeProductRepo) CountProducts(ctx context.Context) (int, error) {
	return len(f.products), nil
}

type fakeCartRepo struct {
	items    map[int64]*models.CartItem
	nextID   int64
	products *fakeProductRepo // для резолва снимков товара в выборках

	listErr  error // принудительная ошибка чтения корзины
	clearErr error // принудительная ошибка очистки корзины
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{items: make(map[int64]*models.CartItem), nextID: 1, products: products}
}

func (f *fakeCartRepo) resolve(item *models.CartItem) *models.CartItem {
	out := *item
	if p, ok := f.products.products[item.ProductID]; ok {
		out.ProductName = p.Name
		out.ProductPrice = p.Price
		out.ProductStock = p.Stock
	}
	return &out
}

func (f *fakeCartRepo) GetCartItems(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]int64, 0, len(f.items))
	for id, item := range f.items {
		if item.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*models.CartItem
	for _, id := range ids {
		out = append(out, f.resolve(f.items[id]))
	}
	return out, nil
}

func (f *fakeCartRepo) GetCartItemsTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error) {
	return f.GetCartItems(ctx, userID)
}

func (f *fakeCartRepo) GetCartItemByID(ctx context.Context, id int64) (*models.CartItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, storage.ErrCartItemNotFound
	}
	return f.resolve(item), nil
}

func (f *fakeCartRepo) GetCartItemByProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			return f.resolve(item), nil
		}
	}
	return nil, storage.ErrCartItemNotFound
}

// CreateCartItem повторяет upsert-семантику хранилища: дубль пары
// (user, product) сливается в одну позицию
func (f *fakeCartRepo) CreateCartItem(ctx context.Context, userID, productID int64, quantity int) error {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			return nil
		}
	}
	item := &models.CartItem{ID: f.nextID, UserID: userID, ProductID: productID, Quantity: quantity}
	f.items[f.nextID] = item
	f.nextID++
	return nil
}

func (f *fakeCartRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	item, ok := f.items[id]
	if !ok {
		return storage.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (f *fakeCartRepo) DeleteCartItem(ctx context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

func (f *fakeCartRepo) DeleteCartItemsTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	for id, item := range f.items {
		if item.UserID == userID {
			delete(f.items, id)
		}
	}
	return nil
}

type fakeOrderRepo struct {
	orders map[int64]*models.Order
	nextID int64

	codeCollisions int   // сколько первых вставок отвергнуть как коллизию кода
	createErr      error // принудительная ошибка CreateOrder
	itemErr        error // принудительная ошибка CreateOrderItem
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order), nextID: 1}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, tx *sql.Tx, code string, userID int64, mode models.PaymentMode, status models.PaymentStatus) (int64, time.Time, error) {
	if f.createErr != nil {
		return 0, time.Time{}, f.createErr
	}
	if f.codeCollisions > 0 {
		f.codeCollisions--
		return 0, time.Time{}, storage.ErrOrderCodeTaken
	}
	for _, o := range f.orders {
		if o.OrderCode == code {
			return 0, time.Time{}, storage.ErrOrderCodeTaken
		}
	}
	order := &models.Order{
		ID:            f.nextID,
		OrderCode:     code,
		UserID:        userID,
		PaymentMode:   mode,
		PaymentStatus: status,
		CreatedAt:     time.Now(),
	}
	f.orders[f.nextID] = order
	f.nextID++
	return order.ID, order.CreatedAt, nil
}

func (f *fakeOrderRepo) CreateOrderItem(ctx context.Context, tx *sql.Tx, orderID int64, productName string, price, quantity int) error {
	if f.itemErr != nil {
		return f.itemErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not found", orderID)
	}
	order.Items = append(order.Items, &models.OrderItem{
		ID:          int64(len(order.Items) + 1),
		OrderID:     orderID,
		ProductName: productName,
		Price:       price,
		Quantity:    quantity,
	})
	return nil
}

func (f *fakeOrderRepo) SetOrderTotal(ctx context.Context, tx *sql.Tx, orderID int64, total int) error {
	order, ok := f.orders[orderID]
	if !ok {
		return storage.ErrOrderNotFound
	}
	order.TotalAmount = total
	return nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeOrderRepo) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	order.PaymentStatus = status
	return nil
}

type fakeWishlistRepo struct {
	items    map[int64]*models.WishlistItem
	nextID   int64
	products *fakeProductRepo

	createErr error // принудительная ошибка CreateWishlistItem
}

var _ storage.WishlistStorage = (*fakeWishlistRepo)(nil)

func newFakeWishlistRepo(products *fakeProductRepo) *fakeWishlistRepo {
	return &fakeWishlistRepo{items: make(map[int64]*models.WishlistItem), nextID: 1, products: products}
}

func (f *fakeWishlistRepo) GetWishlistItems(ctx context.Context, userID int64) ([]*models.WishlistItem, error) {
	var out []*models.WishlistItem
	for _, item := range f.items {
		if item.UserID == userID {
			resolved := *item
			if p, ok := f.products.products[item.ProductID]; ok {
				resolved.ProductName = p.Name
				resolved.ProductPrice = p.Price
			}
			out = append(out, &resolved)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeWishlistRepo) GetWishlistItem(ctx context.Context, userID, productID int64) (*models.WishlistItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, storage.ErrWishlistItemNotFound
}

func (f *fakeWishlistRepo) CreateWishlistItem(ctx context.Context, userID, productID int64) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.items[f.nextID] = &models.WishlistItem{ID: f.nextID, UserID: userID, ProductID: productID}
	f.nextID++
	return nil
}

func (f *fakeWishlistRepo) DeleteWishlistItem(ctx context.Context, id int64) error {
	delete(f.items, id)
	return nil
}
