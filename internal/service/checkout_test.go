package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/service"
	"github.com/anantkv/saree-store/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPlaceOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Banarasi Silk Saree", Price: 100, Stock: 5})
	carts := newFakeCartRepo(products)
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, saree.ID, 3))
	orders := newFakeOrderRepo()

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	order, err := svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.NoError(t, err)

	assert.Equal(t, 300, order.TotalAmount)
	assert.Equal(t, models.PaymentModeCOD, order.PaymentMode)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.True(t, strings.HasPrefix(order.OrderCode, "ORD"))

	// остаток списан, корзина очищена
	assert.Equal(t, 2, saree.Stock)
	items, err := carts.GetCartItems(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	// позиции заказа — снимок названия и цены на момент оформления
	stored, err := orders.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Banarasi Silk Saree", stored.Items[0].ProductName)
	assert.Equal(t, 100, stored.Items[0].Price)
	assert.Equal(t, 3, stored.Items[0].Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_SnapshotSurvivesProductChanges(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Kanjivaram Saree", Price: 250, Stock: 10})
	carts := newFakeCartRepo(products)
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, saree.ID, 2))
	orders := newFakeOrderRepo()

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)
	order, err := svc.PlaceOrder(context.Background(), 1, models.PaymentModeUPI)
	require.NoError(t, err)

	// меняем товар после оформления — позиции заказа не двигаются
	saree.Name = "Renamed Saree"
	saree.Price = 999

	stored, err := orders.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Kanjivaram Saree", stored.Items[0].ProductName)
	assert.Equal(t, 250, stored.Items[0].Price)
	assert.Equal(t, 500, stored.TotalAmount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Chiffon Saree", Price: 80, Stock: 5})
	carts := newFakeCartRepo(products)
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, saree.ID, 10))
	orders := newFakeOrderRepo()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	_, err = svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Chiffon Saree")

	// ничего не изменилось: остаток, корзина и заказы на месте
	assert.Equal(t, 5, saree.Stock)
	items, err := carts.GetCartItems(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	all, err := orders.GetAllOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_MixedCartFailsEntirely(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	inStock := products.add(&models.Product{Name: "Cotton Saree", Price: 60, Stock: 10})
	scarce := products.add(&models.Product{Name: "Georgette Saree", Price: 90, Stock: 1})
	carts := newFakeCartRepo(products)
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, inStock.ID, 2))
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, scarce.ID, 3))
	orders := newFakeOrderRepo()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	_, err = svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.ErrorIs(t, err, service.ErrInsufficientStock)

	// доступная позиция тоже не списана — заказ не бывает частичным
	assert.Equal(t, 10, inStock.Stock)
	assert.Equal(t, 1, scarce.Stock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	carts := newFakeCartRepo(products)
	orders := newFakeOrderRepo()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	_, err = svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.ErrorIs(t, err, service.ErrEmptyCart)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_InvalidPaymentMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	carts := newFakeCartRepo(products)
	orders := newFakeOrderRepo()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	_, err = svc.PlaceOrder(context.Background(), 1, models.PaymentMode("CARD"))
	require.ErrorIs(t, err, service.ErrInvalidPaymentMode)

	// транзакция даже не начиналась
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_MissingProductTreatedAsOutOfStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	carts := newFakeCartRepo(products)
	// позиция корзины ссылается на несуществующий товар
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, 42, 1))
	orders := newFakeOrderRepo()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	_, err = svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.ErrorIs(t, err, service.ErrInsufficientStock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_RetriesOnOrderCodeCollision(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Tussar Saree", Price: 150, Stock: 4})
	carts := newFakeCartRepo(products)
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, saree.ID, 1))
	orders := newFakeOrderRepo()
	orders.codeCollisions = 2 // первые две вставки натыкаются на занятый код

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	order, err := svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.NoError(t, err)
	assert.Equal(t, 150, order.TotalAmount)
	assert.True(t, strings.HasPrefix(order.OrderCode, "ORD"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_StorageFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Linen Saree", Price: 120, Stock: 6})
	carts := newFakeCartRepo(products)
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, saree.ID, 2))
	orders := newFakeOrderRepo()
	orders.itemErr = errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	_, err = svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.ErrorIs(t, err, service.ErrCheckoutFailed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_DecrementRaceFailsOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Organza Saree", Price: 200, Stock: 3})
	carts := newFakeCartRepo(products)
	require.NoError(t, carts.CreateCartItem(context.Background(), 1, saree.ID, 2))
	orders := newFakeOrderRepo()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewCheckoutService(discardLogger(), db, carts, products, orders)

	// проверка проходит, но списание не находит строку с достаточным остатком
	products.decrementShort = true

	_, err = svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, 3, saree.Stock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Коллизия order_code внутри транзакции: после уникального конфликта
// Postgres отклонял бы все последующие запросы, поэтому хранилище
// ограждает вставку точкой сохранения, и повтор идёт в той же
// транзакции. Тест прогоняет настоящие репозитории по этому контракту.
func TestPlaceOrder_CodeCollisionRetriedInSameTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbNow := time.Now().Add(-2 * time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.stock").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "name", "price", "stock"}).
			AddRow(1, 1, 7, 2, "Banarasi Saree", 1999, 5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, mrp, price, stock, image, description FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "mrp", "price", "stock", "image", "description"}).
			AddRow(7, "Banarasi Saree", 2999, 1999, 5, "img.png", "Silk saree"))

	// первая попытка: код занят, откат к точке сохранения
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT create_order")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec(regexp.QuoteMeta("ROLLBACK TO SAVEPOINT create_order")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// вторая попытка со свежим кодом в той же транзакции
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT create_order")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, dbNow))
	mock.ExpectExec(regexp.QuoteMeta("RELEASE SAVEPOINT create_order")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1")).
		WithArgs(2, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(int64(5), "Banarasi Saree", 1999, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET total_amount = $1 WHERE id = $2")).
		WithArgs(3998, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE user_id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := service.NewCheckoutService(discardLogger(), db,
		storage.NewCartRepository(db),
		storage.NewProductRepository(db),
		storage.NewOrderRepository(db))

	order, err := svc.PlaceOrder(context.Background(), 1, models.PaymentModeCOD)
	require.NoError(t, err)
	assert.Equal(t, int64(5), order.ID)
	assert.Equal(t, 3998, order.TotalAmount)
	// момент создания — тот, что вернула БД
	assert.True(t, order.CreatedAt.Equal(dbNow))
	assert.True(t, strings.HasPrefix(order.OrderCode, "ORD"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
