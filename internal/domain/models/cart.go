package models

// CartItem представляет позицию корзины: пара (пользователь, товар) уникальна
type CartItem struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`

	// Поля товара, подтянутые через JOIN для отображения корзины
	ProductName  string `json:"product_name"`
	ProductPrice int    `json:"product_price"`
	ProductStock int    `json:"product_stock"`
}
