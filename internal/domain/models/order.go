package models

import "time"

// Order представляет оформленный заказ
// После создания меняться может только PaymentStatus (и только администратором)
type Order struct {
	ID            int64         `json:"id"`
	OrderCode     string        `json:"order_code"`
	UserID        int64         `json:"user_id"`
	PaymentMode   PaymentMode   `json:"payment_mode"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TotalAmount   int           `json:"total_amount"`
	CreatedAt     time.Time     `json:"created_at"`

	Items []*OrderItem `json:"items,omitempty"`
}

// OrderItem — позиция заказа со снимком товара на момент оформления.
// Имя и цена скопированы намеренно: последующие правки каталога
// не должны менять историю заказов
type OrderItem struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductName string `json:"product_name"`
	Price       int    `json:"price"`
	Quantity    int    `json:"quantity"`
}
