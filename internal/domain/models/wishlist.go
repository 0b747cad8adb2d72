package models

// WishlistItem связывает пользователя с отложенным товаром
type WishlistItem struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`

	ProductName  string `json:"product_name"`
	ProductPrice int    `json:"product_price"`
}
