package models

// Product представляет товар каталога
// Stock никогда не опускается ниже нуля: единственный путь списания — checkout
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	MRP         int    `json:"mrp"`   // прайсовая цена, информационная
	Price       int    `json:"price"` // цена продажи в целых единицах валюты
	Stock       int    `json:"stock"`
	Image       string `json:"image"`
	Description string `json:"description"`
}
