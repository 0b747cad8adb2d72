package service

import "errors"

// Ошибки бизнес-логики, различимые на транспортном уровне.
// Валидационные ошибки возвращаются вызывающему как есть;
// ErrCheckoutFailed скрывает причину сбоя хранилища после отката.
var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidStatus      = errors.New("invalid payment status")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	ErrCheckoutFailed     = errors.New("checkout failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
