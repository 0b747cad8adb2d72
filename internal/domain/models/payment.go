package models

import "fmt"

// PaymentMode — закрытое перечисление способов оплаты
type PaymentMode string

const (
	PaymentModeCOD PaymentMode = "COD"
	PaymentModeUPI PaymentMode = "UPI"
)

// ParsePaymentMode проверяет строку на принадлежность перечислению
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case PaymentModeCOD, PaymentModeUPI:
		return PaymentMode(s), nil
	}
	return "", fmt.Errorf("unknown payment mode: %q", s)
}

// PaymentStatus — закрытое перечисление статусов оплаты
// Единственный допустимый переход: Pending -> Paid
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// ParsePaymentStatus проверяет строку на принадлежность перечислению
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusPaid:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status: %q", s)
}
