package domain

import (
	"fmt"
	"time"
)

// PaymentStatus описывает состояние платежа (колонка pagos.estado_pago).
type PaymentStatus string

const (
	// PaymentStatusPending — платёж зарегистрирован, но не подтверждён.
	PaymentStatusPending PaymentStatus = "Pendiente"
	// PaymentStatusApproved — симулированный шлюз одобрил списание.
	PaymentStatusApproved PaymentStatus = "Aprobado"
	// PaymentStatusRejected — платёж отклонён.
	PaymentStatusRejected PaymentStatus = "Rechazado"
	// PaymentStatusRefunded — средства возвращены клиенту (админская корректировка).
	PaymentStatusRefunded PaymentStatus = "Reembolsado"
)

// ParsePaymentStatus проверяет, что строка — допустимый статус платежа.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected, PaymentStatusRefunded:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("%w: estado de pago desconocido %q", ErrValidation, s)
}

// Payment — платёж по заказу. Amount всегда равен сохранённому total заказа
// на момент обработки: сумма никогда не берётся из запроса клиента.
type Payment struct {
	ID            int64         `json:"id_pago"`
	OrderID       int64         `json:"id_pedido"`
	PaidAt        time.Time     `json:"fecha_pago"`
	Amount        float64       `json:"monto"`
	Method        string        `json:"metodo_pago"`
	Status        PaymentStatus `json:"estado_pago"`
	TransactionID string        `json:"transaccion_id"`
}

// PaymentDetail — платёж вместе с владельцем заказа для проверки доступа.
type PaymentDetail struct {
	Payment
	CustomerID  int64 `json:"id_cliente"`
	OwnerUserID int64 `json:"id_usuario"`
}

// ProcessPaymentInput — запрос на обработку платежа.
type ProcessPaymentInput struct {
	UserID  int64
	OrderID int64
	Method  string
}

// PaymentResult — итог обработки: сам платёж и идентификатор продажи,
// материализованной из завершённого заказа в той же транзакции.
type PaymentResult struct {
	Payment     Payment
	SaleID      int64
	SaleCreated bool
}
