package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tiendaonline/backend/internal/domain"
)

// envelope — единый формат ответа API: сообщение, полезная нагрузка и,
// для ошибок, машинная строка причины.
type envelope struct {
	Mensaje string `json:"mensaje"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

func (a *API) respond(w http.ResponseWriter, status int, mensaje string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Mensaje: mensaje, Data: data}); err != nil {
		a.log.WithError(err).Error("encode response")
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, mensaje string, err error) {
	body := envelope{Mensaje: mensaje, Data: nil}
	if err != nil {
		body.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		a.log.WithError(encErr).Error("encode error response")
	}
}

// respondDomainError переводит доменную ошибку в HTTP-статус и испанское
// сообщение. Неожиданные ошибки логируются и уходят наружу как 500 без
// внутренних подробностей.
func (a *API) respondDomainError(w http.ResponseWriter, op string, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		mensaje := fmt.Sprintf("Stock insuficiente para %s: disponible %d, solicitado %d",
			stockErr.ProductName, stockErr.Available, stockErr.Requested)
		a.respondError(w, http.StatusBadRequest, mensaje, err)
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		a.respondError(w, http.StatusBadRequest, "Datos de entrada inválidos", err)
	case errors.Is(err, domain.ErrInsufficientStock):
		a.respondError(w, http.StatusBadRequest, "Stock insuficiente", err)
	case errors.Is(err, domain.ErrNegativeStock):
		a.respondError(w, http.StatusBadRequest, "El stock no puede quedar negativo", err)
	case errors.Is(err, domain.ErrOrderTerminal):
		a.respondError(w, http.StatusBadRequest, "El pedido está en un estado terminal", err)
	case errors.Is(err, domain.ErrCredentialsInvalid):
		a.respondError(w, http.StatusUnauthorized, "Credenciales inválidas", err)
	case errors.Is(err, domain.ErrForbidden):
		a.respondError(w, http.StatusForbidden, "No tiene permisos para este recurso", err)
	case errors.Is(err, domain.ErrCustomerProfileNotFound):
		a.respondError(w, http.StatusNotFound, "El usuario no tiene perfil de cliente", err)
	case errors.Is(err, domain.ErrUserNotFound):
		a.respondError(w, http.StatusNotFound, "Usuario no encontrado", err)
	case errors.Is(err, domain.ErrCustomerNotFound):
		a.respondError(w, http.StatusNotFound, "Cliente no encontrado", err)
	case errors.Is(err, domain.ErrProductNotFound):
		a.respondError(w, http.StatusNotFound, "Producto no encontrado", err)
	case errors.Is(err, domain.ErrInventoryNotFound):
		a.respondError(w, http.StatusNotFound, "Registro de inventario no encontrado", err)
	case errors.Is(err, domain.ErrCartItemNotFound):
		a.respondError(w, http.StatusNotFound, "El producto no está en el carrito", err)
	case errors.Is(err, domain.ErrOrderNotFound):
		a.respondError(w, http.StatusNotFound, "Pedido no encontrado", err)
	case errors.Is(err, domain.ErrPaymentNotFound):
		a.respondError(w, http.StatusNotFound, "Pago no encontrado", err)
	case errors.Is(err, domain.ErrSaleNotFound):
		a.respondError(w, http.StatusNotFound, "Venta no encontrada", err)
	case errors.Is(err, domain.ErrEmailTaken):
		a.respondError(w, http.StatusConflict, "El correo ya está registrado", err)
	case errors.Is(err, domain.ErrProductNameTaken):
		a.respondError(w, http.StatusConflict, "Ya existe un producto con ese nombre", err)
	default:
		a.log.WithField("op", op).WithError(err).Error("unexpected error")
		a.respondError(w, http.StatusInternalServerError, "Error interno del servidor", errors.New("internal error"))
	}
}

// decodeJSON разбирает тело запроса, отклоняя неизвестные поля.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: cuerpo JSON inválido: %v", domain.ErrValidation, err)
	}
	return nil
}
