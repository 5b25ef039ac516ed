package api

import (
	"fmt"
	"net/http"

	"github.com/tiendaonline/backend/internal/domain"
)

type profileRequest struct {
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Ciudad    string `json:"ciudad"`
	Telefono  string `json:"telefono"`
}

func (a *API) getMyProfile(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "clientes.me", err)
		return
	}
	a.respond(w, http.StatusOK, "Perfil de cliente", customer)
}

// updateMyProfile создаёт профиль при первом вызове и обновляет затем.
// Адрес профиля служит значением по умолчанию для доставки заказа.
func (a *API) updateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "clientes.update", err)
		return
	}
	if req.Nombre == "" {
		err := fmt.Errorf("%w: nombre es requerido", domain.ErrValidation)
		a.respondDomainError(w, "clientes.update", err)
		return
	}

	customer, err := a.repos.Customers.Upsert(r.Context(), domain.Customer{
		UserID:  userIDFrom(r),
		Name:    req.Nombre,
		Address: req.Direccion,
		City:    req.Ciudad,
		Phone:   req.Telefono,
	})
	if err != nil {
		a.respondDomainError(w, "clientes.update", err)
		return
	}
	a.respond(w, http.StatusOK, "Perfil actualizado correctamente", customer)
}
