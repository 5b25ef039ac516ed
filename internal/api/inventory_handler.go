package api

import (
	"fmt"
	"net/http"

	"github.com/tiendaonline/backend/internal/domain"
)

type adjustStockRequest struct {
	Ajuste int `json:"ajuste"`
}

func (a *API) listProductStock(w http.ResponseWriter, r *http.Request) {
	stock, err := a.repos.Products.ListWithStock(r.Context())
	if err != nil {
		a.respondDomainError(w, "inventarios.productos", err)
		return
	}
	a.respond(w, http.StatusOK, "Productos con stock", stock)
}

func (a *API) getStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "inventarios.get", err)
		return
	}
	record, err := a.repos.Inventory.Get(r.Context(), id)
	if err != nil {
		a.respondDomainError(w, "inventarios.get", err)
		return
	}
	a.respond(w, http.StatusOK, "Stock del producto", record)
}

// adjustStock применяет знаковую корректировку: положительная — пополнение,
// отрицательная — списание вне пайплайна заказов.
func (a *API) adjustStock(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin, domain.RoleEmployee) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "inventarios.adjust", err)
		return
	}
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "inventarios.adjust", err)
		return
	}
	if req.Ajuste == 0 {
		err := fmt.Errorf("%w: ajuste no puede ser cero", domain.ErrValidation)
		a.respondDomainError(w, "inventarios.adjust", err)
		return
	}

	record, err := a.repos.Inventory.Adjust(r.Context(), id, req.Ajuste)
	if err != nil {
		a.respondDomainError(w, "inventarios.adjust", err)
		return
	}
	a.respond(w, http.StatusOK, "Stock ajustado correctamente", record)
}
