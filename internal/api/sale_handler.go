package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tiendaonline/backend/internal/domain"
)

func (a *API) getMySales(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "ventas.me", err)
		return
	}
	sales, err := a.repos.Sales.ListByCustomer(r.Context(), customer.ID)
	if err != nil {
		a.respondDomainError(w, "ventas.me", err)
		return
	}
	a.respond(w, http.StatusOK, "Mis ventas", sales)
}

func (a *API) getSale(w http.ResponseWriter, r *http.Request) {
	saleID, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "ventas.get", err)
		return
	}
	sale, err := a.repos.Sales.Get(r.Context(), saleID)
	if err != nil {
		a.respondDomainError(w, "ventas.get", err)
		return
	}
	if sale.UserID != userIDFrom(r) && roleFrom(r) != domain.RoleAdmin {
		a.respondDomainError(w, "ventas.get", domain.ErrForbidden)
		return
	}
	a.respond(w, http.StatusOK, "Detalle de la venta", sale)
}

func (a *API) listAllSales(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	filter, err := parseSaleFilter(r)
	if err != nil {
		a.respondDomainError(w, "ventas.admin", err)
		return
	}
	sales, err := a.repos.Sales.ListAll(r.Context(), filter)
	if err != nil {
		a.respondDomainError(w, "ventas.admin", err)
		return
	}
	a.respond(w, http.StatusOK, "Todas las ventas", sales)
}

func parseSaleFilter(r *http.Request) (domain.SaleFilter, error) {
	var filter domain.SaleFilter
	q := r.URL.Query()

	if raw := q.Get("id_cliente"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return domain.SaleFilter{}, fmt.Errorf("%w: id_cliente inválido %q", domain.ErrValidation, raw)
		}
		filter.CustomerID = id
	}
	if raw := q.Get("id_estado_venta"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return domain.SaleFilter{}, fmt.Errorf("%w: id_estado_venta inválido %q", domain.ErrValidation, raw)
		}
		filter.StateID = id
	}
	if raw := q.Get("fecha_inicio"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.SaleFilter{}, fmt.Errorf("%w: fecha_inicio inválida %q", domain.ErrValidation, raw)
		}
		filter.DateFrom = from
	}
	if raw := q.Get("fecha_fin"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.SaleFilter{}, fmt.Errorf("%w: fecha_fin inválida %q", domain.ErrValidation, raw)
		}
		filter.DateTo = to
	}

	return filter, nil
}
