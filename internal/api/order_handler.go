package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tiendaonline/backend/internal/domain"
)

type createOrderRequest struct {
	Productos        []domain.OrderLineInput `json:"productos"`
	DireccionEnvio   string                  `json:"direccion_envio,omitempty"`
	CiudadEnvio      string                  `json:"ciudad_envio,omitempty"`
	TelefonoContacto string                  `json:"telefono_contacto,omitempty"`
}

type updateOrderStatusRequest struct {
	EstadoPedido string `json:"estado_pedido"`
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "pedidos.create", err)
		return
	}

	start := time.Now()
	order, err := a.repos.Orders.Create(r.Context(), domain.CreateOrderInput{
		UserID:       userIDFrom(r),
		Lines:        req.Productos,
		ShipAddress:  req.DireccionEnvio,
		ShipCity:     req.CiudadEnvio,
		ContactPhone: req.TelefonoContacto,
	})
	if a.metrics != nil {
		a.metrics.ObserveOrderDuration(time.Since(start))
		switch {
		case err == nil:
			a.metrics.RecordOrderCreated()
		case errors.Is(err, domain.ErrInsufficientStock):
			a.metrics.RecordOrderRejectedStock()
		default:
			a.metrics.RecordOrderFailed()
		}
	}
	if err != nil {
		a.respondDomainError(w, "pedidos.create", err)
		return
	}
	a.respond(w, http.StatusCreated, "Pedido creado correctamente", order)
}

func (a *API) getMyOrders(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "pedidos.me", err)
		return
	}
	orders, err := a.repos.Orders.ListByCustomer(r.Context(), customer.ID)
	if err != nil {
		a.respondDomainError(w, "pedidos.me", err)
		return
	}
	a.respond(w, http.StatusOK, "Mis pedidos", orders)
}

func (a *API) getMyOrder(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "pedidos.me.get", err)
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "pedidos.me.get", err)
		return
	}
	order, err := a.repos.Orders.GetForCustomer(r.Context(), orderID, customer.ID)
	if err != nil {
		a.respondDomainError(w, "pedidos.me.get", err)
		return
	}
	a.respond(w, http.StatusOK, "Detalle del pedido", order)
}

func (a *API) listAllOrders(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	orders, err := a.repos.Orders.ListAll(r.Context())
	if err != nil {
		a.respondDomainError(w, "pedidos.admin.list", err)
		return
	}
	a.respond(w, http.StatusOK, "Todos los pedidos", orders)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "pedidos.admin.get", err)
		return
	}
	order, err := a.repos.Orders.Get(r.Context(), orderID)
	if err != nil {
		a.respondDomainError(w, "pedidos.admin.get", err)
		return
	}
	a.respond(w, http.StatusOK, "Detalle del pedido", order)
}

func (a *API) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "pedidos.admin.estado", err)
		return
	}
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "pedidos.admin.estado", err)
		return
	}
	status, err := domain.ParseOrderStatus(req.EstadoPedido)
	if err != nil {
		a.respondDomainError(w, "pedidos.admin.estado", err)
		return
	}

	order, err := a.repos.Orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		a.respondDomainError(w, "pedidos.admin.estado", err)
		return
	}
	a.respond(w, http.StatusOK, "Estado del pedido actualizado", order)
}

func (a *API) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "pedidos.admin.delete", err)
		return
	}
	if err := a.repos.Orders.Delete(r.Context(), orderID); err != nil {
		a.respondDomainError(w, "pedidos.admin.delete", err)
		return
	}
	a.respond(w, http.StatusOK, "Pedido eliminado correctamente", nil)
}
