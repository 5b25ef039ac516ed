package api

import (
	"fmt"
	"net/http"

	"github.com/tiendaonline/backend/internal/domain"
)

type addToCartRequest struct {
	IDProducto int64 `json:"id_producto"`
	Cantidad   int   `json:"cantidad"`
}

type setQuantityRequest struct {
	Cantidad int `json:"cantidad"`
}

func (a *API) addToCart(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "carrito.add", err)
		return
	}
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "carrito.add", err)
		return
	}
	if req.IDProducto <= 0 || req.Cantidad <= 0 {
		err := fmt.Errorf("%w: id_producto y cantidad deben ser positivos", domain.ErrValidation)
		a.respondDomainError(w, "carrito.add", err)
		return
	}

	item, err := a.repos.Carts.Add(r.Context(), customer.ID, req.IDProducto, req.Cantidad)
	if err != nil {
		a.respondDomainError(w, "carrito.add", err)
		return
	}
	a.respond(w, http.StatusCreated, "Producto agregado al carrito", item)
}

func (a *API) getMyCart(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "carrito.list", err)
		return
	}
	cart, err := a.repos.Carts.List(r.Context(), customer.ID)
	if err != nil {
		a.respondDomainError(w, "carrito.list", err)
		return
	}
	a.respond(w, http.StatusOK, "Carrito de compras", cart)
}

func (a *API) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "carrito.set", err)
		return
	}
	productID, err := pathID(r, "productID")
	if err != nil {
		a.respondDomainError(w, "carrito.set", err)
		return
	}
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "carrito.set", err)
		return
	}
	if req.Cantidad < 0 {
		err := fmt.Errorf("%w: cantidad no puede ser negativa", domain.ErrValidation)
		a.respondDomainError(w, "carrito.set", err)
		return
	}

	item, removed, err := a.repos.Carts.SetQuantity(r.Context(), customer.ID, productID, req.Cantidad)
	if err != nil {
		a.respondDomainError(w, "carrito.set", err)
		return
	}
	if removed {
		a.respond(w, http.StatusOK, "Producto eliminado del carrito", nil)
		return
	}
	a.respond(w, http.StatusOK, "Cantidad actualizada", item)
}

func (a *API) removeFromCart(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "carrito.remove", err)
		return
	}
	productID, err := pathID(r, "productID")
	if err != nil {
		a.respondDomainError(w, "carrito.remove", err)
		return
	}
	if err := a.repos.Carts.Remove(r.Context(), customer.ID, productID); err != nil {
		a.respondDomainError(w, "carrito.remove", err)
		return
	}
	a.respond(w, http.StatusOK, "Producto eliminado del carrito", nil)
}

func (a *API) clearMyCart(w http.ResponseWriter, r *http.Request) {
	customer, err := a.currentCustomer(r)
	if err != nil {
		a.respondDomainError(w, "carrito.clear", err)
		return
	}
	removed, err := a.repos.Carts.Clear(r.Context(), customer.ID)
	if err != nil {
		a.respondDomainError(w, "carrito.clear", err)
		return
	}
	a.respond(w, http.StatusOK, "Carrito vaciado", map[string]int{"items_eliminados": removed})
}

func (a *API) listAllCarts(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	carts, err := a.repos.Carts.ListAll(r.Context())
	if err != nil {
		a.respondDomainError(w, "carrito.admin.list", err)
		return
	}
	a.respond(w, http.StatusOK, "Carritos de todos los clientes", carts)
}

func (a *API) getCustomerCart(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	customerID, err := pathID(r, "customerID")
	if err != nil {
		a.respondDomainError(w, "carrito.admin.get", err)
		return
	}
	cart, err := a.repos.Carts.GetByCustomer(r.Context(), customerID)
	if err != nil {
		a.respondDomainError(w, "carrito.admin.get", err)
		return
	}
	a.respond(w, http.StatusOK, "Carrito del cliente", cart)
}
