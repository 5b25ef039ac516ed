package api

import (
	"fmt"
	"net/http"

	"github.com/tiendaonline/backend/internal/domain"
)

type productRequest struct {
	NombreProducto string  `json:"nombre_producto"`
	Descripcion    string  `json:"descripcion"`
	Precio         float64 `json:"precio"`
	UnidadMedida   string  `json:"unidad_medida"`
	StockInicial   int     `json:"stock_inicial,omitempty"`
}

func (req productRequest) validate() error {
	if req.NombreProducto == "" {
		return fmt.Errorf("%w: nombre_producto es requerido", domain.ErrValidation)
	}
	if req.Precio < 0 {
		return fmt.Errorf("%w: precio no puede ser negativo", domain.ErrValidation)
	}
	if req.StockInicial < 0 {
		return fmt.Errorf("%w: stock_inicial no puede ser negativo", domain.ErrValidation)
	}
	return nil
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.repos.Products.List(r.Context())
	if err != nil {
		a.respondDomainError(w, "productos.list", err)
		return
	}
	a.respond(w, http.StatusOK, "Lista de productos", products)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "productos.get", err)
		return
	}
	product, err := a.repos.Products.Get(r.Context(), id)
	if err != nil {
		a.respondDomainError(w, "productos.get", err)
		return
	}
	a.respond(w, http.StatusOK, "Producto", product)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "productos.create", err)
		return
	}
	if err := req.validate(); err != nil {
		a.respondDomainError(w, "productos.create", err)
		return
	}

	product, err := a.repos.Products.Create(r.Context(), domain.NewProduct{
		Name:         req.NombreProducto,
		Description:  req.Descripcion,
		Price:        req.Precio,
		Unit:         req.UnidadMedida,
		InitialStock: req.StockInicial,
	})
	if err != nil {
		a.respondDomainError(w, "productos.create", err)
		return
	}
	a.respond(w, http.StatusCreated, "Producto creado correctamente", product)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "productos.update", err)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "productos.update", err)
		return
	}
	if err := req.validate(); err != nil {
		a.respondDomainError(w, "productos.update", err)
		return
	}

	product, err := a.repos.Products.Update(r.Context(), domain.Product{
		ID:          id,
		Name:        req.NombreProducto,
		Description: req.Descripcion,
		Price:       req.Precio,
		Unit:        req.UnidadMedida,
	})
	if err != nil {
		a.respondDomainError(w, "productos.update", err)
		return
	}
	a.respond(w, http.StatusOK, "Producto actualizado correctamente", product)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "productos.delete", err)
		return
	}
	if err := a.repos.Products.Delete(r.Context(), id); err != nil {
		a.respondDomainError(w, "productos.delete", err)
		return
	}
	a.respond(w, http.StatusOK, "Producto eliminado correctamente", nil)
}
