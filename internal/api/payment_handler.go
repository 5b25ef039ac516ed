package api

import (
	"fmt"
	"net/http"

	"github.com/tiendaonline/backend/internal/domain"
)

type processPaymentRequest struct {
	IDPedido     int64          `json:"id_pedido"`
	MetodoPago   string         `json:"metodo_pago"`
	DetallesPago map[string]any `json:"detalles_pago,omitempty"`
}

type paymentResponse struct {
	Pago        domain.Payment `json:"pago"`
	IDVenta     int64          `json:"id_venta,omitempty"`
	VentaCreada bool           `json:"venta_creada"`
}

func (a *API) processPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "pagos.procesar", err)
		return
	}
	if req.IDPedido <= 0 || req.MetodoPago == "" {
		err := fmt.Errorf("%w: id_pedido y metodo_pago son requeridos", domain.ErrValidation)
		a.respondDomainError(w, "pagos.procesar", err)
		return
	}

	result, err := a.repos.Payments.Process(r.Context(), domain.ProcessPaymentInput{
		UserID:  userIDFrom(r),
		OrderID: req.IDPedido,
		Method:  req.MetodoPago,
	})
	if err != nil {
		a.respondDomainError(w, "pagos.procesar", err)
		return
	}
	if a.metrics != nil {
		a.metrics.RecordPaymentProcessed()
		if result.SaleCreated {
			a.metrics.RecordSaleMaterialized()
		}
	}

	a.respond(w, http.StatusOK, "Pago procesado correctamente", paymentResponse{
		Pago:        result.Payment,
		IDVenta:     result.SaleID,
		VentaCreada: result.SaleCreated,
	})
}

func (a *API) getPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "pagos.get", err)
		return
	}
	detail, err := a.repos.Payments.Get(r.Context(), paymentID)
	if err != nil {
		a.respondDomainError(w, "pagos.get", err)
		return
	}
	if detail.OwnerUserID != userIDFrom(r) && roleFrom(r) != domain.RoleAdmin {
		a.respondDomainError(w, "pagos.get", domain.ErrForbidden)
		return
	}
	a.respond(w, http.StatusOK, "Detalle del pago", detail)
}

func (a *API) listAllPayments(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	payments, err := a.repos.Payments.ListAll(r.Context())
	if err != nil {
		a.respondDomainError(w, "pagos.admin.list", err)
		return
	}
	a.respond(w, http.StatusOK, "Todos los pagos", payments)
}

func (a *API) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	if !a.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	paymentID, err := pathID(r, "id")
	if err != nil {
		a.respondDomainError(w, "pagos.admin.estado", err)
		return
	}
	var req struct {
		EstadoPago string `json:"estado_pago"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "pagos.admin.estado", err)
		return
	}
	status, err := domain.ParsePaymentStatus(req.EstadoPago)
	if err != nil {
		a.respondDomainError(w, "pagos.admin.estado", err)
		return
	}

	payment, err := a.repos.Payments.UpdateStatus(r.Context(), paymentID, status)
	if err != nil {
		a.respondDomainError(w, "pagos.admin.estado", err)
		return
	}
	a.respond(w, http.StatusOK, "Estado del pago actualizado", payment)
}
