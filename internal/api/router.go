// Package api реализует REST-поверхность магазина: аутентификация по JWT,
// корзины, пайплайн заказов, платежи и продажи в едином JSON-конверте.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/tiendaonline/backend/internal/domain"
	"github.com/tiendaonline/backend/internal/metrics"
)

// Repositories — набор хранилищ, которыми пользуются handlers.
type Repositories struct {
	Users     domain.UserRepository
	Customers domain.CustomerRepository
	Products  domain.ProductRepository
	Inventory domain.InventoryRepository
	Carts     domain.CartRepository
	Orders    domain.OrderRepository
	Payments  domain.PaymentRepository
	Sales     domain.SaleRepository
}

// Config — настройки API-слоя.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// API объединяет зависимости HTTP-обработчиков.
type API struct {
	log      *log.Entry
	metrics  *metrics.PipelineMetrics
	secret   []byte
	tokenTTL time.Duration
	repos    Repositories
}

// New создаёт API поверх переданных репозиториев.
func New(cfg Config, repos Repositories, m *metrics.PipelineMetrics) *API {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &API{
		log:      log.WithField("component", "api"),
		metrics:  m,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: ttl,
		repos:    repos,
	}
}

// Router собирает все маршруты API.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.observeRequests)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/registro", a.register)
		r.Post("/login", a.login)
		r.Group(func(protected chi.Router) {
			protected.Use(a.authMiddleware)
			protected.Get("/me", a.me)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(a.authMiddleware)

		pr.Route("/clientes", func(r chi.Router) {
			r.Get("/me", a.getMyProfile)
			r.Put("/me", a.updateMyProfile)
		})

		pr.Route("/productos", func(r chi.Router) {
			r.Get("/", a.listProducts)
			r.Get("/{id}", a.getProduct)
			r.Post("/", a.createProduct)
			r.Put("/{id}", a.updateProduct)
			r.Delete("/{id}", a.deleteProduct)
		})

		pr.Route("/inventarios", func(r chi.Router) {
			r.Get("/productos", a.listProductStock)
			r.Get("/{id}/stock", a.getStock)
			r.Patch("/{id}/stock", a.adjustStock)
		})

		pr.Route("/carrito", func(r chi.Router) {
			r.Post("/", a.addToCart)
			r.Get("/", a.getMyCart)
			r.Delete("/vaciar", a.clearMyCart)
			r.Put("/{productID}", a.setCartQuantity)
			r.Delete("/{productID}", a.removeFromCart)
			r.Get("/admin", a.listAllCarts)
			r.Get("/admin/{customerID}", a.getCustomerCart)
		})

		pr.Route("/pedidos", func(r chi.Router) {
			r.Post("/", a.createOrder)
			r.Get("/me", a.getMyOrders)
			r.Get("/me/{id}", a.getMyOrder)
			r.Get("/", a.listAllOrders)
			r.Get("/{id}", a.getOrder)
			r.Put("/{id}/estado", a.updateOrderStatus)
			r.Delete("/{id}", a.deleteOrder)
		})

		pr.Route("/pagos", func(r chi.Router) {
			r.Post("/procesar", a.processPayment)
			r.Get("/admin", a.listAllPayments)
			r.Put("/admin/{id}/estado", a.updatePaymentStatus)
			r.Get("/{id}", a.getPayment)
		})

		pr.Route("/ventas", func(r chi.Router) {
			r.Get("/me", a.getMySales)
			r.Get("/admin", a.listAllSales)
			r.Get("/{id}", a.getSale)
		})
	})

	return r
}

// observeRequests пишет структурированный access-лог и метрики запросов.
func (a *API) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.metrics != nil {
			a.metrics.RequestStarted()
			defer a.metrics.RequestFinished()
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		if a.metrics != nil {
			a.metrics.ObserveRequest(r.Method, route, strconv.Itoa(ww.Status()), elapsed)
		}
		a.log.WithFields(log.Fields{
			"method":     r.Method,
			"route":      route,
			"status":     ww.Status(),
			"elapsed_ms": elapsed.Milliseconds(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request handled")
	})
}

// pathID разбирает числовой сегмент пути.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: identificador inválido %q", domain.ErrValidation, raw)
	}
	return id, nil
}

// currentCustomer возвращает профиль клиента текущего пользователя.
func (a *API) currentCustomer(r *http.Request) (domain.Customer, error) {
	return a.repos.Customers.GetByUserID(r.Context(), userIDFrom(r))
}
