package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics содержит метрики пайплайна заказов и платежей.
type PipelineMetrics struct {
	// Счётчики исходов создания заказа
	ordersCreated       prometheus.Counter
	ordersRejectedStock prometheus.Counter
	ordersFailed        prometheus.Counter

	// Платежи и продажи
	paymentsProcessed prometheus.Counter
	salesMaterialized prometheus.Counter

	// Гистограммы длительности
	orderDuration   prometheus.Histogram
	requestDuration *prometheus.HistogramVec

	// Gauge запросов в обработке
	inflightRequests prometheus.Gauge
}

// NewPipelineMetrics создаёт метрики в общем регистраторе процесса.
func NewPipelineMetrics() *PipelineMetrics {
	return newPipelineMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPipelineMetricsWithRegisterer(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PipelineMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "tienda_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		ordersRejectedStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "tienda_orders_rejected_stock_total",
			Help: "Total number of orders rejected due to insufficient stock",
		}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "tienda_orders_failed_total",
			Help: "Total number of orders failed for other reasons",
		}),
		paymentsProcessed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "tienda_payments_processed_total",
			Help: "Total number of payments processed",
		}),
		salesMaterialized: registerCounter(registerer, prometheus.CounterOpts{
			Name: "tienda_sales_materialized_total",
			Help: "Total number of sales materialized from completed orders",
		}),
		orderDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "tienda_order_pipeline_duration_seconds",
			Help:    "Duration of the order creation pipeline in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		requestDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "tienda_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route", "status"}),
		inflightRequests: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "tienda_http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *PipelineMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderRejectedStock увеличивает счётчик отказов по остаткам.
func (m *PipelineMetrics) RecordOrderRejectedStock() {
	m.ordersRejectedStock.Inc()
}

// RecordOrderFailed увеличивает счётчик прочих ошибок создания заказа.
func (m *PipelineMetrics) RecordOrderFailed() {
	m.ordersFailed.Inc()
}

// RecordPaymentProcessed увеличивает счётчик обработанных платежей.
func (m *PipelineMetrics) RecordPaymentProcessed() {
	m.paymentsProcessed.Inc()
}

// RecordSaleMaterialized увеличивает счётчик материализованных продаж.
func (m *PipelineMetrics) RecordSaleMaterialized() {
	m.salesMaterialized.Inc()
}

// ObserveOrderDuration записывает длительность пайплайна заказа.
func (m *PipelineMetrics) ObserveOrderDuration(d time.Duration) {
	m.orderDuration.Observe(d.Seconds())
}

// ObserveRequest записывает длительность HTTP-запроса.
func (m *PipelineMetrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// RequestStarted увеличивает gauge запросов в обработке.
func (m *PipelineMetrics) RequestStarted() {
	m.inflightRequests.Inc()
}

// RequestFinished уменьшает gauge запросов в обработке.
func (m *PipelineMetrics) RequestFinished() {
	m.inflightRequests.Dec()
}
