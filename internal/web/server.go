package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Mariosyian/marketplace/internal/archive"
	"github.com/Mariosyian/marketplace/internal/cart"
	"github.com/Mariosyian/marketplace/internal/catalog"
	"github.com/Mariosyian/marketplace/internal/checkout"
	"github.com/Mariosyian/marketplace/internal/domain"
	"github.com/Mariosyian/marketplace/internal/events"
	"github.com/Mariosyian/marketplace/internal/metrics"
)

// PaymentClient creates provider orders and returns the approve URL.
type PaymentClient interface {
	CreateOrder(ctx context.Context, order *checkout.Order) (string, error)
}

// InvoiceArchiver persists proof-of-purchase records. Optional.
type InvoiceArchiver interface {
	SaveInvoice(ctx context.Context, inv *archive.Invoice) error
}

// PurchasePublisher emits purchase events. Optional.
type PurchasePublisher interface {
	PublishPurchase(ctx context.Context, event events.PurchaseEvent) error
}

// Server owns all storefront request state: the cart, the notice list and
// the purchased-record snapshot. Mutation is serialized inside each of those
// types, so concurrent request handling is safe.
type Server struct {
	store    catalog.Store
	cart     *cart.Cart
	notices  *cart.Notices
	resolver *checkout.Resolver

	payments  PaymentClient
	archiver  InvoiceArchiver
	publisher PurchasePublisher
	metrics   *metrics.ServerMetrics

	customer      domain.Customer
	shippingPrice float64
	orderCfg      checkout.BuildConfig
	timeout       time.Duration

	mu               sync.Mutex
	purchased        []domain.LineItem
	pendingInvoiceID string
}

type Options struct {
	Store         catalog.Store
	Payments      PaymentClient
	Archiver      InvoiceArchiver
	Publisher     PurchasePublisher
	Metrics       *metrics.ServerMetrics
	Customer      domain.Customer
	ShippingPrice float64
	OrderConfig   checkout.BuildConfig
	Timeout       time.Duration
}

func NewServer(opts Options) *Server {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	notices := cart.NewNotices()
	return &Server{
		store:         opts.Store,
		cart:          cart.New(),
		notices:       notices,
		resolver:      checkout.NewResolver(opts.Store, notices),
		payments:      opts.Payments,
		archiver:      opts.Archiver,
		publisher:     opts.Publisher,
		metrics:       opts.Metrics,
		customer:      opts.Customer,
		shippingPrice: opts.ShippingPrice,
		orderCfg:      opts.OrderConfig,
		timeout:       opts.Timeout,
	}
}

// Router mounts the storefront routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.Compress(5))
	if s.metrics != nil {
		r.Use(s.metricsMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Get("/", s.handleIndex)
	r.Get("/search", s.handleSearch)
	r.Post("/add-to-cart/{itemID}", s.handleAddToCart)
	r.Post("/remove-from-cart/{itemID}", s.handleRemoveFromCart)
	r.Get("/cart", s.handleCart)
	r.Post("/purchase", s.handlePurchase)
	r.Get("/success", s.handleSuccess)
	r.Get("/invoice", s.handleInvoice)

	return r
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		s.metrics.Observe(pattern, ww.Status(), time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
