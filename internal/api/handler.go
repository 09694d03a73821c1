// Package api exposes the storefront over HTTP: the normalized catalog, the
// persisted cart, checkout, and the proxied back-office resources.
package api

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/cheburek-storefront/internal/cart"
	"github.com/xenking/cheburek-storefront/internal/catalog"
	"github.com/xenking/cheburek-storefront/internal/checkout"
	"github.com/xenking/cheburek-storefront/internal/probe"
	"github.com/xenking/cheburek-storefront/internal/session"
	"github.com/xenking/cheburek-storefront/internal/upstream"
)

// Handler serves the storefront API. Business logic lives in the injected
// domain components; the handler only translates HTTP to domain calls and
// domain rejections to status codes.
type Handler struct {
	loader   *catalog.Loader
	cart     *cart.Store
	checkout *checkout.Submitter
	sessions *session.Manager
	upstream *upstream.Client
	prober   *probe.Prober

	// menu caches the last loaded catalog so cart adds resolve products
	// without refetching. Refreshed on every catalog request.
	menu atomic.Pointer[[]catalog.Product]

	// watchTimeout bounds one cart long-poll cycle.
	watchTimeout time.Duration
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	loader *catalog.Loader,
	cartStore *cart.Store,
	submitter *checkout.Submitter,
	sessions *session.Manager,
	upstreamClient *upstream.Client,
	prober *probe.Prober,
) *Handler {
	return &Handler{
		loader:       loader,
		cart:         cartStore,
		checkout:     submitter,
		sessions:     sessions,
		upstream:     upstreamClient,
		prober:       prober,
		watchTimeout: defaultWatchTimeout,
	}
}

// Routes registers every storefront endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Storefront.
	mux.HandleFunc("GET /api/catalog", h.handleCatalog)
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/cart", h.handleCartGet)
	mux.HandleFunc("GET /api/cart/changes", h.handleCartWatch)
	mux.HandleFunc("DELETE /api/cart", h.handleCartClear)
	mux.HandleFunc("POST /api/cart/items", h.handleCartAdd)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.handleCartUpdate)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.handleCartRemove)
	mux.HandleFunc("POST /api/checkout", h.handleCheckout)

	// Back office.
	mux.HandleFunc("POST /api/admin/login", h.handleLogin)
	mux.HandleFunc("POST /api/admin/logout", h.handleLogout)
	mux.HandleFunc("GET /api/admin/session", h.handleSession)
	h.adminRoutes(mux)

	return mux
}

// products returns the cached menu, loading it when no catalog request has
// populated the cache yet.
func (h *Handler) products(r *http.Request) []catalog.Product {
	if cached := h.menu.Load(); cached != nil {
		return *cached
	}
	products, _ := h.loader.Load(r.Context())
	h.menu.Store(&products)
	return products
}

// errorResponse is the uniform failure body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Status is already written; nothing to do but log.
		zctx.From(r.Context()).Error("Response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: message})
}

// decodeBody decodes the request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
