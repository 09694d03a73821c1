package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/cheburek-storefront/internal/cart"
	"github.com/xenking/cheburek-storefront/internal/catalog"
	"github.com/xenking/cheburek-storefront/internal/checkout"
)

// catalogResponse carries the menu plus where it came from.
type catalogResponse struct {
	Products   []catalog.Product `json:"products"`
	Categories []string          `json:"categories"`
	Live       bool              `json:"live"`
	Status     string            `json:"status"`
}

// handleCatalog loads the menu. It never fails: an unreachable upstream
// yields the embedded fallback set with live=false.
func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	products, live := h.loader.Load(r.Context())
	h.menu.Store(&products)

	writeJSON(w, r, http.StatusOK, catalogResponse{
		Products:   products,
		Categories: catalog.Categories(products),
		Live:       live,
		Status:     h.prober.Status().String(),
	})
}

// handleStatus reports the probed upstream availability.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: h.prober.Status().String()})
}

// cartResponse carries the cart lines plus the derived totals.
type cartResponse struct {
	Lines []cart.Line     `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func (h *Handler) cartSnapshot(r *http.Request) cartResponse {
	lines := h.cart.Read(r.Context())
	return cartResponse{
		Lines: lines,
		Total: cart.Total(lines),
		Count: cart.Count(lines),
	}
}

func (h *Handler) handleCartGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.cartSnapshot(r))
}

// defaultWatchTimeout is how long one cart long-poll cycle waits before
// answering with an unchanged snapshot.
const defaultWatchTimeout = 25 * time.Second

// cartChangesResponse is the long-poll answer: whether the cart changed
// during the wait, plus the fresh snapshot either way.
type cartChangesResponse struct {
	Changed bool `json:"changed"`
	cartResponse
}

// handleCartWatch is the passive-observer endpoint: it blocks until another
// writer mutates the cart slot, the poll times out, or the client goes away,
// then returns the current snapshot. Clients re-poll to keep following.
func (h *Handler) handleCartWatch(w http.ResponseWriter, r *http.Request) {
	ch, err := h.cart.Watch(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "cart watch unavailable")
		return
	}

	timer := time.NewTimer(h.watchTimeout)
	defer timer.Stop()

	changed := false
	select {
	case _, ok := <-ch:
		changed = ok
	case <-timer.C:
	case <-r.Context().Done():
		return
	}

	writeJSON(w, r, http.StatusOK, cartChangesResponse{
		Changed:      changed,
		cartResponse: h.cartSnapshot(r),
	})
}

func (h *Handler) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	SizeID    string `json:"sizeId"`
}

func (h *Handler) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	var product *catalog.Product
	for _, p := range h.products(r) {
		if p.ID == req.ProductID {
			product = &p
			break
		}
	}
	if product == nil {
		writeError(w, r, http.StatusNotFound, "product not found")
		return
	}

	line, err := h.cart.Add(r.Context(), *product, req.SizeID)
	if err != nil {
		mapCartError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, line)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), r.PathValue("id"), req.Quantity); err != nil {
		mapCartError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.cartSnapshot(r))
}

func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Remove(r.Context(), r.PathValue("id")); err != nil {
		mapCartError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.cartSnapshot(r))
}

// mapCartError converts cart rejections to status codes. Business-rule
// rejections are client errors, never 500s.
func mapCartError(w http.ResponseWriter, r *http.Request, err error) {
	var uv *cart.UnknownVariantError
	switch {
	case errors.Is(err, cart.ErrNoVariant):
		writeError(w, r, http.StatusUnprocessableEntity, "size not selected")
	case errors.Is(err, cart.ErrUnavailable):
		writeError(w, r, http.StatusUnprocessableEntity, "product is not available")
	case errors.As(err, &uv):
		writeError(w, r, http.StatusUnprocessableEntity, uv.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, r, http.StatusNotFound, "cart line not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "cart operation failed")
	}
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var form checkout.ContactForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	receipt, err := h.checkout.Submit(r.Context(), form)
	if err != nil {
		mapCheckoutError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, receipt)
}

// mapCheckoutError converts checkout rejections to status codes.
func mapCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, r, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, checkout.ErrMissingName),
		errors.Is(err, checkout.ErrMissingPhone),
		errors.Is(err, checkout.ErrInvalidPhone):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusBadGateway, "order submission failed")
	}
}
