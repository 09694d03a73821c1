package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/cheburek-storefront/internal/cart"
	"github.com/xenking/cheburek-storefront/internal/catalog"
	"github.com/xenking/cheburek-storefront/internal/checkout"
	"github.com/xenking/cheburek-storefront/internal/probe"
	"github.com/xenking/cheburek-storefront/internal/session"
	"github.com/xenking/cheburek-storefront/internal/storage"
	"github.com/xenking/cheburek-storefront/internal/upstream"
)

// fakeUpstream imitates the restaurant REST API for handler tests.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "productName": "Cheburek with meat", "category": "Bakery", "price": 120},
			{"id": 2, "productName": "Black tea", "category": "Drinks", "price": 50}
		]`))
	})
	mux.HandleFunc("GET /suppliers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "companyName": "Мука и Ко", "phone": "+7 (999) 555-66-77"}]`))
	})
	mux.HandleFunc("DELETE /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, upstreamURL string) *Handler {
	t.Helper()

	store := storage.NewMemory()
	client := upstream.NewClient(upstreamURL, time.Second)
	loader := catalog.NewLoader(client, nil, time.Second)
	cartStore := cart.NewStore(store)
	submitter := checkout.NewSubmitter(cartStore, &checkout.SimulatedProcessor{})
	sessions := session.NewManager(store, nil)
	prober := probe.New(client.Ping, time.Minute, time.Second)

	return NewHandler(loader, cartStore, submitter, sessions, client, prober)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Catalog(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products   []catalog.Product `json:"products"`
		Categories []string          `json:"categories"`
		Live       bool              `json:"live"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Live)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Чебурек с мясом", resp.Products[0].Name)
	assert.Equal(t, []string{"Выпечка", "Напитки"}, resp.Categories)
}

func TestHandler_CatalogFallback(t *testing.T) {
	mux := newTestHandler(t, "http://127.0.0.1:1").Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []catalog.Product `json:"products"`
		Live     bool              `json:"live"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Live)
	assert.Len(t, resp.Products, 4, "unreachable upstream serves the fallback menu")
}

func TestHandler_Status(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "checking"}`, rec.Body.String())
}

func TestHandler_CartFlow(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	// Add twice: the second add merges into the first line.
	rec := doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "1", "sizeId": "small"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "1", "sizeId": "small"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var line cart.Line
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
	assert.Equal(t, 2, line.Quantity)

	rec = doJSON(t, mux, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot struct {
		Lines []cart.Line `json:"lines"`
		Total string      `json:"total"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 2, snapshot.Count)
	assert.Equal(t, "240", snapshot.Total)

	rec = doJSON(t, mux, http.MethodPut, "/api/cart/items/"+line.ID, `{"quantity": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, 5, snapshot.Count)

	rec = doJSON(t, mux, http.MethodDelete, "/api/cart/items/"+line.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Empty(t, snapshot.Lines)
}

func TestHandler_CartChangesLongPoll(t *testing.T) {
	srv := fakeUpstream(t)
	h := newTestHandler(t, srv.URL)
	mux := h.Routes()

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doJSON(t, mux, http.MethodGet, "/api/cart/changes", "")
	}()

	// Give the poller a moment to register its watcher, then mutate.
	time.Sleep(50 * time.Millisecond)
	rec := doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "1", "sizeId": "small"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	select {
	case rec = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("long poll did not return after a cart mutation")
	}
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Changed bool        `json:"changed"`
		Lines   []cart.Line `json:"lines"`
		Count   int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Changed)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 1, resp.Count)
}

func TestHandler_CartChangesTimeout(t *testing.T) {
	srv := fakeUpstream(t)
	h := newTestHandler(t, srv.URL)
	h.watchTimeout = 50 * time.Millisecond
	mux := h.Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/cart/changes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Changed bool `json:"changed"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Changed, "an idle poll answers with an unchanged snapshot")
	assert.Zero(t, resp.Count)
}

func TestHandler_CartAddRejections(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "999", "sizeId": "small"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "1", "sizeId": ""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "1", "sizeId": "gigantic"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/cart/items", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CartClear(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "1", "sizeId": "small"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/api/cart", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/cart", "")
	var snapshot struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Zero(t, snapshot.Count)
}

func TestHandler_Checkout(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/checkout", `{"name": "Иван", "phone": "+7 (999) 123-45-67"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart cannot be checked out")

	rec = doJSON(t, mux, http.MethodPost, "/api/cart/items", `{"productId": "1", "sizeId": "medium"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/checkout", `{"name": "Иван", "phone": "12345"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/checkout", `{"name": "Иван", "phone": "89991234567"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt checkout.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Len(t, receipt.OrderID, 4)
	assert.Equal(t, "+7 (999) 123-45-67", receipt.Phone)

	rec = doJSON(t, mux, http.MethodGet, "/api/cart", "")
	var snapshot struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Zero(t, snapshot.Count, "successful checkout clears the cart")
}

func TestHandler_AdminSessionGate(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/admin/products", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/admin/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/admin/login", `{"username": "admin", "password": "wrong", "employeeId": "1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/admin/login", `{"username": "admin", "password": "admin123", "employeeId": "1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var state session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "manager", state.Role)

	rec = doJSON(t, mux, http.MethodGet, "/api/admin/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var products []upstream.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 2)
	assert.Equal(t, "Cheburek with meat", products[0].Name)

	rec = doJSON(t, mux, http.MethodPost, "/api/admin/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/admin/products", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_AdminProxy(t *testing.T) {
	srv := fakeUpstream(t)
	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/admin/login", `{"username": "admin", "password": "admin123", "employeeId": "1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/admin/suppliers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var suppliers []upstream.Supplier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suppliers))
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Мука и Ко", suppliers[0].CompanyName)

	rec = doJSON(t, mux, http.MethodDelete, "/api/admin/products/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/api/admin/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_AdminProxy_ErrorObjectOn200(t *testing.T) {
	upstreamMux := http.NewServeMux()
	upstreamMux.HandleFunc("GET /suppliers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"error": "database unavailable"}`))
	})
	srv := httptest.NewServer(upstreamMux)
	t.Cleanup(srv.Close)

	mux := newTestHandler(t, srv.URL).Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/admin/login", `{"username": "admin", "password": "admin123", "employeeId": "1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// The upstream reports failures as an error object on a 200 response;
	// the proxy must not relay the success status.
	rec = doJSON(t, mux, http.MethodGet, "/api/admin/suppliers", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "database unavailable", resp.Message)
}
