package api

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/cheburek-storefront/internal/session"
	"github.com/xenking/cheburek-storefront/internal/upstream"
)

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	state, err := h.sessions.Login(r.Context(), req.Username, req.Password, req.EmployeeID)
	switch {
	case errors.Is(err, session.ErrMissingFields):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "login failed")
	default:
		writeJSON(w, r, http.StatusOK, state)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, r, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Current(r.Context())
	if state == nil {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}

// requireAdmin rejects back-office requests without an authenticated session.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.sessions.Current(r.Context()) == nil {
			writeError(w, r, http.StatusUnauthorized, "not authenticated")
			return
		}
		next(w, r)
	}
}

// adminRoutes registers the back-office resource endpoints, each proxied to
// the upstream API behind the session gate.
func (h *Handler) adminRoutes(mux *http.ServeMux) {
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, h.requireAdmin(fn))
	}

	admin("GET /api/admin/products", h.listProducts)
	admin("GET /api/admin/products/search", h.searchProducts)
	admin("GET /api/admin/products/categories", h.listProductCategories)
	admin("GET /api/admin/products/category/{category}", h.listProductsByCategory)
	admin("GET /api/admin/products/{id}", h.getProduct)
	admin("POST /api/admin/products", h.createProduct)
	admin("PUT /api/admin/products/{id}", h.updateProduct)
	admin("DELETE /api/admin/products/{id}", h.deleteProduct)

	admin("GET /api/admin/suppliers", h.listSuppliers)
	admin("GET /api/admin/suppliers/{id}", h.getSupplier)
	admin("POST /api/admin/suppliers", h.createSupplier)
	admin("PUT /api/admin/suppliers/{id}", h.updateSupplier)
	admin("DELETE /api/admin/suppliers/{id}", h.deleteSupplier)

	admin("GET /api/admin/employees", h.listEmployees)
	admin("GET /api/admin/employees/{id}", h.getEmployee)
	admin("POST /api/admin/employees", h.createEmployee)
	admin("PUT /api/admin/employees/{id}", h.updateEmployee)
	admin("DELETE /api/admin/employees/{id}", h.deleteEmployee)
	admin("GET /api/admin/positions", h.listPositions)

	admin("GET /api/admin/deliveries", h.listDeliveries)
	admin("GET /api/admin/deliveries/{id}", h.getDelivery)
	admin("POST /api/admin/deliveries", h.createDelivery)
	admin("PUT /api/admin/deliveries/{id}", h.updateDelivery)
	admin("PUT /api/admin/deliveries/{id}/status", h.updateDeliveryStatus)
	admin("DELETE /api/admin/deliveries/{id}", h.deleteDelivery)

	admin("GET /api/admin/orders", h.listOrders)
	admin("GET /api/admin/orders/{id}", h.getOrder)
	admin("PUT /api/admin/orders/{id}/status", h.updateOrderStatus)
	admin("DELETE /api/admin/orders/{id}", h.deleteOrder)

	admin("GET /api/admin/dashboard/stats", h.dashboardStats)
}

// pathID parses the {id} path segment. Returns false after writing a 400.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// proxyResult writes the upstream result, translating *APIError into the
// upstream's own status code and anything else into 502.
func proxyResult(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			status := apiErr.Code
			// An error report can ride on a 2xx response (the upstream
			// answers list requests with an error object and status 200).
			// Never relay a success status for a failure.
			if status < http.StatusBadRequest {
				status = http.StatusBadGateway
			}
			writeError(w, r, status, apiErr.Message)
			return
		}
		writeError(w, r, http.StatusBadGateway, "upstream unavailable")
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

// --- Products ---

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.upstream.ListProducts(r.Context())
	proxyResult(w, r, products, err)
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.upstream.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	proxyResult(w, r, products, err)
}

func (h *Handler) listProductCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.upstream.ListCategories(r.Context())
	proxyResult(w, r, categories, err)
}

func (h *Handler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.upstream.ListProductsByCategory(r.Context(), r.PathValue("category"))
	proxyResult(w, r, products, err)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.upstream.GetProduct(r.Context(), id)
	proxyResult(w, r, product, err)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in upstream.ProductInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.CreateProduct(r.Context(), in))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in upstream.ProductInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.UpdateProduct(r.Context(), id, in))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	proxyResult(w, r, nil, h.upstream.DeleteProduct(r.Context(), id))
}

// --- Suppliers ---

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.upstream.ListSuppliers(r.Context())
	proxyResult(w, r, suppliers, err)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	supplier, err := h.upstream.GetSupplier(r.Context(), id)
	proxyResult(w, r, supplier, err)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var in upstream.SupplierInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.CreateSupplier(r.Context(), in))
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in upstream.SupplierInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.UpdateSupplier(r.Context(), id, in))
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	proxyResult(w, r, nil, h.upstream.DeleteSupplier(r.Context(), id))
}

// --- Employees and positions ---

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.upstream.ListEmployees(r.Context())
	proxyResult(w, r, employees, err)
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	employee, err := h.upstream.GetEmployee(r.Context(), id)
	proxyResult(w, r, employee, err)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var in upstream.EmployeeInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.CreateEmployee(r.Context(), in))
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in upstream.EmployeeInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.UpdateEmployee(r.Context(), id, in))
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	proxyResult(w, r, nil, h.upstream.DeleteEmployee(r.Context(), id))
}

func (h *Handler) listPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.upstream.ListPositions(r.Context())
	proxyResult(w, r, positions, err)
}

// --- Deliveries ---

func (h *Handler) listDeliveries(w http.ResponseWriter, r *http.Request) {
	deliveries, err := h.upstream.ListDeliveries(r.Context())
	proxyResult(w, r, deliveries, err)
}

func (h *Handler) getDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	delivery, err := h.upstream.GetDelivery(r.Context(), id)
	proxyResult(w, r, delivery, err)
}

func (h *Handler) createDelivery(w http.ResponseWriter, r *http.Request) {
	var in upstream.DeliveryInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.CreateDelivery(r.Context(), in))
}

func (h *Handler) updateDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in upstream.DeliveryInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.UpdateDelivery(r.Context(), id, in))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.UpdateDeliveryStatus(r.Context(), id, req.Status))
}

func (h *Handler) deleteDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	proxyResult(w, r, nil, h.upstream.DeleteDelivery(r.Context(), id))
}

// --- Orders ---

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.upstream.ListOrders(r.Context())
	proxyResult(w, r, orders, err)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.upstream.GetOrder(r.Context(), id)
	proxyResult(w, r, order, err)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	proxyResult(w, r, nil, h.upstream.UpdateOrderStatus(r.Context(), id, req.Status))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	proxyResult(w, r, nil, h.upstream.DeleteOrder(r.Context(), id))
}

// --- Dashboard ---

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.upstream.GetDashboardStats(r.Context())
	proxyResult(w, r, stats, err)
}
