// Package upstream is the typed client for the restaurant REST API: the
// product catalog plus the back-office resources (suppliers, employees,
// positions, deliveries, orders, dashboard statistics).
//
// All decoding happens here, at one boundary. The upstream sometimes answers
// a list request with an error object instead of an array; that duck-typed
// shape is converted into an *APIError so callers never inspect payload
// shapes at runtime. A 204 or non-JSON response is treated as a bodiless
// outcome carrying only the HTTP status.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/cheburek-storefront/internal/catalog"
)

// DefaultBaseURL points at the local development deployment of the API.
const DefaultBaseURL = "http://localhost:5023/api"

// DefaultTimeout bounds a regular upstream request.
const DefaultTimeout = 10 * time.Second

// deleteTimeout bounds product deletion, which the upstream is known to stall
// on.
const deleteTimeout = 8 * time.Second

// APIError is a failure reported by the upstream API: the HTTP status plus
// the upstream's reason when its body carried one.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.Code, e.Message)
}

// Client talks to the upstream REST API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a Client for the API at baseURL. A zero timeout falls
// back to DefaultTimeout. Outbound requests are traced via otelhttp.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

// do performs one bounded request and returns the status code, the raw body,
// and the response content type.
func (c *Client) do(ctx context.Context, method, path string, body any, timeout time.Duration) (int, []byte, string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, "", errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, "", errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, "", errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", errors.Wrap(err, "read response")
	}
	return resp.StatusCode, raw, resp.Header.Get("Content-Type"), nil
}

// mutate performs a write request where only the outcome matters. A 204 or
// non-JSON body yields a status-only outcome; an error body yields an
// *APIError with the upstream's reason.
func (c *Client) mutate(ctx context.Context, method, path string, body any, timeout time.Duration) error {
	status, raw, contentType, err := c.do(ctx, method, path, body, timeout)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		return nil
	}
	if !strings.Contains(contentType, "application/json") {
		return &APIError{Code: status, Message: http.StatusText(status)}
	}
	return apiErrorFromBody(raw, status)
}

// apiErrorFromBody extracts the upstream failure reason from a JSON error
// object. Falls back to the HTTP status text.
func apiErrorFromBody(raw []byte, status int) *APIError {
	message := ""
	d := jx.DecodeBytes(raw)
	if d.Next() == jx.Object {
		_ = d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "error", "message", "title":
				s, err := decodeStr(d)
				if err != nil {
					return err
				}
				if message == "" {
					message = s
				}
				return nil
			default:
				return d.Skip()
			}
		})
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Code: status, Message: message}
}

// fetchList performs a GET that is expected to answer with a JSON array.
// An object-shaped payload is interpreted as an upstream error report.
func fetchList[T any](ctx context.Context, c *Client, path string, elem func(*jx.Decoder) (T, error)) ([]T, error) {
	status, raw, _, err := c.do(ctx, http.MethodGet, path, nil, c.timeout)
	if err != nil {
		return nil, err
	}

	d := jx.DecodeBytes(raw)
	switch d.Next() {
	case jx.Array:
		var out []T
		if err := d.Arr(func(d *jx.Decoder) error {
			v, err := elem(d)
			if err != nil {
				return err
			}
			out = append(out, v)
			return nil
		}); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
		return out, nil
	case jx.Object:
		return nil, apiErrorFromBody(raw, status)
	default:
		if status < 200 || status >= 300 {
			return nil, &APIError{Code: status, Message: http.StatusText(status)}
		}
		return nil, errors.Errorf("decode %s: unexpected payload", path)
	}
}

// fetchOne performs a GET that is expected to answer with a single JSON
// object.
func fetchOne[T any](ctx context.Context, c *Client, path string, elem func(*jx.Decoder) (T, error)) (T, error) {
	var zero T

	status, raw, _, err := c.do(ctx, http.MethodGet, path, nil, c.timeout)
	if err != nil {
		return zero, err
	}
	if status < 200 || status >= 300 {
		return zero, apiErrorFromBody(raw, status)
	}

	v, err := elem(jx.DecodeBytes(raw))
	if err != nil {
		return zero, errors.Wrapf(err, "decode %s", path)
	}
	return v, nil
}

// --- Products ---

// ListProducts returns all catalog products.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	return fetchList(ctx, c, "/products", decodeProduct)
}

// GetProduct returns one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	return fetchOne(ctx, c, "/products/"+strconv.FormatInt(id, 10), decodeProduct)
}

// SearchProducts returns products matching the free-text query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	return fetchList(ctx, c, "/products/search?q="+url.QueryEscape(query), decodeProduct)
}

// ListCategories returns the distinct upstream category codes.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	return fetchList(ctx, c, "/products/categories", decodeCategory)
}

// ListProductsByCategory returns products of one upstream category.
func (c *Client) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	return fetchList(ctx, c, "/products/category/"+url.PathEscape(category), decodeProduct)
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	return c.mutate(ctx, http.MethodPost, "/products", in, c.timeout)
}

// UpdateProduct replaces a product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	return c.mutate(ctx, http.MethodPut, "/products/"+strconv.FormatInt(id, 10), in, c.timeout)
}

// DeleteProduct deletes a product. The request runs under the shorter delete
// timeout.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, "/products/"+strconv.FormatInt(id, 10), nil, deleteTimeout)
}

// --- Suppliers ---

// ListSuppliers returns all suppliers.
func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return fetchList(ctx, c, "/suppliers", decodeSupplier)
}

// GetSupplier returns one supplier by id.
func (c *Client) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return fetchOne(ctx, c, "/suppliers/"+strconv.FormatInt(id, 10), decodeSupplier)
}

// CreateSupplier creates a supplier.
func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) error {
	return c.mutate(ctx, http.MethodPost, "/suppliers", in, c.timeout)
}

// UpdateSupplier replaces a supplier.
func (c *Client) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) error {
	return c.mutate(ctx, http.MethodPut, "/suppliers/"+strconv.FormatInt(id, 10), in, c.timeout)
}

// DeleteSupplier deletes a supplier.
func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, "/suppliers/"+strconv.FormatInt(id, 10), nil, c.timeout)
}

// --- Employees and positions ---

// ListEmployees returns all employees.
func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	return fetchList(ctx, c, "/employees", decodeEmployee)
}

// GetEmployee returns one employee by id.
func (c *Client) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	return fetchOne(ctx, c, "/employees/"+strconv.FormatInt(id, 10), decodeEmployee)
}

// CreateEmployee creates an employee.
func (c *Client) CreateEmployee(ctx context.Context, in EmployeeInput) error {
	return c.mutate(ctx, http.MethodPost, "/employees", in, c.timeout)
}

// UpdateEmployee replaces an employee.
func (c *Client) UpdateEmployee(ctx context.Context, id int64, in EmployeeInput) error {
	return c.mutate(ctx, http.MethodPut, "/employees/"+strconv.FormatInt(id, 10), in, c.timeout)
}

// DeleteEmployee deletes an employee.
func (c *Client) DeleteEmployee(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, "/employees/"+strconv.FormatInt(id, 10), nil, c.timeout)
}

// ListPositions returns all job positions.
func (c *Client) ListPositions(ctx context.Context) ([]Position, error) {
	return fetchList(ctx, c, "/positions", decodePosition)
}

// --- Deliveries ---

// ListDeliveries returns all deliveries.
func (c *Client) ListDeliveries(ctx context.Context) ([]Delivery, error) {
	return fetchList(ctx, c, "/deliveries", decodeDelivery)
}

// GetDelivery returns one delivery by id.
func (c *Client) GetDelivery(ctx context.Context, id int64) (Delivery, error) {
	return fetchOne(ctx, c, "/deliveries/"+strconv.FormatInt(id, 10), decodeDelivery)
}

// CreateDelivery creates a delivery.
func (c *Client) CreateDelivery(ctx context.Context, in DeliveryInput) error {
	return c.mutate(ctx, http.MethodPost, "/deliveries", in, c.timeout)
}

// UpdateDelivery replaces a delivery.
func (c *Client) UpdateDelivery(ctx context.Context, id int64, in DeliveryInput) error {
	return c.mutate(ctx, http.MethodPut, "/deliveries/"+strconv.FormatInt(id, 10), in, c.timeout)
}

// UpdateDeliveryStatus changes only the delivery status.
func (c *Client) UpdateDeliveryStatus(ctx context.Context, id int64, status string) error {
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	return c.mutate(ctx, http.MethodPut, "/deliveries/"+strconv.FormatInt(id, 10)+"/status", body, c.timeout)
}

// DeleteDelivery deletes a delivery.
func (c *Client) DeleteDelivery(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, "/deliveries/"+strconv.FormatInt(id, 10), nil, c.timeout)
}

// --- Orders ---

// ListOrders returns all orders.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	return fetchList(ctx, c, "/orders", decodeOrder)
}

// GetOrder returns one order by id.
func (c *Client) GetOrder(ctx context.Context, id int64) (Order, error) {
	return fetchOne(ctx, c, "/orders/"+strconv.FormatInt(id, 10), decodeOrder)
}

// UpdateOrderStatus changes only the order status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	return c.mutate(ctx, http.MethodPut, "/orders/"+strconv.FormatInt(id, 10)+"/status", body, c.timeout)
}

// DeleteOrder deletes an order.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, "/orders/"+strconv.FormatInt(id, 10), nil, c.timeout)
}

// --- Dashboard and availability ---

// GetDashboardStats returns the back-office dashboard summary.
func (c *Client) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	return fetchOne(ctx, c, "/dashboard/stats", decodeDashboardStats)
}

// Ping is the availability probe: a GET on the products endpoint. Any
// transport failure or non-2xx status is reported as an error. The caller
// bounds the request via ctx.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "probe products")
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// FetchProducts implements catalog.Fetcher: the raw upstream records handed
// to the catalog normalizer.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Record, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]catalog.Record, len(products))
	for i, p := range products {
		records[i] = catalog.Record{
			ID:       strconv.FormatInt(p.ID, 10),
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
		}
	}
	return records, nil
}
