// Package checkout validates the contact form, assembles the order payload
// from the persisted cart, and hands it to the order processor. The cart is
// cleared only after the processor declares success.
package checkout

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/cheburek-storefront/internal/cart"
)

// Delivery and payment options offered at checkout.
const (
	DeliveryPickup  = "pickup"
	DeliveryCourier = "courier"

	PaymentCash = "cash"
	PaymentCard = "card"
)

// Validation rejections. All of them block submission before any network
// attempt and leave the cart untouched.
var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrMissingName  = errors.New("name is required")
	ErrMissingPhone = errors.New("phone is required")
	ErrInvalidPhone = errors.New("phone must be a Russian mobile number: 11 digits starting with 7 or 8")
)

// ContactForm is the customer's checkout input.
type ContactForm struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	DeliveryType string `json:"deliveryType"`
	PaymentType  string `json:"paymentType"`
	EmployeeID   string `json:"employeeId"`
	Comment      string `json:"comment"`
}

// Customer is the contact block of the order payload. The phone carries bare
// digits; formatting is display-only.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// OrderItem is one order line in the submission payload.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Size        string          `json:"size"`
}

// Order is the submission payload. It is built at submit time and not
// persisted locally beyond the submission call.
type Order struct {
	Customer     Customer        `json:"customer"`
	Items        []OrderItem     `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	DeliveryType string          `json:"deliveryType"`
	PaymentType  string          `json:"paymentType"`
	EmployeeID   string          `json:"employeeId"`
	Comment      string          `json:"comment"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Receipt is returned on successful submission.
type Receipt struct {
	OrderID string          `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
	Phone   string          `json:"phone"`
}

// Processor submits a completed order to the order-processing collaborator.
type Processor interface {
	Submit(ctx context.Context, order Order) (orderID string, err error)
}

// SimulatedProcessor stands in for the external order-processing service:
// a fixed artificial delay followed by a randomly generated order number.
type SimulatedProcessor struct {
	// Delay imitates processing latency. Zero means no delay.
	Delay time.Duration
}

// Submit waits out the artificial delay and returns a random four-digit
// order number.
func (p *SimulatedProcessor) Submit(ctx context.Context, _ Order) (string, error) {
	if p.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return strconv.Itoa(1000 + rand.IntN(9000)), nil
}

// Submitter runs the checkout flow against the cart store.
type Submitter struct {
	cart      *cart.Store
	processor Processor
}

// NewSubmitter creates a Submitter.
func NewSubmitter(cartStore *cart.Store, processor Processor) *Submitter {
	return &Submitter{
		cart:      cartStore,
		processor: processor,
	}
}

// Submit validates the form and the cart, submits the order, and clears the
// cart on success. On any failure the cart is left untouched and no retry is
// attempted.
func (s *Submitter) Submit(ctx context.Context, form ContactForm) (*Receipt, error) {
	lines := s.cart.Read(ctx)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if form.Name == "" {
		return nil, ErrMissingName
	}
	if form.Phone == "" {
		return nil, ErrMissingPhone
	}
	if !ValidPhone(form.Phone) {
		return nil, ErrInvalidPhone
	}

	deliveryType := form.DeliveryType
	if deliveryType == "" {
		deliveryType = DeliveryPickup
	}
	paymentType := form.PaymentType
	if paymentType == "" {
		paymentType = PaymentCash
	}

	items := make([]OrderItem, len(lines))
	for i, l := range lines {
		items[i] = OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Price,
			Size:        l.Size,
		}
	}
	total := cart.Total(lines)

	order := Order{
		Customer: Customer{
			Name:    form.Name,
			Phone:   PhoneDigits(form.Phone),
			Email:   form.Email,
			Address: form.Address,
		},
		Items:        items,
		TotalAmount:  total,
		DeliveryType: deliveryType,
		PaymentType:  paymentType,
		EmployeeID:   form.EmployeeID,
		Comment:      form.Comment,
		Timestamp:    time.Now(),
	}

	orderID, err := s.processor.Submit(ctx, order)
	if err != nil {
		return nil, errors.Wrap(err, "submit order")
	}

	// Success is declared: the cart must go. A failed clear is logged but
	// does not undo the submission.
	if err := s.cart.Clear(ctx); err != nil {
		zctx.From(ctx).Error("Order placed but cart clear failed", zap.String("order_id", orderID), zap.Error(err))
	}

	return &Receipt{
		OrderID: orderID,
		Total:   total,
		Phone:   FormatPhone(form.Phone),
	}, nil
}
