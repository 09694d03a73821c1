package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/cheburek-storefront/internal/cart"
	"github.com/xenking/cheburek-storefront/internal/catalog"
	"github.com/xenking/cheburek-storefront/internal/storage"
)

type mockProcessor struct {
	orderID   string
	err       error
	lastOrder *Order
}

func (m *mockProcessor) Submit(_ context.Context, order Order) (string, error) {
	m.lastOrder = &order
	if m.err != nil {
		return "", m.err
	}
	return m.orderID, nil
}

func validForm() ContactForm {
	return ContactForm{
		Name:  "Иван Петров",
		Phone: "+7 (999) 123-45-67",
	}
}

func newTestCart(t *testing.T) *cart.Store {
	t.Helper()
	return cart.NewStore(storage.NewMemory())
}

func fillCart(t *testing.T, s *cart.Store) {
	t.Helper()
	p := catalog.Product{
		ID:        "1",
		Name:      "Чебурек с мясом",
		Available: true,
		Variants: []catalog.Variant{
			{ID: "small", Size: "Маленький", Price: decimal.NewFromInt(120), Weight: 150},
		},
	}
	_, err := s.Add(context.Background(), p, "small")
	require.NoError(t, err)
	_, err = s.Add(context.Background(), p, "small")
	require.NoError(t, err)
}

func TestSubmitter_EmptyCart(t *testing.T) {
	s := NewSubmitter(newTestCart(t), &mockProcessor{orderID: "1234"})

	_, err := s.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitter_Validation(t *testing.T) {
	cartStore := newTestCart(t)
	fillCart(t, cartStore)
	s := NewSubmitter(cartStore, &mockProcessor{orderID: "1234"})
	ctx := context.Background()

	form := validForm()
	form.Name = ""
	_, err := s.Submit(ctx, form)
	assert.ErrorIs(t, err, ErrMissingName)

	form = validForm()
	form.Phone = ""
	_, err = s.Submit(ctx, form)
	assert.ErrorIs(t, err, ErrMissingPhone)

	form = validForm()
	form.Phone = "12345"
	_, err = s.Submit(ctx, form)
	assert.ErrorIs(t, err, ErrInvalidPhone)

	assert.Len(t, cartStore.Read(ctx), 1, "validation failures must leave the cart untouched")
}

func TestSubmitter_SuccessClearsCart(t *testing.T) {
	cartStore := newTestCart(t)
	fillCart(t, cartStore)
	proc := &mockProcessor{orderID: "4242"}
	s := NewSubmitter(cartStore, proc)
	ctx := context.Background()

	receipt, err := s.Submit(ctx, validForm())
	require.NoError(t, err)

	assert.Equal(t, "4242", receipt.OrderID)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(240)))
	assert.Equal(t, "+7 (999) 123-45-67", receipt.Phone)
	assert.Empty(t, cartStore.Read(ctx), "cart must be cleared after a successful order")

	require.NotNil(t, proc.lastOrder)
	assert.Equal(t, "79991234567", proc.lastOrder.Customer.Phone, "payload carries bare digits")
	assert.Equal(t, DeliveryPickup, proc.lastOrder.DeliveryType)
	assert.Equal(t, PaymentCash, proc.lastOrder.PaymentType)
	require.Len(t, proc.lastOrder.Items, 1)
	assert.Equal(t, 2, proc.lastOrder.Items[0].Quantity)
	assert.True(t, proc.lastOrder.TotalAmount.Equal(decimal.NewFromInt(240)))
}

func TestSubmitter_ProcessorFailureKeepsCart(t *testing.T) {
	cartStore := newTestCart(t)
	fillCart(t, cartStore)
	s := NewSubmitter(cartStore, &mockProcessor{err: errors.New("kitchen on fire")})
	ctx := context.Background()

	_, err := s.Submit(ctx, validForm())
	require.Error(t, err)
	assert.Len(t, cartStore.Read(ctx), 1, "failed submission must keep the cart")
}

func TestSubmitter_ExplicitOptionsKept(t *testing.T) {
	cartStore := newTestCart(t)
	fillCart(t, cartStore)
	proc := &mockProcessor{orderID: "1000"}
	s := NewSubmitter(cartStore, proc)

	form := validForm()
	form.DeliveryType = DeliveryCourier
	form.PaymentType = PaymentCard
	form.Address = "ул. Ленина, 1"

	_, err := s.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, DeliveryCourier, proc.lastOrder.DeliveryType)
	assert.Equal(t, PaymentCard, proc.lastOrder.PaymentType)
	assert.Equal(t, "ул. Ленина, 1", proc.lastOrder.Customer.Address)
}

func TestSimulatedProcessor(t *testing.T) {
	proc := &SimulatedProcessor{}

	id, err := proc.Submit(context.Background(), Order{})
	require.NoError(t, err)
	require.Len(t, id, 4, "order numbers are four digits")
	assert.GreaterOrEqual(t, id, "1000")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	proc.Delay = time.Hour
	_, err = proc.Submit(ctx, Order{})
	assert.ErrorIs(t, err, context.Canceled)
}
