// Package cart implements the persisted shopping cart. The cart is one
// storage slot holding an ordered JSON list of lines; every mutation reads
// the current list, applies the change, and writes the whole list back
// (write-through, last write wins).
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/cheburek-storefront/internal/catalog"
	"github.com/xenking/cheburek-storefront/internal/storage"
)

// Slot is the storage slot holding the serialized cart.
const Slot = "cheburechnaya_basket"

// Business-rule rejections surfaced to the customer. None of them mutate the
// cart.
var (
	ErrNoVariant    = errors.New("size not selected")
	ErrUnavailable  = errors.New("product is not available")
	ErrLineNotFound = errors.New("cart line not found")
)

// UnknownVariantError indicates the selected size does not exist on the
// product.
type UnknownVariantError struct {
	ProductID string
	VariantID string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("product %s has no variant %q", e.ProductID, e.VariantID)
}

// Line is one cart entry: a chosen product+variant with its quantity.
// Price, name and size are locked in at add time and never re-derived.
type Line struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	VariantID string          `json:"sizeId"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Weight    int             `json:"weight"`
	Quantity  int             `json:"quantity"`
	Calories  int             `json:"calories"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	AddedAt   time.Time       `json:"addedAt"`
	UpdatedAt time.Time       `json:"updatedAt,omitzero"`
}

// Store reads and mutates the persisted cart.
type Store struct {
	storage storage.Store
	now     func() time.Time
}

// NewStore creates a cart Store on top of the given storage backend.
func NewStore(st storage.Store) *Store {
	return &Store{
		storage: st,
		now:     time.Now,
	}
}

// Read returns the current cart lines in insertion order. It fails soft:
// a missing slot, unreachable storage, or malformed stored JSON all yield an
// empty cart (parse and transport problems are logged, never raised).
func (s *Store) Read(ctx context.Context) []Line {
	data, err := s.storage.Get(ctx, Slot)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		zctx.From(ctx).Warn("Cart read failed, treating as empty", zap.Error(err))
		return nil
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		zctx.From(ctx).Warn("Stored cart is malformed, treating as empty", zap.Error(err))
		return nil
	}
	return lines
}

// Add puts one unit of the chosen product variant into the cart. When a line
// for the same (product, variant) pair already exists its quantity is
// incremented instead of appending a duplicate; the existing line keeps its
// locked-in price, name and size.
func (s *Store) Add(ctx context.Context, p catalog.Product, variantID string) (Line, error) {
	if variantID == "" {
		return Line{}, ErrNoVariant
	}
	if !p.Available {
		return Line{}, ErrUnavailable
	}
	variant, ok := p.Variant(variantID)
	if !ok {
		return Line{}, &UnknownVariantError{ProductID: p.ID, VariantID: variantID}
	}

	lines := s.Read(ctx)
	now := s.now()

	for i := range lines {
		if lines[i].ProductID == p.ID && lines[i].VariantID == variantID {
			lines[i].Quantity++
			lines[i].UpdatedAt = now
			if err := s.write(ctx, lines); err != nil {
				return Line{}, err
			}
			return lines[i], nil
		}
	}

	line := Line{
		ID:        newLineID(p.ID, variantID, now),
		ProductID: p.ID,
		VariantID: variantID,
		Name:      p.Name,
		Size:      variant.Size,
		Price:     variant.Price,
		Weight:    variant.Weight,
		Quantity:  1,
		Calories:  p.Calories,
		Category:  p.Category,
		Image:     p.Image,
		AddedAt:   now,
	}
	lines = append(lines, line)
	if err := s.write(ctx, lines); err != nil {
		return Line{}, err
	}
	return line, nil
}

// UpdateQuantity sets the quantity of the line with the given id. A quantity
// below one removes the line: quantities less than one are never persisted.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, lineID)
	}

	lines := s.Read(ctx)
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
			lines[i].UpdatedAt = s.now()
			return s.write(ctx, lines)
		}
	}
	return ErrLineNotFound
}

// Remove deletes the line with the given id.
func (s *Store) Remove(ctx context.Context, lineID string) error {
	lines := s.Read(ctx)
	kept := lines[:0]
	found := false
	for _, l := range lines {
		if l.ID == lineID {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return ErrLineNotFound
	}
	return s.write(ctx, kept)
}

// Clear removes the cart slot entirely. An absent slot and an empty list are
// equivalent on read, so the slot is deleted rather than overwritten.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, Slot); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

// Watch exposes storage change notification for the cart slot, letting a
// passive view reload when another process mutates the cart.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	return s.storage.Watch(ctx, Slot)
}

func (s *Store) write(ctx context.Context, lines []Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.storage.Set(ctx, Slot, data); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

// Total returns the sum of price times quantity over all lines. It is a pure
// function over the snapshot, recomputed on demand.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Count returns the total number of items (sum of quantities) in the cart.
func Count(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

// newLineID builds the synthetic line identifier: product, variant, creation
// time and a random suffix, unique across repeated adds before merge logic
// applies.
func newLineID(productID, variantID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d_%s", productID, variantID, now.UnixMilli(), uuid.NewString()[:8])
}
