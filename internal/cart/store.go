// Package cart implements the storefront cart: an ordered collection of
// line items persisted as a single JSON snapshot in a key-value store.
// Every mutation rewrites the whole snapshot before returning, so the
// in-memory view and the persisted view never diverge after a successful
// call.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AZIZABADA10/E-commerce/internal/models"
	"github.com/AZIZABADA10/E-commerce/internal/repositories"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is returned when an add would push a line item past
// its stock limit while it is already at the limit.
var ErrInsufficientStock = errors.New("insufficient stock")

// Store owns one cart, identified by its snapshot key. It is not safe for
// concurrent use; callers construct one per request.
type Store struct {
	repo  repositories.CartSnapshotRepository
	key   string
	items []models.CartItem
}

// NewStore creates a Store bound to the given snapshot key and loads the
// persisted snapshot. A missing or malformed snapshot yields an empty
// cart, never an error.
func NewStore(repo repositories.CartSnapshotRepository, key string) *Store {
	s := &Store{repo: repo, key: key}
	s.Load()
	return s
}

// Load re-reads the persisted snapshot. Corrupt or non-array data is
// discarded and the cart degrades to empty; Load never fails.
func (s *Store) Load() []models.CartItem {
	s.items = nil

	data, ok, err := s.repo.Load(s.key)
	if err != nil || !ok {
		return s.Items()
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return s.Items()
	}

	// Sanitize item by item so one bad line doesn't poison the cart.
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 || seen[item.ProductID] {
			continue
		}
		if item.StockLimit <= 0 {
			item.StockLimit = models.DefaultStockLimit
		}
		if item.Quantity > item.StockLimit {
			item.Quantity = item.StockLimit
		}
		if item.UnitPrice < 0 {
			continue
		}
		seen[item.ProductID] = true
		s.items = append(s.items, item)
	}
	return s.Items()
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// AddItem adds quantity units of product to the cart. An existing line is
// incremented and capped at its stock limit; a line already at the limit
// rejects the add with ErrInsufficientStock and leaves the cart unchanged.
func (s *Store) AddItem(product *models.Product, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	next := s.Items()
	found := false
	for i := range next {
		if next[i].ProductID != product.ID {
			continue
		}
		found = true
		if next[i].Quantity >= next[i].StockLimit {
			return fmt.Errorf("product %s is already at its stock limit (%d): %w",
				product.ID, next[i].StockLimit, ErrInsufficientStock)
		}
		next[i].Quantity += quantity
		if next[i].Quantity > next[i].StockLimit {
			next[i].Quantity = next[i].StockLimit
		}
		break
	}
	if !found {
		next = append(next, models.NewCartItem(product, quantity))
	}
	return s.persist(next)
}

// UpdateQuantity replaces a line item's quantity, clamped to
// [1, StockLimit]. A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(productID)
	}

	next := s.Items()
	for i := range next {
		if next[i].ProductID != productID {
			continue
		}
		if quantity > next[i].StockLimit {
			quantity = next[i].StockLimit
		}
		next[i].Quantity = quantity
		return s.persist(next)
	}
	// Unknown product: nothing to update, cart stays as is.
	return nil
}

// RemoveItem deletes a line item if present; removing an absent product
// is a no-op, not an error.
func (s *Store) RemoveItem(productID string) error {
	next := s.Items()
	for i := range next {
		if next[i].ProductID == productID {
			next = append(next[:i], next[i+1:]...)
			return s.persist(next)
		}
	}
	return nil
}

// Clear empties the cart and deletes the persisted snapshot.
func (s *Store) Clear() error {
	if err := s.repo.Delete(s.key); err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", s.key, err)
	}
	s.items = nil
	return nil
}

// Total returns the cart total (unit price times quantity summed over all
// lines), rounded to 2 decimal places.
func (s *Store) Total() float64 {
	total := decimal.Zero
	for _, item := range s.items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

// ItemCount returns the sum of quantities across all line items.
func (s *Store) ItemCount() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// persist writes next as the new full snapshot, then commits it in
// memory. On a persistence error the in-memory cart keeps its previous
// (still persisted) state.
func (s *Store) persist(next []models.CartItem) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to serialize cart %s: %w", s.key, err)
	}
	if err := s.repo.Save(s.key, data); err != nil {
		return fmt.Errorf("failed to persist cart %s: %w", s.key, err)
	}
	s.items = next
	return nil
}
