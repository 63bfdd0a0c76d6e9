package cart

import (
	"context"
	"fmt"
	"sync"

	"shopverse/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns the in-memory carts for all active sessions. Each session's
// cart has a single logical owner; the mutex only serializes access
// across HTTP requests. The in-memory cart is authoritative for the
// session: persistence failures are logged and swallowed, never
// propagated, so a broken store degrades to a cart that does not survive
// a restart rather than a failed request.
type Store struct {
	mu          sync.Mutex
	carts       map[string]Cart
	persistence Persistence
	notifier    Notifier
	logger      *zap.Logger
}

// NewStore creates a session cart store. The store's lifetime matches
// the server's; consumers receive it by injection.
func NewStore(persistence Persistence, notifier Notifier, logger *zap.Logger) *Store {
	return &Store{
		carts:       make(map[string]Cart),
		persistence: persistence,
		notifier:    notifier,
		logger:      logger,
	}
}

// Get returns the session's cart, hydrating it from persistence on
// first access. A missing or unparsable saved cart is treated as "no
// saved cart" and yields an empty one.
func (s *Store) Get(ctx context.Context, sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrate(ctx, sessionID).Clone()
}

// AddItem merges quantity into the existing line for the product, or
// appends a new line. A quantity below 1 is rejected as a no-op so a
// cart line can never hold a non-positive quantity.
func (s *Store) AddItem(ctx context.Context, sessionID string, product domain.Product, quantity int) Cart {
	if quantity < 1 {
		return s.Get(ctx, sessionID)
	}

	s.mu.Lock()
	cart := s.hydrate(ctx, sessionID)

	found := false
	for i := range cart {
		if cart[i].Product.ID == product.ID {
			cart[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart = append(cart, Line{Product: product, Quantity: quantity})
	}

	s.carts[sessionID] = cart
	s.persist(ctx, sessionID, cart)
	result := cart.Clone()
	s.mu.Unlock()

	s.notifier.Success(sessionID, fmt.Sprintf("%s added to cart", product.Name))
	return result
}

// RemoveItem drops the line matching productID. Removing an absent
// product is a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) Cart {
	s.mu.Lock()
	cart := s.hydrate(ctx, sessionID)

	removed := false
	next := cart[:0]
	for _, line := range cart {
		if line.Product.ID == productID {
			removed = true
			continue
		}
		next = append(next, line)
	}

	s.carts[sessionID] = next
	if removed {
		s.persist(ctx, sessionID, next)
	}
	result := next.Clone()
	s.mu.Unlock()

	if removed {
		s.notifier.Info(sessionID, "Item removed from cart")
	}
	return result
}

// SetQuantity replaces the quantity of an existing line. A quantity of
// zero or below behaves exactly like RemoveItem. Setting a quantity for
// a product not in the cart is a no-op: no product payload is available
// here to construct a new line from.
func (s *Store) SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) Cart {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.hydrate(ctx, sessionID)

	for i := range cart {
		if cart[i].Product.ID == productID {
			cart[i].Quantity = quantity
			s.carts[sessionID] = cart
			s.persist(ctx, sessionID, cart)
			break
		}
	}

	return cart.Clone()
}

// Clear empties the session's cart.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	s.carts[sessionID] = Cart{}
	if err := s.persistence.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to delete persisted cart",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	s.mu.Unlock()

	s.notifier.Info(sessionID, "Cart cleared")
}

// Total computes the session cart's total price. No side effects beyond
// hydration.
func (s *Store) Total(ctx context.Context, sessionID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrate(ctx, sessionID).Total()
}

// hydrate returns the in-memory cart for the session, loading it from
// persistence on first access. Callers must hold s.mu.
func (s *Store) hydrate(ctx context.Context, sessionID string) Cart {
	if cart, ok := s.carts[sessionID]; ok {
		return cart
	}

	cart, err := s.persistence.Load(ctx, sessionID)
	if err != nil {
		if err != ErrNoSavedCart {
			// Fails soft: a corrupt or unreachable saved cart means
			// starting empty, never a failed request.
			s.logger.Warn("Failed to load persisted cart, starting empty",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
		cart = Cart{}
	}

	s.carts[sessionID] = cart
	return cart
}

// persist writes the cart store-and-forget. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context, sessionID string, cart Cart) {
	if err := s.persistence.Save(ctx, sessionID, cart); err != nil {
		s.logger.Warn("Failed to persist cart",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
