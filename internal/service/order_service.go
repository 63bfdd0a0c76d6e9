package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopverse/internal/cart"
	"shopverse/internal/domain"
	"shopverse/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNotOrderOwner = errors.New("order belongs to another user")
)

// OrderService defines the interface for checkout and order business logic
type OrderService interface {
	// Checkout converts the session's cart into a persisted order and
	// clears the cart once the order is safely stored.
	Checkout(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Order, error)
	GetOrder(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartStore *cart.Store
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, cartStore *cart.Store) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartStore: cartStore,
	}
}

// Checkout snapshots the cart into order rows in one transaction. The
// cart is cleared only after the order commit succeeds, so a failed
// write leaves the cart intact for a retry.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Order, error) {
	lines := s.cartStore.Get(ctx, sessionID)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		Total:     lines.Total(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.cartStore.Clear(ctx, sessionID)

	return order, nil
}

// GetOrder retrieves an order. Customers only see their own orders;
// admins see all.
func (s *orderService) GetOrder(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && order.UserID != actor.ID {
		return nil, ErrNotOrderOwner
	}

	return order, nil
}

// ListUserOrders retrieves the user's orders, newest first
func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAllOrders retrieves every order for the admin dashboard
func (s *orderService) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to a new status and returns the
// updated order
func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown order status %q", status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, id)
}
