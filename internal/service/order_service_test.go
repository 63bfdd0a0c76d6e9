package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopverse/internal/cart"
	"shopverse/internal/domain"
	"shopverse/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type mockOrderRepository struct {
	orders    map[uuid.UUID]*domain.Order
	createErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[uuid.UUID]*domain.Order),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}
	return result, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	result := make([]*domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		result = append(result, order)
	}
	return result, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

type silentNotifier struct{}

func (silentNotifier) Success(sessionID, message string) {}
func (silentNotifier) Info(sessionID, message string)    {}

func newTestCartStore(t *testing.T) *cart.Store {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = redisClient.Close() })

	return cart.NewStore(cart.NewRedisPersistence(redisClient, time.Hour), silentNotifier{}, zap.NewNop())
}

func TestCheckoutConvertsCartToOrder(t *testing.T) {
	orderRepo := newMockOrderRepository()
	cartStore := newTestCartStore(t)
	service := NewOrderService(orderRepo, cartStore)
	ctx := context.Background()

	userID := uuid.New()
	sessionID := "session-1"

	lamp := domain.Product{ID: uuid.New(), Name: "Lamp", Price: 30}
	mug := domain.Product{ID: uuid.New(), Name: "Mug", Price: 12.5}
	cartStore.AddItem(ctx, sessionID, lamp, 2)
	cartStore.AddItem(ctx, sessionID, mug, 1)

	order, err := service.Checkout(ctx, userID, sessionID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if order.UserID != userID {
		t.Errorf("order not attributed to the user")
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected pending status, got %q", order.Status)
	}
	if want := 2*30.0 + 12.5; order.Total != want {
		t.Errorf("order total = %f, want %f", order.Total, want)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if order.Items[0].ProductID != lamp.ID || order.Items[0].Quantity != 2 || order.Items[0].UnitPrice != 30 {
		t.Errorf("first item does not match cart line: %+v", order.Items[0])
	}
	if order.Items[1].ProductName != "Mug" {
		t.Errorf("items must snapshot the product name, got %q", order.Items[1].ProductName)
	}

	// Cart is cleared once the order is stored
	if remaining := cartStore.Get(ctx, sessionID); len(remaining) != 0 {
		t.Errorf("cart should be empty after checkout, got %d lines", len(remaining))
	}

	if _, err := orderRepo.FindByID(ctx, order.ID); err != nil {
		t.Errorf("order not persisted: %v", err)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	service := NewOrderService(newMockOrderRepository(), newTestCartStore(t))

	_, err := service.Checkout(context.Background(), uuid.New(), "empty-session")
	if err != ErrEmptyCart {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutKeepsCartOnFailure(t *testing.T) {
	orderRepo := newMockOrderRepository()
	orderRepo.createErr = errors.New("connection refused")
	cartStore := newTestCartStore(t)
	service := NewOrderService(orderRepo, cartStore)
	ctx := context.Background()

	sessionID := "session-1"
	cartStore.AddItem(ctx, sessionID, domain.Product{ID: uuid.New(), Name: "Lamp", Price: 30}, 1)

	if _, err := service.Checkout(ctx, uuid.New(), sessionID); err == nil {
		t.Fatal("expected checkout to fail")
	}

	if remaining := cartStore.Get(ctx, sessionID); len(remaining) != 1 {
		t.Errorf("cart must survive a failed checkout for a retry, got %d lines", len(remaining))
	}
}

func TestGetOrderOwnership(t *testing.T) {
	orderRepo := newMockOrderRepository()
	cartStore := newTestCartStore(t)
	service := NewOrderService(orderRepo, cartStore)
	ctx := context.Background()

	owner := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}
	stranger := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

	cartStore.AddItem(ctx, "s1", domain.Product{ID: uuid.New(), Name: "Lamp", Price: 30}, 1)
	order, err := service.Checkout(ctx, owner.ID, "s1")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if _, err := service.GetOrder(ctx, owner, order.ID); err != nil {
		t.Errorf("owner should see own order, got %v", err)
	}
	if _, err := service.GetOrder(ctx, stranger, order.ID); err != ErrNotOrderOwner {
		t.Errorf("stranger should get ErrNotOrderOwner, got %v", err)
	}
	if _, err := service.GetOrder(ctx, admin, order.ID); err != nil {
		t.Errorf("admin should see any order, got %v", err)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	orderRepo := newMockOrderRepository()
	cartStore := newTestCartStore(t)
	service := NewOrderService(orderRepo, cartStore)
	ctx := context.Background()

	cartStore.AddItem(ctx, "s1", domain.Product{ID: uuid.New(), Name: "Lamp", Price: 30}, 1)
	order, err := service.Checkout(ctx, uuid.New(), "s1")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	updated, err := service.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Errorf("status not updated, got %q", updated.Status)
	}

	if _, err := service.UpdateOrderStatus(ctx, order.ID, "teleported"); err == nil {
		t.Error("unknown status must be rejected")
	}

	if _, err := service.UpdateOrderStatus(ctx, uuid.New(), domain.OrderStatusShipped); err != repository.ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}
