package cart

import (
	"context"
	"testing"
	"time"

	"shopverse/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	successes []string
	infos     []string
}

func (n *recordingNotifier) Success(sessionID, message string) {
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Info(sessionID, message string) {
	n.infos = append(n.infos, message)
}

func newTestStore(t *testing.T) (*Store, *recordingNotifier, *miniredis.Miniredis) {
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

	notifier := &recordingNotifier{}
	logger := zap.NewNop()
	store := NewStore(NewRedisPersistence(redisClient, time.Hour), notifier, logger)

	return store, notifier, mr
}

func testProduct(name string, price float64) domain.Product {
	return domain.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: price,
	}
}

func TestStoreAddItemMergesSameProduct(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)

	store.AddItem(ctx, "s1", lamp, 2)
	cart := store.AddItem(ctx, "s1", lamp, 3)

	if len(cart) != 1 {
		t.Fatalf("expected one line after merging, got %d", len(cart))
	}
	if cart[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", cart[0].Quantity)
	}
	if len(notifier.successes) != 2 {
		t.Errorf("expected a success notification per add, got %d", len(notifier.successes))
	}
	if notifier.successes[0] != "Lamp added to cart" {
		t.Errorf("unexpected notification message: %q", notifier.successes[0])
	}
}

func TestStoreAddItemAppendsDistinctProducts(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)
	mug := testProduct("Mug", 12.5)

	store.AddItem(ctx, "s1", lamp, 1)
	cart := store.AddItem(ctx, "s1", mug, 2)

	if len(cart) != 2 {
		t.Fatalf("expected two lines, got %d", len(cart))
	}
	// Insertion order is preserved
	if cart[0].Product.Name != "Lamp" || cart[1].Product.Name != "Mug" {
		t.Errorf("unexpected line order: %s, %s", cart[0].Product.Name, cart[1].Product.Name)
	}
}

func TestStoreAddItemRejectsNonPositiveQuantity(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)

	for _, qty := range []int{0, -1, -100} {
		cart := store.AddItem(ctx, "s1", lamp, qty)
		if len(cart) != 0 {
			t.Errorf("AddItem with quantity %d should leave the cart empty, got %d lines", qty, len(cart))
		}
	}
	if len(notifier.successes) != 0 {
		t.Errorf("rejected adds must not notify, got %d notifications", len(notifier.successes))
	}
}

func TestStoreRemoveItem(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)
	mug := testProduct("Mug", 12.5)

	store.AddItem(ctx, "s1", lamp, 1)
	store.AddItem(ctx, "s1", mug, 2)

	cart := store.RemoveItem(ctx, "s1", lamp.ID)
	if len(cart) != 1 {
		t.Fatalf("expected one remaining line, got %d", len(cart))
	}
	if cart[0].Product.ID != mug.ID {
		t.Errorf("wrong line removed")
	}
	if len(notifier.infos) != 1 || notifier.infos[0] != "Item removed from cart" {
		t.Errorf("expected a removal notification, got %v", notifier.infos)
	}
}

func TestStoreRemoveAbsentProductIsSilentNoOp(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	store.AddItem(ctx, "s1", testProduct("Lamp", 30), 1)
	before := len(notifier.infos)

	cart := store.RemoveItem(ctx, "s1", uuid.New())
	if len(cart) != 1 {
		t.Errorf("removing an absent product must not change the cart")
	}
	if len(notifier.infos) != before {
		t.Errorf("removing an absent product must not notify")
	}
}

func TestStoreSetQuantity(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)
	mug := testProduct("Mug", 12.5)

	store.AddItem(ctx, "s1", lamp, 1)
	store.AddItem(ctx, "s1", mug, 1)

	cart := store.SetQuantity(ctx, "s1", lamp.ID, 7)
	if cart[0].Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", cart[0].Quantity)
	}
	// Position is retained on update
	if cart[0].Product.ID != lamp.ID {
		t.Errorf("quantity update must keep the line's position")
	}
}

func TestStoreSetQuantityZeroRemovesLine(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)
	store.AddItem(ctx, "s1", lamp, 3)

	for _, qty := range []int{0, -2} {
		store.AddItem(ctx, "s1", lamp, 1)
		cart := store.SetQuantity(ctx, "s1", lamp.ID, qty)
		if len(cart) != 0 {
			t.Errorf("SetQuantity(%d) should remove the line, got %d lines", qty, len(cart))
		}
	}
	if len(notifier.infos) == 0 {
		t.Errorf("removal via SetQuantity should notify like RemoveItem")
	}
}

func TestStoreSetQuantityUnknownProductIsNoOp(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	store.AddItem(ctx, "s1", testProduct("Lamp", 30), 1)

	cart := store.SetQuantity(ctx, "s1", uuid.New(), 5)
	if len(cart) != 1 || cart[0].Quantity != 1 {
		t.Errorf("setting quantity for an absent product must not change the cart")
	}
}

func TestStoreClear(t *testing.T) {
	store, notifier, _ := newTestStore(t)
	ctx := context.Background()

	store.AddItem(ctx, "s1", testProduct("Lamp", 30), 1)
	store.Clear(ctx, "s1")

	if cart := store.Get(ctx, "s1"); len(cart) != 0 {
		t.Errorf("expected empty cart after Clear, got %d lines", len(cart))
	}
	if len(notifier.infos) != 1 || notifier.infos[0] != "Cart cleared" {
		t.Errorf("expected a clear notification, got %v", notifier.infos)
	}
}

func TestStoreTotal(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	store.AddItem(ctx, "s1", testProduct("Lamp", 30), 2)
	store.AddItem(ctx, "s1", testProduct("Mug", 12.5), 3)

	want := 2*30.0 + 3*12.5
	if got := store.Total(ctx, "s1"); got != want {
		t.Errorf("Total() = %f, want %f", got, want)
	}

	if got := store.Total(ctx, "empty-session"); got != 0 {
		t.Errorf("Total() for empty cart = %f, want 0", got)
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	store.AddItem(ctx, "s1", testProduct("Lamp", 30), 1)
	store.AddItem(ctx, "s2", testProduct("Mug", 12.5), 2)

	if cart := store.Get(ctx, "s1"); len(cart) != 1 || cart[0].Product.Name != "Lamp" {
		t.Errorf("session s1 sees the wrong cart: %v", cart)
	}
	if cart := store.Get(ctx, "s2"); len(cart) != 1 || cart[0].Product.Name != "Mug" {
		t.Errorf("session s2 sees the wrong cart: %v", cart)
	}
}

func TestStoreHydratesFromPersistence(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	defer redisClient.Close()

	persistence := NewRedisPersistence(redisClient, time.Hour)
	logger := zap.NewNop()
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)

	// One store writes the cart
	first := NewStore(persistence, &recordingNotifier{}, logger)
	first.AddItem(ctx, "s1", lamp, 2)

	// A fresh store, as after a restart, hydrates from the same key
	second := NewStore(persistence, &recordingNotifier{}, logger)
	cart := second.Get(ctx, "s1")

	if len(cart) != 1 {
		t.Fatalf("expected hydrated cart with one line, got %d", len(cart))
	}
	if cart[0].Product.ID != lamp.ID || cart[0].Quantity != 2 {
		t.Errorf("hydrated line does not match persisted one: %+v", cart[0])
	}
}

func TestStoreCorruptPersistedCartStartsEmpty(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	mr.Set("cart:s1", "{not json")

	cart := store.Get(ctx, "s1")
	if len(cart) != 0 {
		t.Errorf("corrupt saved cart should hydrate as empty, got %d lines", len(cart))
	}

	// The session still works after the failed hydration
	result := store.AddItem(ctx, "s1", testProduct("Lamp", 30), 1)
	if len(result) != 1 {
		t.Errorf("cart should accept items after failed hydration")
	}
}

func TestStoreSurvivesPersistenceOutage(t *testing.T) {
	store, notifier, mr := newTestStore(t)
	ctx := context.Background()

	store.AddItem(ctx, "s1", testProduct("Lamp", 30), 1)

	// Mutations keep working against the in-memory cart while redis is down
	mr.Close()

	cart := store.AddItem(ctx, "s1", testProduct("Mug", 12.5), 2)
	if len(cart) != 2 {
		t.Errorf("in-memory cart should remain authoritative during an outage, got %d lines", len(cart))
	}
	if len(notifier.successes) != 2 {
		t.Errorf("mutations during an outage still notify")
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	lamp := testProduct("Lamp", 30)
	store.AddItem(ctx, "s1", lamp, 1)

	cart := store.Get(ctx, "s1")
	cart[0].Quantity = 99

	if fresh := store.Get(ctx, "s1"); fresh[0].Quantity != 1 {
		t.Errorf("mutating a returned cart must not affect the store")
	}
}

func TestRedisPersistenceRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	defer redisClient.Close()

	persistence := NewRedisPersistence(redisClient, time.Hour)
	ctx := context.Background()

	if _, err := persistence.Load(ctx, "missing"); err != ErrNoSavedCart {
		t.Errorf("expected ErrNoSavedCart for a missing key, got %v", err)
	}

	cart := Cart{
		{Product: testProduct("Lamp", 30), Quantity: 2},
		{Product: testProduct("Mug", 12.5), Quantity: 1},
	}
	if err := persistence.Save(ctx, "s1", cart); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := persistence.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Product.ID != cart[0].Product.ID || loaded[1].Quantity != 1 {
		t.Errorf("loaded cart does not match saved one: %+v", loaded)
	}

	if err := persistence.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := persistence.Load(ctx, "s1"); err != ErrNoSavedCart {
		t.Errorf("expected ErrNoSavedCart after delete, got %v", err)
	}
}

// The cart total always equals the sum over its lines, whatever sequence
// of adds produced it.
func TestProperty_CartTotalMatchesLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total equals sum of price times quantity", prop.ForAll(
		func(prices []float64, quantities []int) bool {
			store, _, _ := newTestStore(t)
			ctx := context.Background()

			n := len(prices)
			if len(quantities) < n {
				n = len(quantities)
			}

			var want float64
			for i := 0; i < n; i++ {
				qty := quantities[i]%5 + 1
				p := testProduct("p", prices[i])
				store.AddItem(ctx, "s1", p, qty)
				want += p.Price * float64(qty)
			}

			got := store.Total(ctx, "s1")
			diff := got - want
			if diff < -1e-9 || diff > 1e-9 {
				t.Logf("FAIL: Total() = %f, want %f", got, want)
				return false
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0.01, 500)),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
