package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/orders"
	"storefront/internal/stores/kv"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cart    *cart.Conf
	ledger  *orders.Conf
	store   kv.Store
	manager *Manager
}

// newFixture wires a manager over a feed of three products: id 1 at $20,
// id 2 at $5, id 3 at $8.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"products": [
			{"id": 1, "title": "Mug", "category": "home", "price": 20.0, "rating": {"rate": 4.1, "count": 11}},
			{"id": 2, "title": "Coaster", "category": "home", "price": 5.0, "rating": {"rate": 4.3, "count": 13}},
			{"id": 3, "title": "Tray", "category": "home", "price": 8.0, "rating": {"rate": 4.6, "count": 17}}
		]}`)
	}))
	t.Cleanup(srv.Close)

	cat := catalog.NewConf()
	require.NoError(t, cat.Load(ctx, srv.URL))

	mr := miniredis.RunT(t)
	store, err := kv.NewRedis(ctx, mr.Addr())
	require.NoError(t, err)

	cartConf, err := cart.NewConf(ctx, store, cat)
	require.NoError(t, err)
	ledger, err := orders.NewConf(ctx, store)
	require.NoError(t, err)

	return &fixture{
		cart:    cartConf,
		ledger:  ledger,
		store:   store,
		manager: NewManager(cat, cartConf, ledger, store, nil),
	}
}

func TestStartFromCartRequiresSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.StartFromCart(ctx)
	assert.ErrorIs(t, err, ErrEmptySelection)

	// A cart with only deselected items still fails.
	_, err = f.cart.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.cart.ToggleSelected(ctx, 1))
	_, err = f.manager.StartFromCart(ctx)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestStartFromCartSnapshotsSelectedItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, 1, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, 2, 1)
	require.NoError(t, err)
	require.NoError(t, f.cart.ToggleSelected(ctx, 2))

	session, err := f.manager.StartFromCart(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateReviewing, session.State)
	assert.False(t, session.DirectBuy)
	require.Len(t, session.Items, 1)
	assert.Equal(t, 1, session.Items[0].ID)
	assert.Equal(t, "standard", session.Delivery.ID)
	assert.Equal(t, PaymentTransfer, session.PaymentMethod)

	// Later cart changes do not leak into the snapshot.
	_, err = f.cart.AddItem(ctx, 3, 1)
	require.NoError(t, err)
	got, err := f.manager.Get(session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestStartDirectBuyClampsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.manager.StartDirectBuy(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Items[0].Quantity)

	session, err = f.manager.StartDirectBuy(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 99, session.Items[0].Quantity)

	_, err = f.manager.StartDirectBuy(ctx, 999, 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestQuantityStepperClamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.manager.StartDirectBuy(ctx, 1, 1)
	require.NoError(t, err)

	// Decrement below 1 is ignored.
	session, err = f.manager.SetItemQuantity(session.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Items[0].Quantity)

	session, err = f.manager.SetItemQuantity(session.ID, 1, 99)
	require.NoError(t, err)
	assert.Equal(t, 99, session.Items[0].Quantity)

	// Increment above 99 is ignored.
	session, err = f.manager.SetItemQuantity(session.ID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 99, session.Items[0].Quantity)
}

func TestSessionTotalsFollowDeliveryAndQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.manager.StartDirectBuy(ctx, 1, 2) // $20 x 2
	require.NoError(t, err)
	assert.Equal(t, int64(4000+599), session.Totals().Total)

	session, err = f.manager.SetDelivery(session.ID, "express")
	require.NoError(t, err)
	assert.Equal(t, int64(4000+1299), session.Totals().Total)

	session, err = f.manager.SetItemQuantity(session.ID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6000+1299), session.Totals().Total)

	_, err = f.manager.SetDelivery(session.ID, "teleport")
	assert.ErrorIs(t, err, ErrUnknownDelivery)
	_, err = f.manager.SetPayment(session.ID, "barter")
	assert.ErrorIs(t, err, ErrUnknownPayment)
}

func TestConfirmRequiresAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.manager.StartDirectBuy(ctx, 1, 1)
	require.NoError(t, err)

	_, err = f.manager.Confirm(ctx, session.ID, "   ", "")
	assert.ErrorIs(t, err, ErrAddressRequired)

	// The failed transition leaves the session reviewing and usable.
	got, err := f.manager.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateReviewing, got.State)
	assert.Empty(t, f.ledger.List())

	_, err = f.manager.Confirm(ctx, session.ID, "123 Main St", "")
	require.NoError(t, err)
	require.Len(t, f.ledger.List(), 1)
}

// The worked scenario: cart holds id 1 ($20 x1, selected) and id 2 ($5 x3,
// deselected); standard delivery. Confirming records a $25.99 order and
// leaves only id 2 in the cart.
func TestCartCheckoutScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, 2, 3)
	require.NoError(t, err)
	require.NoError(t, f.cart.ToggleSelected(ctx, 2))

	session, err := f.manager.StartFromCart(ctx)
	require.NoError(t, err)

	totals := session.Totals()
	assert.Equal(t, int64(2000), totals.Subtotal)
	assert.Equal(t, int64(2599), totals.Total)

	order, err := f.manager.Confirm(ctx, session.ID, "123 Main St", "leave at door")
	require.NoError(t, err)

	assert.Equal(t, int64(2000), order.Subtotal)
	assert.Equal(t, int64(2599), order.Total)
	assert.Equal(t, "standard", order.DeliveryMethod)
	assert.Equal(t, PaymentTransfer, order.PaymentMethod)
	assert.Equal(t, "123 Main St", order.ShippingAddress)
	assert.Equal(t, "leave at door", order.Notes)
	assert.Equal(t, orders.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].ProductID)

	ledger := f.ledger.List()
	require.Len(t, ledger, 1)
	assert.Equal(t, int64(2599), ledger[0].Total)

	// Only the purchased (selected) line left the cart.
	items := f.cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)

	// The session is gone once completed.
	_, err = f.manager.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDirectBuyConfirmLeavesCartUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, 2, 2)
	require.NoError(t, err)

	session, err := f.manager.StartDirectBuy(ctx, 1, 1)
	require.NoError(t, err)
	_, err = f.manager.Confirm(ctx, session.ID, "123 Main St", "")
	require.NoError(t, err)

	require.Len(t, f.ledger.List(), 1)
	items := f.cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestConfirmUsesDeliveryAndPaymentChoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.manager.StartDirectBuy(ctx, 2, 1) // $5
	require.NoError(t, err)
	_, err = f.manager.SetDelivery(session.ID, "next-day")
	require.NoError(t, err)
	_, err = f.manager.SetPayment(session.ID, PaymentCOD)
	require.NoError(t, err)

	order, err := f.manager.Confirm(ctx, session.ID, "42 Side St", "")
	require.NoError(t, err)

	assert.Equal(t, "next-day", order.DeliveryMethod)
	assert.Equal(t, int64(1999), order.DeliveryPrice)
	assert.Equal(t, PaymentCOD, order.PaymentMethod)
	assert.Equal(t, int64(500+1999), order.Total)
}

func TestCancelDiscardsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	session, err := f.manager.StartFromCart(ctx)
	require.NoError(t, err)

	assert.True(t, f.manager.Cancel(session.ID))
	assert.False(t, f.manager.Cancel(session.ID))

	_, err = f.manager.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, f.ledger.List())
	assert.Len(t, f.cart.Items(), 1)
}

func TestSessionPrepopulatesSavedAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, kv.KeyUserAddress, []byte("7 Saved Lane")))

	session, err := f.manager.StartDirectBuy(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "7 Saved Lane", session.ShippingAddress)

	// Confirm with no override uses the prepopulated address.
	order, err := f.manager.Confirm(ctx, session.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "7 Saved Lane", order.ShippingAddress)
}
