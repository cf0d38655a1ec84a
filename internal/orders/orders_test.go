package orders

import (
	"context"
	"testing"
	"time"

	"storefront/internal/stores/kv"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) kv.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := kv.NewRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	return store
}

func testOrder(total int64) Order {
	return Order{
		Items:           []Item{{ProductID: 1, Title: "Mouse", Price: total, Quantity: 1}},
		Subtotal:        total,
		DeliveryMethod:  "standard",
		DeliveryPrice:   599,
		PaymentMethod:   "transfer",
		ShippingAddress: "123 Main St",
		Total:           total + 599,
	}
}

func TestRecordAssignsIDTimestampAndStatus(t *testing.T) {
	ctx := context.Background()
	c, err := NewConf(ctx, newTestStore(t))
	require.NoError(t, err)
	c.now = func() time.Time { return time.UnixMilli(1700000123456) }

	order, err := c.Record(ctx, testOrder(2000))
	require.NoError(t, err)

	assert.Equal(t, "ORD-123456", order.ID)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, time.UnixMilli(1700000123456).UTC(), order.CreatedAt)

	orders := c.List()
	require.Len(t, orders, 1)
	assert.Equal(t, order, orders[0])
}

func TestRecordDisambiguatesCollidingIDs(t *testing.T) {
	ctx := context.Background()
	c, err := NewConf(ctx, newTestStore(t))
	require.NoError(t, err)
	c.now = func() time.Time { return time.UnixMilli(1700000123456) }

	first, err := c.Record(ctx, testOrder(1000))
	require.NoError(t, err)
	second, err := c.Record(ctx, testOrder(2000))
	require.NoError(t, err)

	assert.Equal(t, "ORD-123456", first.ID)
	assert.Equal(t, "ORD-123457", second.ID)
}

func TestLedgerAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	c, err := NewConf(ctx, newTestStore(t))
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		_, err := c.Record(ctx, testOrder(i*100))
		require.NoError(t, err)
	}

	orders := c.List()
	require.Len(t, orders, 3)
	assert.Equal(t, int64(100), orders[0].Subtotal)
	assert.Equal(t, int64(300), orders[2].Subtotal)
}

func TestLedgerPersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	c, err := NewConf(ctx, store)
	require.NoError(t, err)
	recorded, err := c.Record(ctx, testOrder(2000))
	require.NoError(t, err)

	reloaded, err := NewConf(ctx, store)
	require.NoError(t, err)
	orders := reloaded.List()
	require.Len(t, orders, 1)
	assert.Equal(t, recorded.ID, orders[0].ID)
	assert.Equal(t, recorded.Total, orders[0].Total)
}

func TestMalformedPersistedLedgerStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, kv.KeyOrders, []byte(`not json`)))

	c, err := NewConf(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, c.List())
}
