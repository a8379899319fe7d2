package service

import (
	"testing"

	"github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/stretchr/testify/require"
)

func TestWaiterRegistry_ResolveDelivers(t *testing.T) {
	reg := newWaiterRegistry()

	ch := reg.Register("corr-1")
	require.True(t, reg.Resolve("corr-1", domain.OrderPayload{ID: 42}))

	payload := <-ch
	require.Equal(t, int64(42), payload.ID)
	require.Equal(t, 0, reg.Len())
}

func TestWaiterRegistry_ResolveUnknownID(t *testing.T) {
	reg := newWaiterRegistry()

	require.False(t, reg.Resolve("never-registered", domain.OrderPayload{}))
}

func TestWaiterRegistry_RemoveDropsWaiter(t *testing.T) {
	reg := newWaiterRegistry()

	reg.Register("corr-1")
	reg.Remove("corr-1")

	require.Equal(t, 0, reg.Len())
	require.False(t, reg.Resolve("corr-1", domain.OrderPayload{}))
}

func TestWaiterRegistry_ResolveDoesNotCrossTalk(t *testing.T) {
	reg := newWaiterRegistry()

	chA := reg.Register("corr-a")
	chB := reg.Register("corr-b")

	require.True(t, reg.Resolve("corr-b", domain.OrderPayload{ID: 2}))

	select {
	case payload := <-chB:
		require.Equal(t, int64(2), payload.ID)
	default:
		t.Fatal("expected result on corr-b channel")
	}

	select {
	case <-chA:
		t.Fatal("corr-a must not receive corr-b's result")
	default:
	}
}
