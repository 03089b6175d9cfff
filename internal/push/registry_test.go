package push

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func channelIDs(chs []Channel) []string {
	out := make([]string, 0, len(chs))
	for _, ch := range chs {
		out = append(out, ch.ID())
	}
	return out
}

func TestRegistryChannelsForReturnsUnion(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	a, b, c := newFakeChannel("a"), newFakeChannel("b"), newFakeChannel("c")
	reg.Register("abc", a)
	reg.Register("abc", b)
	reg.Register("abc", c)
	reg.Register("other", newFakeChannel("d"))

	require.ElementsMatch(t, []string{"a", "b", "c"}, channelIDs(reg.ChannelsFor("abc")))
	require.Equal(t, 4, reg.Len())
	require.Equal(t, 2, reg.Clients())
}

func TestRegistryUnknownClientIsEmpty(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	chs := reg.ChannelsFor("missing")
	require.NotNil(t, chs)
	require.Empty(t, chs)
}

func TestRegistryRegisterIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	ch := newFakeChannel("a")
	reg.Register("abc", ch)
	reg.Register("abc", ch)
	reg.Register("abc", nil)

	require.Len(t, reg.ChannelsFor("abc"), 1)
}

func TestRegistryRemoveDropsEmptyClient(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	a, b := newFakeChannel("a"), newFakeChannel("b")
	reg.Register("abc", a)
	reg.Register("abc", b)

	require.True(t, reg.Remove("abc", a))
	require.False(t, reg.Remove("abc", a))
	require.Equal(t, []string{"b"}, channelIDs(reg.ChannelsFor("abc")))

	require.True(t, reg.Remove("abc", b))
	require.Equal(t, 0, reg.Clients())
	require.False(t, reg.Remove("abc", b))
	require.False(t, reg.Remove("abc", nil))
}

func TestRegistrySnapshotIsDetached(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	a := newFakeChannel("a")
	reg.Register("abc", a)
	snapshot := reg.ChannelsFor("abc")
	reg.Remove("abc", a)

	require.Len(t, snapshot, 1)
	require.Empty(t, reg.ChannelsFor("abc"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := ClientID(fmt.Sprintf("client-%d", w%4))
			for i := 0; i < perWorker; i++ {
				ch := newFakeChannel(fmt.Sprintf("%d-%d", w, i))
				reg.Register(id, ch)
				_ = reg.ChannelsFor(id)
				if i%2 == 0 {
					reg.Remove(id, ch)
				}
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, workers*perWorker/2, reg.Len())
	require.Equal(t, 4, reg.Clients())
}
