package ring

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutAndPending(t *testing.T) {
	b := New(8)
	require.True(t, b.Empty())
	require.Equal(t, 7, b.Free())

	require.False(t, b.Put([]byte("abc")))
	require.Equal(t, 3, b.Len())
	run, next := b.Pending()
	require.Equal(t, []byte("abc"), run)
	require.Equal(t, 3, next)
	b.Commit(next)
	require.True(t, b.Empty())
}

func TestPendingSplitsOnWrap(t *testing.T) {
	b := New(8)
	b.Put([]byte("123456"))
	b.Commit(6)
	b.Put([]byte("abcd"))
	require.Equal(t, 2, b.WriteIndex())
	require.Equal(t, 4, b.Len())

	run, next := b.Pending()
	require.Equal(t, []byte("ab"), run)
	require.Equal(t, 0, next)
	b.Commit(next)

	run, next = b.Pending()
	require.Equal(t, []byte("cd"), run)
	require.Equal(t, 2, next)
	b.Commit(next)
	require.True(t, b.Empty())
}

func TestOverrunKeepsNewest(t *testing.T) {
	const n = 16
	var all []byte
	for size := 1; size < 3*n; size += 5 {
		b := New(n)
		all = all[:0]
		for i := 0; i < 7; i++ {
			chunk := bytes.Repeat([]byte{byte('a' + i)}, size)
			for j := range chunk {
				chunk[j] += byte(j % 3)
			}
			b.Put(chunk)
			all = append(all, chunk...)
			require.True(t, b.WriteIndex() >= 0 && b.WriteIndex() < n)
		}
		k := n - 1
		if len(all) < k {
			k = len(all)
		}
		require.Equal(t, all[len(all)-k:], b.Tail(k), "size=%d", size)
	}
}

func TestPutReportsOverrun(t *testing.T) {
	b := New(4)
	require.False(t, b.Put([]byte("abc")))
	require.True(t, b.Put([]byte("d")))
	require.True(t, New(4).Put([]byte("abcd")))
}

func TestPutLongerThanCapacity(t *testing.T) {
	b := New(4)
	b.Put([]byte("0123456789"))
	require.Equal(t, 2, b.WriteIndex())
	require.Equal(t, []byte("789"), b.Tail(3))
}

func TestPublishAndGet(t *testing.T) {
	b := New(4)
	_, ok := b.Get()
	require.False(t, ok)

	copy(b.Bytes(), "wxyz")
	b.Publish(3)
	for _, want := range []byte("wxy") {
		c, ok := b.Get()
		require.True(t, ok)
		require.Equal(t, want, c)
	}
	_, ok = b.Get()
	require.False(t, ok)

	// a full lap of the producer lands back on index 0
	b.Publish(4)
	c, ok := b.Get()
	require.True(t, ok)
	require.Equal(t, byte('z'), c)
	require.True(t, b.Empty())
}

func TestReset(t *testing.T) {
	b := New(4)
	b.Put([]byte("ab"))
	b.Commit(1)
	b.Reset()
	require.Equal(t, 0, b.ReadIndex())
	require.Equal(t, 0, b.WriteIndex())
}

func TestDistance(t *testing.T) {
	require.Equal(t, 0, Distance(3, 3, 8))
	require.Equal(t, 2, Distance(1, 3, 8))
	require.Equal(t, 6, Distance(3, 1, 8))
}

func TestNewPanicsOnTinyCapacity(t *testing.T) {
	require.Panics(t, func() { New(1) })
}
