package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case owner, ok := <-ch:
		require.True(t, ok)
		return owner
	case <-time.After(2 * time.Second):
		t.Fatal("no owner delivered")
	}
	return ""
}

func TestVariable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := NewVariable("priya")
	assert.Equal(t, "priya", v.Current())

	ch := v.Watch(ctx)
	assert.Equal(t, "priya", next(t, ch))

	v.Set("priya")
	v.Set("arjun")
	assert.Equal(t, "arjun", next(t, ch))
	assert.Equal(t, "arjun", v.Current())

	v.Set("")
	assert.Equal(t, "", next(t, ch))
}

func TestVariable_CoalescesChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := NewVariable("a")
	ch := v.Watch(ctx)
	assert.Equal(t, "a", next(t, ch))

	v.Set("b")
	v.Set("c")
	// The reader may see "b" first if it was already in flight.
	got := next(t, ch)
	if got == "b" {
		got = next(t, ch)
	}
	assert.Equal(t, "c", got)
}

func TestVariable_WatchCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := NewVariable("a")
	ch := v.Watch(ctx)
	next(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}
