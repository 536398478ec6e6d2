package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/domain/queue"
	"tillpoint/pkg/refgen"
)

func TestGet_SameHandlePerSession(t *testing.T) {
	r := NewRegistry(refgen.New())

	a := r.Get("session-1")
	b := r.Get("session-1")
	c := r.Get("session-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestClose_DropsWorkspace(t *testing.T) {
	r := NewRegistry(refgen.New())

	first := r.Get("session-1")
	var firstNumber string
	require.NoError(t, first.Do(func(ws *queue.Workspace) error {
		firstNumber = ws.Active().Number
		return nil
	}))

	r.Close("session-1")
	assert.Equal(t, 0, r.Len())

	// Reopening the session yields a brand-new workspace.
	second := r.Get("session-1")
	require.NoError(t, second.Do(func(ws *queue.Workspace) error {
		assert.NotEqual(t, firstNumber, ws.Active().Number)
		return nil
	}))
}

func TestGet_ConcurrentFirstUse(t *testing.T) {
	r := NewRegistry(refgen.New())

	var wg sync.WaitGroup
	handles := make([]*Handle, 16)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = r.Get("session-1")
		}(i)
	}
	wg.Wait()

	for _, h := range handles[1:] {
		assert.Same(t, handles[0], h)
	}
	assert.Equal(t, 1, r.Len())
}
