package cache

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	c := New[int]()
	var calls int
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.Get("a", compute)
	require.Nil(t, err)
	assert.Equal(t, 42, v)

	v, err = c.Get("a", compute)
	require.Nil(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestGetErrorNotCached(t *testing.T) {
	c := New[string]()
	errBoom := errors.New("boom")

	_, err := c.Get("a", func() (string, error) { return "", errBoom })
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, c.Len())

	v, err := c.Get("a", func() (string, error) { return "ok", nil })
	require.Nil(t, err)
	assert.Equal(t, "ok", v)
}

func TestGetConcurrentSingleComputation(t *testing.T) {
	c := New[int]()
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get("k", compute)
			assert.Nil(t, err)
			results[i] = v
		}()
	}
	for calls.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}

func TestSetDeleteClear(t *testing.T) {
	c := New[int]()
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	v, ok := c.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Delete("b"))
	assert.False(t, c.Delete("b"))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Lookup("a")
	assert.False(t, ok)
}
