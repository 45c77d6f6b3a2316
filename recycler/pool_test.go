package recycler_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archscan/classpathfs/classpatherr"
	"github.com/archscan/classpathfs/recycler"
)

func TestAcquireReusesReleasedInstance(t *testing.T) {
	var constructed atomic.Int32
	p := recycler.New(func() (int, error) {
		return int(constructed.Add(1)), nil
	}, nil)

	v1, err := p.Acquire()
	require.NoError(t, err)
	p.Release(v1)

	v2, err := p.Acquire()
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int32(1), constructed.Load())
}

func TestAcquireAfterForceCloseFails(t *testing.T) {
	p := recycler.New(func() (int, error) { return 1, nil }, nil)
	p.ForceClose()

	_, err := p.Acquire()
	require.Error(t, err)
	assert.True(t, classpatherr.IsCode(err, classpatherr.CodeClosed))
}

func TestForceCloseDisposesPooledInstances(t *testing.T) {
	var disposed []int
	p := recycler.New(func() (int, error) { return 7, nil }, func(v int) {
		disposed = append(disposed, v)
	})

	v, _ := p.Acquire()
	p.Release(v)

	p.ForceClose()
	p.ForceClose() // idempotent

	assert.Equal(t, []int{7}, disposed)
}

func TestBorrowReleasesOnReturnedFunc(t *testing.T) {
	p := recycler.New(func() (int, error) { return 1, nil }, nil)

	v, release, err := p.Borrow()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	release()

	v2, _, err := p.Borrow()
	require.NoError(t, err)
	assert.Equal(t, v, v2)
}

func TestExceptionlessPoolReusesInstances(t *testing.T) {
	var constructed atomic.Int32
	p := recycler.NewExceptionless(func() int {
		return int(constructed.Add(1))
	}, nil)

	v1, release := p.Borrow()
	release()
	v2 := p.Acquire()

	assert.Equal(t, v1, v2)
	assert.Equal(t, int32(1), constructed.Load())
}
