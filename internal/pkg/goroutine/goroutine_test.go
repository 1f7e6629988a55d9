package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManager_GoAndWait(t *testing.T) {
	m := NewManager(4)
	var ran atomic.Int32
	errBoom := errors.New("boom")

	for i := range 3 {
		ok := m.Go(context.Background(), func(context.Context) error {
			ran.Add(1)
			if i == 1 {
				return errBoom
			}
			return nil
		})
		assert.True(t, ok)
	}

	err := m.Wait()
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int32(3), ran.Load())

	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)
	assert.True(t, m.Go(context.Background(), func(context.Context) error { panic("boom") }))
	assert.NoError(t, m.Wait())
}

func TestManager_LimitReached(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	assert.True(t, m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

	close(release)
	assert.NoError(t, m.Wait())
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
