package match

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/heromatch/dataset"
)

func TestLazy_BuildsOnce(t *testing.T) {
	ds := loadHeroes(t)
	var calls int32
	lazy := NewLazy(func(ctx context.Context) (*Service, error) {
		atomic.AddInt32(&calls, 1)
		return New(ds)
	})
	assert.False(t, lazy.Ready())
	lazy.Start(context.Background())

	var wg sync.WaitGroup
	services := make([]*Service, 16)
	for i := range services {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc, err := lazy.Wait(context.Background())
			assert.NoError(t, err)
			services[i] = svc
		}(i)
	}
	wg.Wait()
	for _, svc := range services {
		assert.Same(t, services[0], svc)
	}
	assert.True(t, lazy.Ready())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestLazy_PropagatesLoadError(t *testing.T) {
	lazy := NewLazy(func(ctx context.Context) (*Service, error) {
		ds, err := dataset.LoadCSVFile("testdata/missing.csv")
		if err != nil {
			return nil, err
		}
		return New(ds)
	})
	_, err := lazy.Wait(context.Background())
	var loadErr *dataset.LoadError
	require.True(t, errors.As(err, &loadErr))
	_, again := lazy.Wait(context.Background())
	assert.Equal(t, err, again)
}

func TestLazy_WaitCanceled(t *testing.T) {
	release := make(chan struct{})
	lazy := NewLazy(func(ctx context.Context) (*Service, error) {
		<-release
		return nil, errors.New("never used")
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := lazy.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, lazy.Ready())
	close(release)
}
