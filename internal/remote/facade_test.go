package remote

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/logger"
	"github.com/nkiryanov/ministore/internal/models"
)

// Connection which answers with the configured error
type fakeConn struct {
	Service
	err error
}

func (c *fakeConn) GetDetails(_ context.Context, number string) (models.Product, error) {
	if c.err != nil {
		return models.Product{}, c.err
	}
	return models.Product{Number: number}, nil
}

func (c *fakeConn) NextUnpacked(_ context.Context) (models.Order, bool, error) {
	return models.Order{Number: 3}, true, c.err
}

type fakeDialer struct {
	mu      sync.Mutex
	dials   atomic.Int32
	dialErr error
	conns   []*fakeConn
}

// Next connection answers with connErr
func (d *fakeDialer) setConnErr(connErr error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns = append(d.conns, &fakeConn{err: connErr})
}

func (d *fakeDialer) Dial(_ context.Context) (Service, error) {
	d.dials.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dialErr != nil {
		return nil, d.dialErr
	}
	if len(d.conns) == 0 {
		return &fakeConn{}, nil
	}
	conn := d.conns[0]
	d.conns = d.conns[1:]
	return conn, nil
}

func TestFacade(t *testing.T) {
	transportErr := apperrors.ErrCommunication

	t.Run("initially disconnected and dials lazily", func(t *testing.T) {
		d := &fakeDialer{}
		f := NewFacade(d, logger.NewNoOpLogger())

		require.Equal(t, Disconnected, f.State())
		require.Zero(t, d.dials.Load(), "must not dial before first call")

		p, err := f.GetDetails(t.Context(), "0001")

		require.NoError(t, err)
		require.Equal(t, "0001", p.Number)
		require.Equal(t, Connected, f.State())

		_, err = f.GetDetails(t.Context(), "0002")
		require.NoError(t, err)
		require.EqualValues(t, 1, d.dials.Load(), "connection must be reused")
	})

	t.Run("dial failure keeps disconnected", func(t *testing.T) {
		d := &fakeDialer{dialErr: errors.New("connection refused")}
		f := NewFacade(d, logger.NewNoOpLogger())

		_, err := f.GetDetails(t.Context(), "0001")

		require.ErrorIs(t, err, apperrors.ErrCommunication)
		require.Equal(t, Disconnected, f.State())

		d.mu.Lock()
		d.dialErr = nil
		d.mu.Unlock()

		_, err = f.GetDetails(t.Context(), "0001")
		require.NoError(t, err)
		require.EqualValues(t, 2, d.dials.Load())
	})

	t.Run("transport failure resets connection", func(t *testing.T) {
		d := &fakeDialer{}
		d.setConnErr(transportErr)
		f := NewFacade(d, logger.NewNoOpLogger())

		_, err := f.GetDetails(t.Context(), "0001")

		require.ErrorIs(t, err, apperrors.ErrCommunication)
		require.Equal(t, Disconnected, f.State())

		p, err := f.GetDetails(t.Context(), "0001")
		require.NoError(t, err, "next call must reconnect with a healthy connection")
		require.Equal(t, "0001", p.Number)
		require.EqualValues(t, 2, d.dials.Load())
		require.Equal(t, Connected, f.State())
	})

	t.Run("domain errors keep connection", func(t *testing.T) {
		domainErrors := []error{
			apperrors.ErrProductNotFound,
			apperrors.ErrProductAlreadyExists,
			apperrors.ErrOrderInvalidTransition,
			apperrors.ErrImageUnavailable,
			apperrors.ErrPersistence,
			ErrRejected,
		}

		for _, domainErr := range domainErrors {
			t.Run(domainErr.Error(), func(t *testing.T) {
				d := &fakeDialer{}
				d.setConnErr(domainErr)
				f := NewFacade(d, logger.NewNoOpLogger())

				_, err := f.GetDetails(t.Context(), "0001")

				require.ErrorIs(t, err, domainErr)
				require.NotErrorIs(t, err, apperrors.ErrCommunication)
				require.Equal(t, Connected, f.State())

				_, _ = f.GetDetails(t.Context(), "0001")
				require.EqualValues(t, 1, d.dials.Load())
			})
		}
	})

	t.Run("concurrent first calls dial once", func(t *testing.T) {
		d := &fakeDialer{}
		f := NewFacade(d, logger.NewNoOpLogger())

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = f.GetDetails(t.Context(), "0001")
			}()
		}
		wg.Wait()

		require.EqualValues(t, 1, d.dials.Load())
	})

	t.Run("stale failure does not drop newer connection", func(t *testing.T) {
		d := &fakeDialer{}
		f := NewFacade(d, logger.NewNoOpLogger())

		stale := &fakeConn{}
		_, err := f.GetDetails(t.Context(), "0001")
		require.NoError(t, err)

		f.reset(stale, transportErr)

		require.Equal(t, Connected, f.State(), "reset of a connection not in use must be ignored")
	})

	t.Run("multi value result", func(t *testing.T) {
		f := NewFacade(&fakeDialer{}, logger.NewNoOpLogger())

		o, ok, err := f.NextUnpacked(t.Context())

		require.NoError(t, err)
		require.True(t, ok)
		require.EqualValues(t, 3, o.Number)
	})
}
