package run

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGroupCancelsOnFirstExit(t *testing.T) {
	g := NewGroup(context.Background())
	g.Go(
		Func(func(ctx context.Context) error {
			return errors.New("boom")
		}),
		Func(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return errors.New("never canceled")
			}
		}),
	)
	err := g.Wait()
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	require.NotContains(t, err.Error(), "never canceled")
}

func TestGroupCleanShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGroup(ctx)
	g.Go(Func(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, g.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())

	errs.Add(nil, errors.New("a"))
	require.Equal(t, "a", errs.Aggregate().Error())

	errs.Add(errors.New("b"))
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())
}
