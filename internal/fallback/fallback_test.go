package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoPrimarySucceeds(t *testing.T) {
	fallbackCalled := false

	result, err := Do(context.Background(), time.Second,
		func(ctx context.Context) (int, error) { return 42, nil },
		func(ctx context.Context) (int, error) {
			fallbackCalled = true
			return 0, nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.False(t, fallbackCalled)
}

func TestDoFallsBackOnPrimaryError(t *testing.T) {
	result, err := Do(context.Background(), time.Second,
		func(ctx context.Context) (string, error) { return "", errors.New("primary down") },
		func(ctx context.Context) (string, error) { return "backup", nil },
	)

	require.NoError(t, err)
	assert.Equal(t, "backup", result)
}

func TestDoBothFail(t *testing.T) {
	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("backup down")

	_, err := Do(context.Background(), time.Second,
		func(ctx context.Context) (int, error) { return 0, primaryErr },
		func(ctx context.Context) (int, error) { return 0, fallbackErr },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, fallbackErr)
	assert.Contains(t, err.Error(), "primary down")
}

func TestDoNilFallbackReturnsPrimaryError(t *testing.T) {
	primaryErr := errors.New("primary down")

	_, err := Do[int](context.Background(), time.Second,
		func(ctx context.Context) (int, error) { return 0, primaryErr },
		nil,
	)

	assert.ErrorIs(t, err, primaryErr)
}

func TestDoPrimaryTimeoutTriggersFallback(t *testing.T) {
	result, err := Do(context.Background(), 20*time.Millisecond,
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
		func(ctx context.Context) (int, error) { return 7, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, 7, result)
}

func TestDoCancelledContextSkipsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fallbackCalled := false

	_, err := Do(ctx, time.Second,
		func(ctx context.Context) (int, error) {
			cancel()
			return 0, errors.New("primary down")
		},
		func(ctx context.Context) (int, error) {
			fallbackCalled = true
			return 1, nil
		},
	)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fallbackCalled)
}
