package fallback

import (
	"context"
	"fmt"
	"time"
)

// Func 受 context 控制的单次外部调用
type Func[T any] func(ctx context.Context) (T, error)

// Do 在限定超时内执行主调用，失败后转入兜底调用。
// 主调用和兜底调用各自使用独立的超时，外层 ctx 取消时立即放弃。
func Do[T any](ctx context.Context, timeout time.Duration, primary, fallback Func[T]) (T, error) {
	result, primaryErr := runWithTimeout(ctx, timeout, primary)
	if primaryErr == nil {
		return result, nil
	}

	if fallback == nil {
		return result, primaryErr
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	result, fallbackErr := runWithTimeout(ctx, timeout, fallback)
	if fallbackErr != nil {
		var zero T
		return zero, fmt.Errorf("fallback failed: %w (primary: %v)", fallbackErr, primaryErr)
	}

	return result, nil
}

// runWithTimeout 执行单次调用
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, fn Func[T]) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}
