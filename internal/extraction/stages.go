package extraction

import "context"

// Producer is a stage that may fail.
type Producer[T any] func(ctx context.Context) (T, error)

// Recovery is a stage that cannot fail. It receives the error of the stage it
// replaces.
type Recovery[T any] func(ctx context.Context, cause error) T

// Fallback composes primary with a recovery stage. The returned stage never
// fails: any error of primary is handed to fallback instead of the caller.
func Fallback[T any](primary Producer[T], fallback Recovery[T]) func(ctx context.Context) T {
	return func(ctx context.Context) T {
		out, err := primary(ctx)
		if err != nil {
			return fallback(ctx, err)
		}
		return out
	}
}
