package safe

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/binfetch/pkg/utils/logging"
)

// Run executes handler synchronously and recovers from a panic raised by it.
//
// Behavior:
//   - Returns the handler's own error unchanged
//   - A recovered panic is logged with its stack and returned as an error
//   - The caller keeps going either way; nothing escapes as a panic
func Run(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			logging.From(ctx).Error("panic in handler",
				"recover", r,
				"stack", string(stack))
			err = goerr.New("panic recovered", goerr.V("recover", r))
		}
	}()

	return handler(ctx)
}
