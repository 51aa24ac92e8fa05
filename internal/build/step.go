package build

import (
	"context"
	"fmt"
	"log/slog"
)

// A single named unit of work within a build stage.
//
// Steps are executed strictly in declaration order and the first failure
// aborts the whole build. There are no retries: a failed build produces no
// usable image.
type step struct {
	name string
	run  func(context.Context) error
}

// Executes a list of steps in order, failing fast on the first error.
//
// The returned error names the failing step and carries the step's native
// error text so the invoking build tool can surface it unchanged.
func runSteps(ctx context.Context, steps []step) error {
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: step %d (%s): %w", ErrBuild, i+1, s.name, err)
		}

		slog.Debug("step", "index", i+1, "name", s.name)

		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%w: step %d (%s): %w", ErrBuild, i+1, s.name, err)
		}
	}
	return nil
}
