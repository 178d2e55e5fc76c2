// Package pipeline executes a tool's pipes in sequence.
//
// Each tool runs in two stages:
//   - Validation stage: checks inputs and configuration, writes nothing
//   - Execution stage: produces and publishes artifacts
//
// Usage:
//
//	ctx := context.NewContext(context.Background(), cfg, logger)
//	if err := pipeline.Run(ctx, pipe.BundleStages); err != nil {
//	    // Handle error
//	}
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/pipe"
)

// Run executes the validation pipes, then the execution pipes.
// Nothing in the execution stage runs if validation fails.
func Run(ctx *context.Context, stages pipe.Stages) error {
	if err := RunValidation(ctx, stages); err != nil {
		return err
	}
	return runPipes(ctx, stages.Execution)
}

// RunValidation executes only the validation pipes
func RunValidation(ctx *context.Context, stages pipe.Stages) error {
	return runPipes(ctx, stages.Validation)
}

func runPipes(ctx *context.Context, pipes []Piper) error {
	for _, p := range pipes {
		if err := ctx.Err(); err != nil {
			return err
		}

		ctx.Logger.WithField("action", p.String()).Info()
		start := time.Now()

		if err := p.Run(ctx); err != nil {
			if isSkip(err) {
				ctx.Logger.Infof("skipped: %v", err)
				continue
			}
			return fmt.Errorf("%s: %w", p.String(), err)
		}

		ctx.Logger.Debugf("Completed: %s (%s)", p.String(), FormatDuration(time.Since(start)))
	}
	return nil
}

func isSkip(err error) bool {
	var s pipe.IsSkip
	return errors.As(err, &s) && s.IsSkip()
}

// FormatDuration renders d as 523ms, 45s or 1m32s
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	switch {
	case m == 0:
		return fmt.Sprintf("%ds", s)
	case s == 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dm%ds", m, s)
	}
}

// Piper is re-exported for convenience within the pipeline package.
type Piper = pipe.Piper
