// Package obs provides lightweight span-style timing around pipeline
// stages, logging through the structured logger instead of bare log.Printf.
package obs

import (
	"context"
	"time"

	"cvrp-optimizer/internal/platform/logger"
)

type ctxKey string

// RunIDKey tags a context with the current planning run's identifier, so
// Time can attach it to every span it logs.
const RunIDKey ctxKey = "run_id"

// Time starts a timer for operation name and returns a closer to call with
// the operation's error (nil on success) when it completes. Typical use:
//
//	done := obs.Time(ctx, "matrix_builder.build")
//	defer func() { done(&err) }()
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	runID, _ := ctx.Value(RunIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)
		log := logger.Log.With("run_id", runID, "op", name, "dur_ms", dur.Milliseconds())
		if errp != nil && *errp != nil {
			log.Error("stage failed", "err", *errp)
			return
		}
		log.Info("stage complete")
	}
}
