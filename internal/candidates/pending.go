package candidates

import (
	"context"
	"sync/atomic"

	"github.com/spigell/cv-ranker/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EvaluatePending evaluates every row that has no evaluation and is not being
// evaluated. Failures are logged and do not stop other rows. It returns the
// number of rows evaluated.
func (b *Board) EvaluatePending(ctx context.Context) int {
	snap := b.Snapshot()

	pending := make([]string, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		if !r.Evaluated() && !r.Evaluating {
			pending = append(pending, r.ID())
		}
	}
	if len(pending) == 0 {
		return 0
	}

	var g errgroup.Group
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}

	var evaluated atomic.Int64
	for _, id := range pending {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := b.Evaluate(ctx, id); err == nil {
				evaluated.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	b.logger.Info("pending candidates evaluated",
		zap.String(logger.FieldJobID, snap.JobID),
		zap.Int("pending", len(pending)),
		zap.Int64("evaluated", evaluated.Load()),
	)

	return int(evaluated.Load())
}
