package collectors

import (
	"context"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/logging"
)

// RunLoop loads a batch from the loader and hands it to handleFn, then waits for
// interval before the next pass. An interval <= 0 runs exactly once.
func RunLoop(ctx context.Context, loader Loader, interval time.Duration, handleFn func(context.Context, Batch) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := loader.Load(ctx)
		if err != nil {
			logging.Errorf("[%s] load failed: %v", loader.Name(), err)
		} else if handleFn != nil {
			if err := handleFn(ctx, batch); err != nil {
				logging.Errorf("[%s] handler error: %v", loader.Name(), err)
			}
		}

		if interval <= 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
