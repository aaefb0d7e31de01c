package job

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/hlcsatoreai/cryptointel/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type Refresher interface {
	RefreshMarketData(ctx context.Context) (domain.RefreshResult, error)
}

// RefreshJob triggers a full refresh cycle once at startup and then on a
// fixed cadence. At most one cycle runs at a time: a trigger that arrives
// while a cycle is still running is skipped, not queued.
type RefreshJob struct {
	tracer    trace.Tracer
	refresher Refresher
	interval  time.Duration
	running   atomic.Bool
}

func NewRefreshJob(tracer trace.Tracer, refresher Refresher, interval time.Duration) *RefreshJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshJob{tracer: tracer, refresher: refresher, interval: interval}
}

// Start runs the immediate refresh and the ticker loop. Blocks until ctx
// is cancelled.
func (j *RefreshJob) Start(ctx context.Context) {
	if j.refresher == nil {
		log.Println("Refresh job disabled: no refresher")
		<-ctx.Done()
		return
	}

	log.Printf("Refresh job starting, interval %s", j.interval)
	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Refresh job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

// Run executes one cycle unless one is already in flight. The boolean
// reports whether the cycle actually ran.
func (j *RefreshJob) Run(ctx context.Context) (domain.RefreshResult, bool, error) {
	if !j.running.CompareAndSwap(false, true) {
		return domain.RefreshResult{}, false, nil
	}
	defer j.running.Store(false)

	_, span := j.tracer.Start(ctx, "refresh-job.run")
	defer span.End()

	result, err := j.refresher.RefreshMarketData(ctx)
	return result, true, err
}

func (j *RefreshJob) runOnce(ctx context.Context) {
	result, ran, err := j.Run(ctx)
	if err != nil {
		log.Printf("Refresh cycle error: %v", err)
		return
	}
	if !ran {
		log.Println("Refresh cycle still running, skipping trigger")
		return
	}
	log.Printf("Refresh cycle complete processed=%d skipped=%d warnings=%d",
		result.AssetsProcessed, result.AssetsSkipped, len(result.Errors))
}
