package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"filesmanager/internal/queue"
)

// JobProcessor handles one dequeued job.
type JobProcessor interface {
	Process(ctx context.Context, job queue.Job) error
}

// Worker runs concurrent consumer loops over the thumbnail queue.
type Worker struct {
	queue       queue.Consumer
	processor   JobProcessor
	concurrency int
	metrics     *Metrics
	log         *zap.Logger
	backoff     time.Duration
}

// NewWorker returns a Worker with the given number of consumer loops.
func NewWorker(q queue.Consumer, processor JobProcessor, concurrency int, metrics *Metrics, log *zap.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:       q,
		processor:   processor,
		concurrency: concurrency,
		metrics:     metrics,
		log:         log.Named("worker"),
		backoff:     time.Second,
	}
}

// Run requeues jobs orphaned by a previous crash, then consumes until ctx is
// done. It returns once every loop has finished its current job.
func (w *Worker) Run(ctx context.Context) error {
	n, err := w.queue.Recover(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		w.log.Info("requeued in-flight jobs", zap.Int("count", n))
	}

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.loop(ctx, w.log.With(zap.Int("slot", slot)))
		}(i)
	}
	wg.Wait()
	return nil
}

func (w *Worker) loop(ctx context.Context, log *zap.Logger) {
	for ctx.Err() == nil {
		d, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("dequeue failed", zap.Error(err))
			w.sleep(ctx)
			continue
		}
		if d == nil {
			continue
		}
		w.handle(ctx, log, d)
	}
}

// handle processes d outside of ctx cancellation so a shutdown does not leave
// a half-written job behind.
func (w *Worker) handle(ctx context.Context, log *zap.Logger, d *queue.Delivery) {
	jobCtx := context.WithoutCancel(ctx)
	log = log.With(zap.Int64("file_id", d.Job.FileID), zap.Int64("user_id", d.Job.UserID))

	start := time.Now()
	var err error
	if d.DecodeErr != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidJob, d.DecodeErr)
	} else {
		err = w.processor.Process(jobCtx, d.Job)
	}
	w.metrics.jobDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		w.metrics.jobs.WithLabelValues(StatusOK).Inc()
		if ackErr := w.queue.Ack(jobCtx, d); ackErr != nil {
			log.Warn("ack failed", zap.Error(ackErr))
		}
		log.Info("thumbnails generated", zap.Duration("took", time.Since(start)))
		return
	}

	status := StatusFailed
	if errors.Is(err, ErrInvalidJob) || errors.Is(err, ErrSourceMissing) {
		status = StatusRejected
	}
	w.metrics.jobs.WithLabelValues(status).Inc()
	log.Error("thumbnail job failed", zap.String("status", status), zap.Error(err))

	if failErr := w.queue.Fail(jobCtx, d, err); failErr != nil {
		log.Warn("fail record not written", zap.Error(failErr))
	}
}

func (w *Worker) sleep(ctx context.Context) {
	t := time.NewTimer(w.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
