// Package queue is a reliable work queue on Redis lists.
//
// Jobs are pushed on the left of <name> and consumed from the right with
// BLMOVE into <name>:processing, so a job stays visible until it is acked or
// failed. Anything left in :processing after a crash is moved back by Recover.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Job asks for thumbnails of an uploaded image.
type Job struct {
	FileID int64 `json:"fileId"`
	UserID int64 `json:"userId"`
}

// Valid reports whether both ids are present.
func (j Job) Valid() bool {
	return j.FileID > 0 && j.UserID > 0
}

// Delivery is a dequeued job together with its raw payload, which identifies
// the entry in the processing list. DecodeErr is set when Raw is not a job.
type Delivery struct {
	Job       Job
	Raw       string
	DecodeErr error
}

// Enqueuer is the producer side of the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Consumer is the worker side of the queue.
type Consumer interface {
	Dequeue(ctx context.Context) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
	Fail(ctx context.Context, d *Delivery, cause error) error
	Recover(ctx context.Context) (int, error)
}

type failure struct {
	Job      json.RawMessage `json:"job"`
	Error    string          `json:"error"`
	FailedAt time.Time       `json:"failedAt"`
}

// RedisQueue implements Enqueuer and Consumer.
type RedisQueue struct {
	client redis.Cmdable
	name   string
	block  time.Duration
	now    func() time.Time
}

// NewRedisQueue returns a queue stored under name. Dequeue blocks up to block
// waiting for a job.
func NewRedisQueue(client redis.Cmdable, name string, block time.Duration) *RedisQueue {
	return &RedisQueue{client: client, name: name, block: block, now: time.Now}
}

var (
	_ Enqueuer = (*RedisQueue)(nil)
	_ Consumer = (*RedisQueue)(nil)
)

func (q *RedisQueue) processing() string { return q.name + ":processing" }

func (q *RedisQueue) failed() string { return q.name + ":failed" }

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, string(b)).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", q.name, err)
	}
	return nil
}

// Dequeue waits for the next job. It returns nil, nil when the block timeout
// elapses without one. A payload that does not decode is still delivered, with
// a zero Job and DecodeErr set, so the caller can fail it.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Delivery, error) {
	raw, err := q.client.BLMove(ctx, q.name, q.processing(), "RIGHT", "LEFT", q.block).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue %s: %w", q.name, err)
	}

	d := &Delivery{Raw: raw}
	if err := json.Unmarshal([]byte(raw), &d.Job); err != nil {
		d.Job = Job{}
		d.DecodeErr = fmt.Errorf("decode job: %w", err)
	}
	return d, nil
}

func (q *RedisQueue) Ack(ctx context.Context, d *Delivery) error {
	if err := q.client.LRem(ctx, q.processing(), 1, d.Raw).Err(); err != nil {
		return fmt.Errorf("ack: %w", err)
	}
	return nil
}

// Fail moves the delivery from the processing list to the failed list along
// with the cause.
func (q *RedisQueue) Fail(ctx context.Context, d *Delivery, cause error) error {
	rec := failure{FailedAt: q.now().UTC()}
	if json.Valid([]byte(d.Raw)) {
		rec.Job = json.RawMessage(d.Raw)
	} else {
		rec.Job, _ = json.Marshal(d.Raw)
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode failure: %w", err)
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processing(), 1, d.Raw)
		pipe.LPush(ctx, q.failed(), string(b))
		return nil
	})
	if err != nil {
		return fmt.Errorf("fail: %w", err)
	}
	return nil
}

// Recover requeues every job left in the processing list and returns how many
// were moved. The oldest in-flight job is consumed first.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.LMove(ctx, q.processing(), q.name, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("recover %s: %w", q.processing(), err)
		}
		n++
	}
}
