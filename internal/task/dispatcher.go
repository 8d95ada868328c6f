package task

import (
	"context"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/hibiken/asynq"
)

// Options bounds the retry budget and runtime of enqueued tasks. The
// task timeout must exceed the generation poll ceiling plus transcode
// time, or the queue will kill an otherwise-healthy run.
type Options struct {
	MaxRetries        int
	RetryDelay        time.Duration
	TranscodeTimeout  time.Duration
	GenerationTimeout time.Duration
}

type Dispatcher struct {
	client *asynq.Client
	opts   Options
}

// compile-time check
var _ port.TaskDispatcher = (*Dispatcher)(nil)

func NewDispatcher(addr, password string, opts Options) *Dispatcher {
	c := asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password})
	return &Dispatcher{client: c, opts: opts}
}

func (d *Dispatcher) EnqueueTranscodeLesson(ctx context.Context, id uuid.UUID) error {
	t, err := NewTranscodeLessonTask(id.String())
	if err != nil {
		return err
	}
	_, err = d.client.EnqueueContext(ctx, t,
		asynq.Queue(QueueTranscoding),
		asynq.MaxRetry(d.opts.MaxRetries),
		asynq.Timeout(d.opts.TranscodeTimeout),
	)
	return err
}

func (d *Dispatcher) EnqueueGenerateVideo(ctx context.Context, id uuid.UUID) error {
	t, err := NewGenerateVideoTask(id.String())
	if err != nil {
		return err
	}
	_, err = d.client.EnqueueContext(ctx, t,
		asynq.Queue(QueueGeneration),
		asynq.MaxRetry(d.opts.MaxRetries),
		asynq.Timeout(d.opts.GenerationTimeout),
	)
	return err
}

// RetryDelayFunc returns the fixed backoff used between task retries.
func (o Options) RetryDelayFunc(n int, e error, t *asynq.Task) time.Duration {
	return o.RetryDelay
}
