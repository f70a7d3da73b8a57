package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"Backend-FaceAttend/src/services/attendance"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when the local pool has no room; the refresh is dropped.
var ErrQueueFull = errors.New("signature refresh queue is full")

// ErrQueueClosed is returned after Close.
var ErrQueueClosed = errors.New("signature refresh queue is closed")

// AsynqQueue enqueues refreshes into Redis for the asynq worker.
type AsynqQueue struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

var _ attendance.RefreshQueue = (*AsynqQueue)(nil)

func NewAsynqQueue(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqQueue {
	return &AsynqQueue{client: client, maxRetry: maxRetry, timeout: timeout}
}

func (q *AsynqQueue) Enqueue(ctx context.Context, job attendance.SignatureRefresh) error {
	task, err := NewRefreshSignatureTask(job)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueSignatures),
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(q.timeout),
		asynq.TaskID("refresh-"+job.MemberID.Hex()+"-"+uuid.NewString()),
	)
	return err
}

// LocalPool runs refreshes on a fixed number of goroutines fed by a bounded buffer.
type LocalPool struct {
	refresh func(context.Context, attendance.SignatureRefresh) error
	timeout time.Duration
	log     *zap.Logger

	jobs chan attendance.SignatureRefresh
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ attendance.RefreshQueue = (*LocalPool)(nil)

func NewLocalPool(refresh func(context.Context, attendance.SignatureRefresh) error, workers, size int, timeout time.Duration, log *zap.Logger) *LocalPool {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &LocalPool{
		refresh: refresh,
		timeout: timeout,
		log:     log.Named("pool"),
		jobs:    make(chan attendance.SignatureRefresh, size),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *LocalPool) work() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(job)
	}
}

func (p *LocalPool) run(job attendance.SignatureRefresh) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.refresh(ctx, job); err != nil {
		p.log.Error("signature refresh failed", zap.String("memberId", job.MemberID.Hex()), zap.Error(err))
	}
}

// Enqueue never blocks: a full buffer drops the job.
func (p *LocalPool) Enqueue(_ context.Context, job attendance.SignatureRefresh) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrQueueClosed
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *LocalPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
