package media

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/metrics"
)

// ReaperConfig controls the concurrency characteristics of the reaper.
type ReaperConfig struct {
	QueueSize     int
	Workers       int
	DeleteTimeout time.Duration
}

// Reaper deletes assets from the object store in the background. Failures
// are logged and counted; nothing is retried.
type Reaper struct {
	storage AssetStorage
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewReaper starts cfg.Workers goroutines draining a queue of object keys.
func NewReaper(storage AssetStorage, cfg ReaperConfig, logger *slog.Logger) *Reaper {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DeleteTimeout <= 0 {
		cfg.DeleteTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Reaper{
		storage: storage,
		logger:  logger,
		timeout: cfg.DeleteTimeout,
		jobs:    make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}

	return r
}

// Enqueue schedules deletion of keys. Blank keys are skipped. It blocks while
// the queue is full until ctx is done.
func (r *Reaper) Enqueue(ctx context.Context, keys ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrReaperClosed
	}

	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.ctx.Done():
			return ErrReaperClosed
		case r.jobs <- key:
			metrics.ReaperQueueDepth.Inc()
		}
	}
	return nil
}

// Shutdown stops accepting work and waits for queued deletions to finish.
// Queued keys are abandoned when ctx expires first.
func (r *Reaper) Shutdown(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.jobs)
		r.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	case <-done:
		r.cancel()
		return nil
	}
}

func (r *Reaper) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case key, ok := <-r.jobs:
			if !ok {
				return
			}
			metrics.ReaperQueueDepth.Dec()
			r.delete(key)
		}
	}
}

func (r *Reaper) delete(key string) {
	if r.storage == nil {
		r.logger.Error("asset reaper missing storage", "key", key)
		return
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	err := r.storage.Delete(ctx, key)
	metrics.RecordMediaOperation("delete", err)
	if err != nil {
		r.logger.Warn("asset deletion failed", "key", key, "error", err)
		return
	}
	r.logger.Debug("asset deleted", "key", key)
}
