package worker

import (
	"context"
	"sync/atomic"
	"time"

	"msgboard/internal/domain/model"
	"msgboard/internal/domain/repository"
	"msgboard/internal/logging"
)

const (
	defaultBuffer = 1024
	maxBatch      = 64
	flushTimeout  = 2 * time.Second
	retryBackoff  = time.Second
)

// OpLogWorker moves operational log entries from an in-process buffer into
// the bounded log. Offer never blocks; entries are dropped when the buffer is full.
type OpLogWorker struct {
	repo    repository.LogRepository
	log     logging.Logger // must not feed back into this worker
	entries chan model.LogEntry
	dropped atomic.Int64
	done    chan struct{}
}

func NewOpLogWorker(repo repository.LogRepository, log logging.Logger, buffer int) *OpLogWorker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &OpLogWorker{
		repo:    repo,
		log:     log,
		entries: make(chan model.LogEntry, buffer),
		done:    make(chan struct{}),
	}
}

func (w *OpLogWorker) Offer(entry model.LogEntry) bool {
	select {
	case w.entries <- entry:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Dropped is the number of entries lost to a full buffer.
func (w *OpLogWorker) Dropped() int64 {
	return w.dropped.Load()
}

// Start blocks until ctx is cancelled, then flushes what is still buffered.
func (w *OpLogWorker) Start(ctx context.Context) {
	defer close(w.done)
	w.log.Info(ctx, "operational log worker started")
	for {
		select {
		case <-ctx.Done():
			w.drain()
			w.log.Info(context.Background(), "operational log worker stopped", "dropped", w.Dropped())
			return
		case first := <-w.entries:
			batch := w.collect(first)
			if err := w.write(ctx, batch); err != nil {
				w.log.Error(ctx, "failed to append operational log", "err", err, "entries", len(batch))
				select {
				case <-ctx.Done():
				case <-time.After(retryBackoff):
				}
			}
		}
	}
}

// Done is closed once Start has returned.
func (w *OpLogWorker) Done() <-chan struct{} {
	return w.done
}

func (w *OpLogWorker) collect(first model.LogEntry) []model.LogEntry {
	batch := []model.LogEntry{first}
	for len(batch) < maxBatch {
		select {
		case e := <-w.entries:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

// write outlives cancellation of ctx so a batch already taken off the buffer is not lost.
func (w *OpLogWorker) write(ctx context.Context, batch []model.LogEntry) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	return w.repo.Append(ctx, batch...)
}

func (w *OpLogWorker) drain() {
	for {
		select {
		case first := <-w.entries:
			batch := w.collect(first)
			if err := w.write(context.Background(), batch); err != nil {
				w.log.Error(context.Background(), "failed to flush operational log", "err", err, "entries", len(batch))
				return
			}
		default:
			return
		}
	}
}
