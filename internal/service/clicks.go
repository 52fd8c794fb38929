package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/storage"
)

const (
	clickQueueSize    = 1024
	clickFlushTimeout = 5 * time.Second
)

// ClickRecorder копит переходы и пишет их в хранилище пачками: по таймеру
// или при наборе batchSize кликов. Close дожидается записи остатка.
type ClickRecorder struct {
	store     storage.LinkStorage
	queue     chan int64
	done      chan struct{}
	interval  time.Duration
	batchSize int
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewClickRecorder создает и запускает фоновую запись кликов
func NewClickRecorder(store storage.LinkStorage, interval time.Duration, batchSize int, logger *zap.Logger) *ClickRecorder {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	r := &ClickRecorder{
		store:     store,
		queue:     make(chan int64, clickQueueSize),
		done:      make(chan struct{}),
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record ставит клик в очередь. Если очередь заполнена или запись
// остановлена, клик пишется сразу.
func (r *ClickRecorder) Record(linkID int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.closed {
		select {
		case r.queue <- linkID:
			return
		default:
			r.logger.Warn("Click queue is full, writing synchronously", zap.Int64("id", linkID))
		}
	}
	r.flush(map[int64]int64{linkID: 1})
}

func (r *ClickRecorder) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	pending := make(map[int64]int64)
	count := 0
	reset := func() {
		r.flush(pending)
		pending = make(map[int64]int64)
		count = 0
	}

	for {
		select {
		case id := <-r.queue:
			pending[id]++
			count++
			if count >= r.batchSize {
				reset()
			}
		case <-ticker.C:
			if count > 0 {
				reset()
			}
		case <-r.done:
			for {
				select {
				case id := <-r.queue:
					pending[id]++
				default:
					r.flush(pending)
					return
				}
			}
		}
	}
}

func (r *ClickRecorder) flush(clicks map[int64]int64) {
	if len(clicks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), clickFlushTimeout)
	defer cancel()

	if err := r.store.AddClicks(ctx, clicks); err != nil {
		r.logger.Error("Failed to store clicks", zap.Int("links", len(clicks)), zap.Error(err))
	}
}

// Close останавливает фоновую запись и сохраняет накопленные клики
func (r *ClickRecorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}
