package download

import (
	"container/heap"
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
)

// Manager runs a fixed-size pool of download workers against a list
// of URLs, each worker claiming one of a bounded set of progress-bar
// "slots" for the duration of its current file (spec.md §4.B, §5).
type Manager struct {
	HTTPClient   *http.Client
	UserAgent    *RotatingUserAgent
	Workers      int
	ChunkBytes   int
	ChunkTimeout time.Duration
	MaxRetries   int
	DestDir      string

	slots *slotQueue
}

// NewManager builds a Manager with workers download slots.
func NewManager(client *http.Client, userAgent *RotatingUserAgent, workers int, destDir string) *Manager {
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		HTTPClient: client,
		UserAgent:  userAgent,
		Workers:    workers,
		DestDir:    destDir,
		slots:      newSlotQueue(workers),
	}
}

// DownloadAll fetches every URL, workers at a time, stopping and
// returning the first structural error encountered; transient
// per-file failures are already retried inside Task.Run and only
// surface here once retries are exhausted.
func (m *Manager) DownloadAll(ctx context.Context, urls []string) error {
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, m.Workers)

	for _, u := range urls {
		u := u
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()

			slot := m.slots.acquire()
			defer m.slots.release(slot)

			task := &Task{
				URL:          u,
				DestDir:      m.DestDir,
				HTTPClient:   m.HTTPClient,
				UserAgent:    m.UserAgent.Next,
				ChunkBytes:   m.ChunkBytes,
				ChunkTimeout: m.ChunkTimeout,
				MaxRetries:   m.MaxRetries,
				OnProgress: func(written, _ int64) {
					logx.Debug("[slot %d] %s: %d bytes", slot, u, written)
				},
			}
			return task.Run(ctx)
		})
	}

	return g.Wait()
}

// slotQueue hands out the lowest-numbered free slot index first, so
// the progress display always fills positions from the top down
// rather than scattering active downloads across arbitrary rows.
type slotQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	free *intHeap
}

func newSlotQueue(n int) *slotQueue {
	h := make(intHeap, n)
	for i := range h {
		h[i] = i
	}
	heap.Init(&h)
	q := &slotQueue{free: &h}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *slotQueue) acquire() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.free.Len() == 0 {
		q.cond.Wait()
	}
	return heap.Pop(q.free).(int)
}

func (q *slotQueue) release(slot int) {
	q.mu.Lock()
	heap.Push(q.free, slot)
	q.mu.Unlock()
	q.cond.Signal()
}

type intHeap []int

func (h intHeap) Len() int            { return len(h) }
func (h intHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
