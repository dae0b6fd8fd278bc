// Package pipeline implements the batch producer, row transformers and
// progress reporter shared by both storage backends (spec.md §4.C, §4.D
// and §4.G). The loader workers themselves live per-backend under
// internal/store/{sqlite,postgres} since their bulk-insert mechanics
// differ, but both consume the same Batch shape produced here.
package pipeline

// Batch is a bounded, immutable group of rows routed to one target
// table. A nil Batch pointer drawn from the work queue is the sentinel
// that tells a consumer no more batches are coming for it.
type Batch struct {
	Table          string
	Columns        []string
	Rows           [][]string
	SourceFilename string
}

// Queue is the bounded FIFO the producer pushes batches into and the
// loader workers drain. It is a thin wrapper over a buffered channel so
// the "push blocks when full" backpressure in spec.md §5 falls out of
// Go's channel semantics directly, rather than the spin-wait-on-full
// poll loop the original implementation used (see DESIGN.md).
type Queue struct {
	ch chan *Batch
}

// NewQueue creates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan *Batch, capacity)}
}

// Push enqueues a batch, blocking while the queue is full.
func (q *Queue) Push(b *Batch) { q.ch <- b }

// PushSentinel enqueues the nil sentinel that terminates one consumer.
func (q *Queue) PushSentinel() { q.ch <- nil }

// Pop dequeues the next batch (or nil sentinel), blocking while empty.
func (q *Queue) Pop() *Batch { return <-q.ch }

// Len reports the queue's current fill level, for progress reporting.
func (q *Queue) Len() int { return len(q.ch) }

// Cap reports the queue's configured capacity.
func (q *Queue) Cap() int { return cap(q.ch) }
