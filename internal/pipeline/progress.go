package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel/metric"

	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
)

// Reporter is the pipeline's single shared progress counter (spec.md
// §4.G, §9 design note: besides the start-time clock, this is the only
// sanctioned global mutable state, and it is modeled here as a struct
// passed explicitly to callers rather than a package-level singleton).
type Reporter struct {
	mu             sync.Mutex
	insertedTotal  int64
	lastLogPercent float64

	total int64
	bar   *progressbar.ProgressBar

	rowsCounter metric.Int64Counter
}

// NewReporter creates a Reporter for a run expected to insert
// approximately total rows. When debug is false a visible bar is
// rendered; when true, Update instead emits threshold-gated log lines.
// rowsCounter may be nil (metrics are optional instrumentation, not a
// substitute for the counters above).
func NewReporter(total int64, debug bool, rowsCounter metric.Int64Counter) *Reporter {
	r := &Reporter{total: total, rowsCounter: rowsCounter}
	if !debug {
		r.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription("inserindo dados"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}
	return r
}

// Update records that rowsInserted rows from filename were just
// committed, and either advances the bar or emits a debug log line,
// exactly as spec.md §4.G describes. queueLen/queueCap report the
// shared queue's instantaneous fill level for the debug log line.
func (r *Reporter) Update(rowsInserted int, filename string, queueLen, queueCap int) {
	r.mu.Lock()
	r.insertedTotal += int64(rowsInserted)
	current := r.insertedTotal
	r.mu.Unlock()

	if r.rowsCounter != nil {
		r.rowsCounter.Add(context.Background(), int64(rowsInserted))
	}

	if r.bar != nil {
		_ = r.bar.Add(rowsInserted)
		return
	}

	percent := 0.0
	if r.total > 0 {
		percent = float64(current) / float64(r.total) * 100
		if percent > 100 {
			percent = 100
		}
	}

	r.mu.Lock()
	shouldLog := percent-r.lastLogPercent >= 0.5 || (percent == 100.0 && r.lastLogPercent <= 100.0)
	if shouldLog {
		r.lastLogPercent = percent
	}
	r.mu.Unlock()

	if !shouldLog {
		return
	}

	name := strings.ToUpper(filepath.Base(filename))
	logx.Debug("REGISTROS: %12d (%6.2f%%) | %-23s | FILA: %2d/%2d", current, percent, name, queueLen, queueCap)
}

// Total returns the cumulative inserted_total counter.
func (r *Reporter) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertedTotal
}

// Close releases the progress bar's terminal resources, if one is in use.
func (r *Reporter) Close() {
	if r.bar != nil {
		_ = r.bar.Close()
	}
}
