package output

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
)

const batchTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// refreshRate returns the progress redraw interval based on OS.
// Windows terminals have higher latency with ANSI sequences.
func refreshRate() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// BatchProgress renders a progress bar while candidates are compared.
// A nil *BatchProgress is valid and does nothing.
type BatchProgress struct {
	mu      sync.Mutex
	bar     *pb.ProgressBar
	current int
}

// NewBatchProgress starts a bar writing to w for total comparisons.
// It returns nil when disabled so callers can pass Update unconditionally.
func NewBatchProgress(w io.Writer, total int, enabled bool) *BatchProgress {
	if !enabled || w == nil || total <= 0 {
		return nil
	}

	bar := batchTemplate.New(total)
	bar.SetWriter(w)
	bar.SetRefreshRate(refreshRate())
	bar.Set("prefix", "Comparing ")
	bar.Start()

	return &BatchProgress{bar: bar}
}

// Update records done of total comparisons. It may be called concurrently
// and out of order; the bar never moves backwards.
func (p *BatchProgress) Update(done, total int) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if done <= p.current {
		return
	}
	p.current = done
	p.bar.SetTotal(int64(total))
	p.bar.SetCurrent(int64(done))
}

// Current returns the highest completed count seen
func (p *BatchProgress) Current() int {
	if p == nil {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish stops the bar and leaves it at its final state
func (p *BatchProgress) Finish() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Finish()
}
