package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const barWidth = 30

// ProgressReporter tracks a batch of files being copied, such as a bundle
// import, by file count and by bytes.
type ProgressReporter interface {
	// Start begins a batch of files totalling size bytes.
	Start(files, size int64)
	// Add records one finished file of size bytes.
	Add(size int64)
	Finish()
	Error(err error)
}

// TransferProgress renders a single self-overwriting status line.
type TransferProgress struct {
	mu         sync.Mutex
	w          io.Writer
	label      string
	files      int64
	size       int64
	doneFiles  int64
	doneBytes  int64
	started    time.Time
	lastRender time.Time
}

// NewProgressReporter returns a TransferProgress writing to w (os.Stdout when
// nil). label prefixes the status line, for example "importing".
func NewProgressReporter(w io.Writer, label string) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	if label == "" {
		label = "progress"
	}
	return &TransferProgress{w: w, label: label}
}

func (p *TransferProgress) Start(files, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.files, p.size = files, size
	p.doneFiles, p.doneBytes = 0, 0
	p.started = time.Now()
	p.render(true)
}

func (p *TransferProgress) Add(size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.doneFiles++
	p.doneBytes += size
	p.render(p.doneFiles == p.files)
}

// Finish prints the final line with the totals actually seen.
func (p *TransferProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.files > 0 {
		p.render(true)
	}
	fmt.Fprintf(p.w, "\n%s: %d files, %s in %s\n",
		p.label, p.doneFiles, humanize.Bytes(uint64(p.doneBytes)),
		time.Since(p.started).Round(time.Millisecond))
}

func (p *TransferProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\n✗ Error: %v\n", err)
}

// render redraws at most every 100ms unless force is set. Bytes drive the
// bar; the file count drives it when the batch is empty files only.
func (p *TransferProgress) render(force bool) {
	if p.files == 0 {
		return
	}
	now := time.Now()
	if !force && now.Sub(p.lastRender) < 100*time.Millisecond {
		return
	}
	p.lastRender = now

	ratio := float64(p.doneFiles) / float64(p.files)
	if p.size > 0 {
		ratio = float64(p.doneBytes) / float64(p.size)
	}
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio * barWidth)

	var rate uint64
	if elapsed := now.Sub(p.started).Seconds(); elapsed > 0 {
		rate = uint64(float64(p.doneBytes) / elapsed)
	}

	fmt.Fprintf(p.w, "\r%s [%s%s] %5.1f%% %d/%d files %s/%s %s/s",
		p.label,
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled),
		ratio*100,
		p.doneFiles, p.files,
		humanize.Bytes(uint64(p.doneBytes)), humanize.Bytes(uint64(p.size)),
		humanize.Bytes(rate))
}
