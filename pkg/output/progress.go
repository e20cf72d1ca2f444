package output

import (
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
)

const progressTemplate = `{{string . "prefix"}} {{counters .}} {{bar . "[" "=" ">" " " "]"}} {{percent .}}`

// ClassifyProgress shows a progress bar while a directory's batch is
// being classified. The bar is explicitly paused before interactive
// prompts and resumed afterwards so bar redraws never interleave with
// rendered images or the decision prompt.
type ClassifyProgress struct {
	enabled bool
	writer  io.Writer
	bar     *pb.ProgressBar
	total   int
	current int
	prefix  string
}

// NewClassifyProgress creates a progress display. Disabled instances
// are no-ops, which keeps call sites unconditional.
func NewClassifyProgress(enabled bool) *ClassifyProgress {
	return &ClassifyProgress{enabled: enabled, writer: os.Stderr}
}

// SetWriter overrides the output writer, mainly for tests
func (p *ClassifyProgress) SetWriter(w io.Writer) {
	p.writer = w
}

// Start begins a new bar for a batch of total files
func (p *ClassifyProgress) Start(prefix string, total int) {
	p.total = total
	p.current = 0
	p.prefix = prefix
	if !p.enabled || total == 0 {
		return
	}
	p.bar = p.newBar()
}

// Increment advances the bar by one classified file
func (p *ClassifyProgress) Increment() {
	p.current++
	if p.bar != nil {
		p.bar.Increment()
	}
}

// Pause removes the bar from the terminal ahead of interactive output
func (p *ClassifyProgress) Pause() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

// Resume redraws the bar at its previous position after a prompt
func (p *ClassifyProgress) Resume() {
	if !p.enabled || p.bar != nil || p.current >= p.total || p.total == 0 {
		return
	}
	p.bar = p.newBar()
	p.bar.SetCurrent(int64(p.current))
}

// Finish completes and removes the bar at the end of a batch
func (p *ClassifyProgress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

func (p *ClassifyProgress) newBar() *pb.ProgressBar {
	bar := pb.New(p.total)
	bar.SetTemplateString(progressTemplate)
	bar.Set("prefix", p.prefix)
	bar.SetWriter(p.writer)
	bar.Start()
	return bar
}
