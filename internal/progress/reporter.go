// Package progress reports pipeline stages to the user while a map is
// rendered from the command line.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives one Update per pipeline stage.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter picks the line reporter in CI logs and the progress bar
// everywhere else.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter draws a bar on stderr, labelled with the current stage.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Rendering map"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(fmt.Sprintf("%-20s", message))
	_ = r.bar.Set(current)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter writes one line per stage with the time the previous stage took.
type CIReporter struct {
	Out io.Writer // defaults to os.Stderr

	// Now replaces time.Now in tests.
	Now func() time.Time

	total   int
	started time.Time
	last    time.Time
}

func (r *CIReporter) out() io.Writer {
	if r.Out == nil {
		return os.Stderr
	}
	return r.Out
}

func (r *CIReporter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *CIReporter) Start(total int) {
	r.total = total
	r.started = r.now()
	r.last = r.started
	fmt.Fprintf(r.out(), "Rendering map in %d steps\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	t := r.now()
	fmt.Fprintf(r.out(), "[%d/%d] %s (+%s)\n", current, r.total, message, t.Sub(r.last).Round(time.Millisecond))
	r.last = t
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(r.out(), "Map rendering complete in %s\n", r.now().Sub(r.started).Round(time.Millisecond))
}

// Nop discards all progress. The server uses it since pages are rendered
// per request.
type Nop struct{}

func (Nop) Start(int)          {}
func (Nop) Update(int, string) {}
func (Nop) Finish()            {}
