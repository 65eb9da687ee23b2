// Package report shows build progress and the statistics printed after a build.
package report

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

type Reporter struct {
	w       io.Writer
	quiet   bool
	started time.Time
	lines   int
	bar     *progressbar.ProgressBar
}

func New(w io.Writer, quiet bool) *Reporter {
	return &Reporter{w: w, quiet: quiet, started: time.Now()}
}

// Progress is handed to the compiler as its per-line callback.
func (r *Reporter) Progress(done, total int) {
	r.lines = done
	if r.quiet {
		return
	}
	if r.bar == nil {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription("compiling"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = r.bar.Set(done)
	if done >= total {
		_ = r.bar.Finish()
	}
}

// Stats is what a finished build reports.
type Stats struct {
	Source    string
	Output    string
	Lines     int
	Elapsed   time.Duration
	HeapAlloc uint64
	Sys       uint64
}

// Collect takes the elapsed time and the current memory figures.
func (r *Reporter) Collect(source, output string) Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		Source:    source,
		Output:    output,
		Lines:     r.lines,
		Elapsed:   time.Since(r.started),
		HeapAlloc: m.HeapAlloc,
		Sys:       m.Sys,
	}
}

// Summary prints stats as a table.
func (r *Reporter) Summary(s Stats) {
	if r.quiet {
		return
	}
	table := tablewriter.NewWriter(r.w)
	table.SetHeader([]string{"source", "output", "lines", "time", "heap", "memory"})
	table.Append([]string{
		s.Source,
		s.Output,
		fmt.Sprint(s.Lines),
		s.Elapsed.Round(time.Microsecond).String(),
		humanize.Bytes(s.HeapAlloc),
		humanize.Bytes(s.Sys),
	})
	table.Render()
}
