// Package tui renders run feedback directly to the terminal with ANSI
// escapes, without taking over the screen.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	barWidth    = 40
	minInterval = time.Second / 30
)

// Progress is a sim.Observer that redraws a single-line progress bar:
//
//	[00:00:12] [####################--------------------] 5000/10000 T=87.4
//
// Redraws are rate-limited so the bar never dominates short steps.
type Progress struct {
	out      io.Writer
	start    time.Time
	lastDraw time.Time
	lastTemp float64
	done     bool
}

func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out, start: time.Now()}
}

func (p *Progress) OnStep(step, total int, pe, temp float64) {
	if p.done {
		return
	}
	p.lastTemp = temp
	now := time.Now()
	if step < total && now.Sub(p.lastDraw) < minInterval {
		return
	}
	p.lastDraw = now
	p.draw(step, total, temp)
}

func (p *Progress) draw(step, total int, temp float64) {
	filled := 0
	if total > 0 {
		filled = step * barWidth / total
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)

	elapsed := time.Since(p.start).Round(time.Second)
	fmt.Fprintf(p.out, "\r[%s] [%s] %d/%d T=%.1f", formatElapsed(elapsed), bar, step, total, temp)
}

// Finish completes the bar and moves to a fresh line.
func (p *Progress) Finish(total int) {
	if p.done {
		return
	}
	p.done = true
	p.draw(total, total, p.lastTemp)
	fmt.Fprintln(p.out)
}

func formatElapsed(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
