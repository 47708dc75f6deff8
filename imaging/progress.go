package imaging

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// Tracker renders an overall completion bar while workers chew through the
// task list. Counts are bumped from result callbacks; rendering happens on a
// ticker so output stays readable.
type Tracker struct {
	total     int64
	completed atomic.Int64
	prog      progress.Model
	done      chan bool
}

// NewTracker creates a tracker for the given task count
func NewTracker(total int) *Tracker {
	return &Tracker{
		total: int64(total),
		prog:  progress.New(progress.WithDefaultGradient()),
		done:  make(chan bool),
	}
}

// Increment records one completed task
func (t *Tracker) Increment() {
	t.completed.Add(1)
}

// Start launches the render loop. Call Finish to draw the final bar and stop.
func (t *Tracker) Start() {
	go t.render()
}

// Finish draws the bar at 100% and stops the render loop
func (t *Tracker) Finish() {
	t.done <- true
}

func (t *Tracker) render() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			fmt.Printf("\r%s\n", t.prog.ViewAs(1.0))
			return
		case <-ticker.C:
			if n := t.completed.Load(); n > 0 && t.total > 0 {
				fmt.Printf("\r%s", t.prog.ViewAs(float64(n)/float64(t.total)))
			}
		}
	}
}
