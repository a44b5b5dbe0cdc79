package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a one-line progress indicator while a blocking call
// runs. Use it only on a terminal; on pipes it would litter the output.
type Spinner struct {
	w    io.Writer
	msg  string
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewSpinner(w io.Writer, msg string) *Spinner {
	return &Spinner{w: w, msg: msg, stop: make(chan struct{}), done: make(chan struct{})}
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		t := time.NewTicker(80 * time.Millisecond)
		defer t.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s  %s", StyleAccent.Render(spinnerFrames[i%len(spinnerFrames)]), s.msg)
			select {
			case <-s.stop:
				fmt.Fprintf(s.w, "\r%-60s\r", "")
				return
			case <-t.C:
			}
		}
	}()
}

// Stop halts the spinner and clears its line. Safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
