package ui

import (
	"fmt"
	"io"
	"sync"
)

// Notifier prints action progress as styled lines. Concurrent actions may
// share one Notifier.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) Info(msg string)    { n.line(Info(msg)) }
func (n *Notifier) Success(msg string) { n.line(Success(msg)) }
func (n *Notifier) Error(msg string)   { n.line(Err(msg)) }

func (n *Notifier) line(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, s)
}
