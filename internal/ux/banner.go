package ux

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/osvs/memberportal/internal/domain/notice"
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("15")).
	Background(lipgloss.Color("9")).
	Padding(0, 1)

// Banner prints transient error messages to a terminal stream.
type Banner struct {
	mu      sync.Mutex
	w       io.Writer
	plain   bool
	last    string
	history []string
}

// NewBanner returns a Banner writing to w. When plain is true messages are
// printed without styling.
func NewBanner(w io.Writer, plain bool) *Banner {
	return &Banner{w: w, plain: plain}
}

// Attach registers the banner as the channel's listener.
func (b *Banner) Attach(c *notice.Channel) {
	c.Register(b.Show)
}

// Show renders msg. Repeats of the visible message and clears print nothing.
func (b *Banner) Show(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg == b.last {
		return
	}
	b.last = msg
	if msg == "" {
		return
	}
	b.history = append(b.history, msg)
	if b.plain {
		fmt.Fprintf(b.w, "error: %s\n", msg)
		return
	}
	fmt.Fprintln(b.w, bannerStyle.Render(msg))
}

// Shown returns every message the banner has displayed, oldest first.
func (b *Banner) Shown() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.history...)
}
