// SPDX-License-Identifier: MPL-2.0

package panel

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "…"

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("panel closed")

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

type (
	// Options configures a Panel.
	Options struct {
		// Height is the number of retained lines. Values below 1 are treated as 1.
		Height int
		// Width truncates each line to this many cells. Zero disables truncation.
		Width int
		// Title labels the frame, usually the task name.
		Title string
		// Live redraws the region on every write. Only meaningful on a terminal.
		Live bool
	}

	// Panel is a bounded, optionally live, view of streamed output.
	Panel struct {
		mu   sync.Mutex
		out  io.Writer
		opts Options

		ring  []string
		start int
		count int
		total int

		cur     []byte
		pendCR  bool
		drawn   int
		closed  bool
		lastErr error
	}
)

// New returns a Panel that draws to w.
func New(w io.Writer, opts Options) *Panel {
	if opts.Height < 1 {
		opts.Height = 1
	}
	if opts.Width < 0 {
		opts.Width = 0
	}
	return &Panel{out: w, opts: opts, ring: make([]string, opts.Height)}
}

// Write consumes output. Newlines commit the current line; a carriage
// return not followed by a newline discards it.
func (p *Panel) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrClosed
	}

	for _, c := range b {
		if p.pendCR {
			p.pendCR = false
			if c != '\n' {
				p.cur = p.cur[:0]
			}
		}
		switch c {
		case '\n':
			p.commit()
		case '\r':
			p.pendCR = true
		default:
			p.cur = append(p.cur, c)
		}
	}

	if p.opts.Live {
		p.redraw()
	}
	return len(b), p.lastErr
}

func (p *Panel) commit() {
	line := string(p.cur)
	p.cur = p.cur[:0]
	p.total++

	h := len(p.ring)
	if p.count < h {
		p.ring[(p.start+p.count)%h] = line
		p.count++
		return
	}
	p.ring[p.start] = line
	p.start = (p.start + 1) % h
}

// view returns the visible lines: the retained ring plus the unfinished line,
// trimmed to Height and truncated to Width.
func (p *Panel) view() []string {
	lines := make([]string, 0, p.count+1)
	for i := range p.count {
		lines = append(lines, p.ring[(p.start+i)%len(p.ring)])
	}
	if len(p.cur) > 0 {
		lines = append(lines, string(p.cur))
	}
	if extra := len(lines) - p.opts.Height; extra > 0 {
		lines = lines[extra:]
	}
	if p.opts.Width > 0 {
		for i, l := range lines {
			if ansi.StringWidth(l) > p.opts.Width {
				lines[i] = ansi.Truncate(l, p.opts.Width, ellipsis)
			}
		}
	}
	return lines
}

func (p *Panel) redraw() {
	var b strings.Builder
	b.WriteString(p.clearSeq())
	lines := p.view()
	for _, l := range lines {
		b.WriteString(ansi.EraseEntireLine)
		b.WriteString(l)
		// Reset so styling from a truncated line does not leak into the next.
		b.WriteString(ansi.ResetStyle)
		b.WriteString("\r\n")
	}
	p.drawn = len(lines)
	p.emit(b.String())
}

// clearSeq moves the cursor back to the top of the drawn region.
func (p *Panel) clearSeq() string {
	if p.drawn == 0 {
		return ""
	}
	return "\r" + ansi.CursorUp(p.drawn) + ansi.EraseScreenBelow
}

func (p *Panel) emit(s string) {
	if p.lastErr != nil || s == "" {
		return
	}
	if _, err := io.WriteString(p.out, s); err != nil {
		p.lastErr = err
	}
}

// Lines returns a snapshot of the visible lines.
func (p *Panel) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view()
}

// Total is the number of lines committed so far, retained or not.
func (p *Panel) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Close erases the live region and prints the final framed view, titled
// with the panel title and status. Closing twice is a no-op.
func (p *Panel) Close(status string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.opts.Live {
		p.emit(p.clearSeq())
		p.drawn = 0
	}
	p.emit(p.render(status) + "\n")
	return p.lastErr
}

func (p *Panel) render(status string) string {
	header := titleStyle.Render(p.opts.Title)
	if status != "" {
		header += " " + statusStyle.Render(status)
	}
	if hidden := p.total - p.count; hidden > 0 {
		header += " " + statusStyle.Render(fmt.Sprintf("(%d earlier lines hidden)", hidden))
	}

	body := strings.Join(p.view(), "\n")
	if body == "" {
		body = statusStyle.Render("no output")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, frameStyle.Render(body))
}
