// SPDX-License-Identifier: MPL-2.0

package panel

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestPanel_KeepsLastLines(t *testing.T) {
	t.Parallel()

	p := New(&bytes.Buffer{}, Options{Height: 3})
	for i := range 10 {
		fmt.Fprintf(p, "line %d\n", i)
	}

	want := []string{"line 7", "line 8", "line 9"}
	if got := p.Lines(); !slices.Equal(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
	if p.Total() != 10 {
		t.Errorf("Total() = %d, want 10", p.Total())
	}
}

func TestPanel_LineSplitting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		writes []string
		want   []string
	}{
		{"split across writes", []string{"Comp", "iling foo\nFin", "ished"}, []string{"Compiling foo", "Finished"}},
		{"crlf is a newline", []string{"a\r\nb\r\n"}, []string{"a", "b"}},
		{"crlf split across writes", []string{"a\r", "\nb\n"}, []string{"a", "b"}},
		{"carriage return rewrites", []string{"Building [=>  ] 1/3\rBuilding [==> ] 2/3\rBuilding [===>] 3/3\n"}, []string{"Building [===>] 3/3"}},
		{"unfinished progress line", []string{"done\n", "50%\r", "75%"}, []string{"done", "75%"}},
		{"empty lines kept", []string{"a\n\nb\n"}, []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(&bytes.Buffer{}, Options{Height: 10})
			for _, w := range tt.writes {
				if _, err := p.Write([]byte(w)); err != nil {
					t.Fatal(err)
				}
			}
			if got := p.Lines(); !slices.Equal(got, tt.want) {
				t.Errorf("Lines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPanel_UnfinishedLineCountsTowardHeight(t *testing.T) {
	t.Parallel()

	p := New(&bytes.Buffer{}, Options{Height: 2})
	_, _ = p.Write([]byte("a\nb\nc\npartial"))

	want := []string{"c", "partial"}
	if got := p.Lines(); !slices.Equal(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
}

func TestPanel_TruncatesByDisplayWidth(t *testing.T) {
	t.Parallel()

	p := New(&bytes.Buffer{}, Options{Height: 2, Width: 8})
	_, _ = p.Write([]byte("\x1b[31merror\x1b[0m: mismatched types\nshort\n"))

	lines := p.Lines()
	if w := ansi.StringWidth(lines[0]); w != 8 {
		t.Errorf("width of %q = %d, want 8", lines[0], w)
	}
	if !strings.HasSuffix(ansi.Strip(lines[0]), ellipsis) {
		t.Errorf("truncated line %q should end with an ellipsis", lines[0])
	}
	if !strings.Contains(lines[0], "\x1b[31m") {
		t.Errorf("truncation should keep styling: %q", lines[0])
	}
	if lines[1] != "short" {
		t.Errorf("short line changed: %q", lines[1])
	}
}

func TestPanel_LiveRedraw(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(&out, Options{Height: 2, Live: true})
	_, _ = p.Write([]byte("one\n"))
	first := out.String()
	if strings.Contains(first, ansi.CursorUp(1)) {
		t.Errorf("first draw should not move the cursor up: %q", first)
	}

	_, _ = p.Write([]byte("two\n"))
	if !strings.Contains(out.String()[len(first):], ansi.CursorUp(1)) {
		t.Errorf("second draw should move up over the first: %q", out.String())
	}
}

func TestPanel_Close(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(&out, Options{Height: 2, Title: "build"})
	_, _ = p.Write([]byte("a\nb\nc\n"))

	if err := p.Close("exit 0"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	got := ansi.Strip(out.String())
	for _, want := range []string{"build", "exit 0", "1 earlier lines hidden", "╭", "╰", "b", "c"} {
		if !strings.Contains(got, want) {
			t.Errorf("Close() output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "│ a") {
		t.Errorf("dropped line rendered:\n%s", got)
	}

	if _, err := p.Write([]byte("late\n")); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after Close error = %v, want ErrClosed", err)
	}
	if err := p.Close("again"); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestPanel_CloseWithoutOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(&out, Options{Height: 0, Title: "check"})
	if err := p.Close(""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ansi.Strip(out.String()), "no output") {
		t.Errorf("output = %q", out.String())
	}
}

func TestPanel_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	p := New(&bytes.Buffer{}, Options{Height: 5, Live: true})
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for j := range 50 {
				fmt.Fprintf(p, "w%d %d\n", i, j)
			}
		})
	}
	wg.Wait()

	if p.Total() != 400 {
		t.Errorf("Total() = %d, want 400", p.Total())
	}
	if n := len(p.Lines()); n != 5 {
		t.Errorf("len(Lines()) = %d, want 5", n)
	}
}
