package client

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
)

// TerminalRenderer prints user turns as plain text and model turns as
// markdown rendered by glamour.
type TerminalRenderer struct {
	out      io.Writer
	markdown *glamour.TermRenderer
	now      func() time.Time

	mu sync.Mutex
}

func NewTerminalRenderer(out io.Writer, wordWrap int) (*TerminalRenderer, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create markdown renderer: %w", err)
	}
	return &TerminalRenderer{out: out, markdown: md, now: time.Now}, nil
}

func (r *TerminalRenderer) RenderUser(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "you  %s  %s\n", r.stamp(), text)
}

func (r *TerminalRenderer) RenderModel(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rendered, err := r.markdown.Render(text)
	if err != nil {
		rendered = text + "\n"
	}
	fmt.Fprintf(r.out, "bot  %s\n%s", r.stamp(), rendered)
}

func (r *TerminalRenderer) ShowPending() func() {
	r.mu.Lock()
	fmt.Fprint(r.out, "bot  Thinking...")
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			// erase the placeholder line
			fmt.Fprint(r.out, "\r\033[K")
		})
	}
}

func (r *TerminalRenderer) RenderFailure(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "bot  %s  %s\n", r.stamp(), text)
}

func (r *TerminalRenderer) stamp() string {
	return r.now().Format("15:04")
}
