// Package ui renders sgpt's terminal output: streamed completion chunks,
// transcripts, listings and the interactive action prompt.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"sgpt/model"
	"sgpt/role"
)

const defaultWidth = 80

// Renderer writes completion output. When the destination is not a
// terminal, styling and markdown rendering are skipped so piped output
// stays plain.
type Renderer struct {
	out   io.Writer
	tty   bool
	width int
}

// NewRenderer builds a renderer for stdout, probing terminal width once.
func NewRenderer() *Renderer {
	r := &Renderer{out: os.Stdout, width: defaultWidth}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		r.tty = true
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			r.width = w
		}
	}
	return r
}

// Chunk writes one streamed chunk as it arrives.
func (r *Renderer) Chunk(chunk string) {
	fmt.Fprint(r.out, chunk)
}

// EndCompletion terminates the streamed output line.
func (r *Renderer) EndCompletion() {
	fmt.Fprintln(r.out)
}

// Completion renders a full (non-streamed or replayed) completion. Plain
// text and description shapes get markdown rendering on a terminal;
// shell and code shapes always stay verbatim so they can be copied or
// executed unchanged.
func (r *Renderer) Completion(text string, shape role.OutputShape) {
	if r.tty && (shape == role.ShapeText || shape == role.ShapeDescription) {
		rendered := markdown.Render(text, r.width, 0)
		fmt.Fprintln(r.out, strings.TrimRight(string(rendered), "\n"))
		return
	}
	fmt.Fprintln(r.out, text)
}

// Transcript prints a conversation in order with role-colored prefixes.
func (r *Renderer) Transcript(messages []model.Message) {
	for _, msg := range messages {
		prefix := msg.Role + ": "
		if r.tty {
			switch msg.Role {
			case model.RoleUser:
				prefix = UserStyle.Render(prefix)
			case model.RoleAssistant:
				prefix = AssistantStyle.Render(prefix)
			default:
				prefix = DimStyle.Render(prefix)
			}
		}
		fmt.Fprintf(r.out, "%s%s\n", prefix, msg.Content)
	}
}

// List prints ids or names one per line, truncated to the terminal width.
func (r *Renderer) List(items []string) {
	for _, item := range items {
		if r.tty && runewidth.StringWidth(item) > r.width {
			item = runewidth.Truncate(item, r.width-3, "...")
		}
		fmt.Fprintln(r.out, item)
	}
}

// Info prints a dimmed informational line.
func (r *Renderer) Info(text string) {
	if r.tty {
		text = DimStyle.Render(text)
	}
	fmt.Fprintln(r.out, text)
}

// ActionPrompt prints the interactive action choices without a newline.
func (r *Renderer) ActionPrompt(text string) {
	if r.tty {
		text = ActionStyle.Render(text)
	}
	fmt.Fprint(r.out, text+" ")
}

// Prompt prints the REPL input prompt without a newline.
func (r *Renderer) Prompt(text string) {
	if r.tty {
		text = PromptStyle.Render(text)
	}
	fmt.Fprint(r.out, text)
}
