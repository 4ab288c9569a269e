package handler

import (
	"bufio"
	"context"
	"io"
	"strings"

	"sgpt/model"
	"sgpt/role"
	"sgpt/ui"
)

const replPrompt = ">>> "

// REPL is the interactive loop: read a prompt line, dispatch it against
// one conversation, render the streamed result, repeat. It terminates
// only on interrupt or end of input.
type REPL struct {
	dispatcher *Dispatcher
	renderer   *ui.Renderer
	chatID     string
	role       *role.SystemRole
	opts       model.CompletionOptions
}

// NewREPL binds a REPL to one conversation id. Interactive sessions are
// typically paired with an explicit id so history survives restarts; the
// default scratch id works but is cleared by the next non-chat run.
func NewREPL(dispatcher *Dispatcher, renderer *ui.Renderer, chatID string, activeRole *role.SystemRole, opts model.CompletionOptions) *REPL {
	return &REPL{
		dispatcher: dispatcher,
		renderer:   renderer,
		chatID:     chatID,
		role:       activeRole,
		opts:       opts,
	}
}

// Run drives the loop until ctx is cancelled or input reaches EOF.
// A non-empty initialPrompt is dispatched as the session's first turn,
// ahead of interactively typed turns.
func (r *REPL) Run(ctx context.Context, input io.Reader, initialPrompt string) error {
	r.renderer.Info("Entering REPL mode, press Ctrl+C to exit.")

	if initialPrompt != "" {
		r.renderer.Prompt(replPrompt)
		r.renderer.Chunk(initialPrompt + "\n")
		if err := r.turn(ctx, initialPrompt); err != nil {
			return err
		}
	}

	lines := readLines(input)
	for {
		r.renderer.Prompt(replPrompt)

		select {
		case <-ctx.Done():
			r.renderer.EndCompletion()
			return nil
		case line, ok := <-lines:
			if !ok {
				r.renderer.EndCompletion()
				return nil
			}
			prompt := strings.TrimSpace(line)
			if prompt == "" {
				continue
			}
			if err := r.turn(ctx, prompt); err != nil {
				return err
			}
		}
	}
}

func (r *REPL) turn(ctx context.Context, prompt string) error {
	_, err := r.dispatcher.Complete(ctx, Request{
		Prompt:  prompt,
		ChatID:  r.chatID,
		Role:    r.role,
		Options: r.opts,
		Stream:  true,
	})
	return err
}

// readLines feeds input lines to a channel so the loop can select on
// interrupt while blocked on the terminal.
func readLines(input io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
