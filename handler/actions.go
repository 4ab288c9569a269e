package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"sgpt/config"
	"sgpt/model"
	"sgpt/role"
	"sgpt/storage"
	"sgpt/ui"
)

// actionKind enumerates what an interactive choice does.
type actionKind int

const (
	actExecute actionKind = iota
	actCopy
	actDescribe
	actAbort
)

// transition is one row of the action table: what to do and whether the
// machine terminates afterwards. Copy in shell mode and Describe loop
// back to the prompt; everything else terminates.
type transition struct {
	kind     actionKind
	terminal bool
}

// transitions is the per-shape action table. Shapes without a table
// never enter the machine.
var transitions = map[role.OutputShape]map[string]transition{
	role.ShapeShell: {
		"e": {actExecute, true},
		"y": {actExecute, true}, // legacy alias for execute
		"c": {actCopy, false},
		"d": {actDescribe, false},
		"a": {actAbort, true},
	},
	role.ShapeCode: {
		"c": {actCopy, true},
		"a": {actAbort, true},
	},
}

var actionPrompts = map[role.OutputShape]string{
	role.ShapeShell: "[E]xecute, [C]opy, [D]escribe, [A]bort:",
	role.ShapeCode:  "[C]opy, [A]bort:",
}

// Controller is the post-completion state machine for shell and code
// completions. It is entered only when input comes from a terminal; a
// piped invocation never prompts and never auto-executes unless the
// execute-without-asking config flag is set.
type Controller struct {
	dispatcher  *Dispatcher
	roles       *role.Registry
	history     *storage.RunHistory
	renderer    *ui.Renderer
	input       io.Reader
	autoExecute bool
	opts        model.CompletionOptions
}

// NewController wires an action controller reading choices from input.
func NewController(dispatcher *Dispatcher, roles *role.Registry, history *storage.RunHistory, renderer *ui.Renderer, input io.Reader, autoExecute bool, opts model.CompletionOptions) *Controller {
	return &Controller{
		dispatcher:  dispatcher,
		roles:       roles,
		history:     history,
		renderer:    renderer,
		input:       input,
		autoExecute: autoExecute,
		opts:        opts,
	}
}

// Applies reports whether a completion of the given shape enters the
// action machine at all.
func Applies(shape role.OutputShape) bool {
	_, ok := transitions[shape]
	return ok
}

// Run prompts until a terminal action fires. prompt is the user prompt
// that produced the completion, recorded with executed commands.
func (c *Controller) Run(ctx context.Context, prompt, completion string, shape role.OutputShape) error {
	table, ok := transitions[shape]
	if !ok {
		return nil
	}

	reader := bufio.NewReader(c.input)
	for {
		c.renderer.ActionPrompt(actionPrompts[shape])

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			// EOF or closed terminal: same as abort.
			return nil
		}

		choice := strings.ToLower(strings.TrimSpace(line))
		if choice == "" {
			choice = c.defaultChoice(shape)
		} else {
			choice = choice[:1]
		}

		tr, ok := table[choice]
		if !ok {
			continue
		}

		if err := c.perform(ctx, tr.kind, prompt, completion); err != nil {
			return err
		}
		if tr.terminal {
			return nil
		}
	}
}

func (c *Controller) defaultChoice(shape role.OutputShape) string {
	if shape == role.ShapeShell && c.autoExecute {
		return "e"
	}
	return "a"
}

func (c *Controller) perform(ctx context.Context, kind actionKind, prompt, completion string) error {
	switch kind {
	case actExecute:
		exitCode, err := RunShellCommand(ctx, completion)
		if err != nil {
			return err
		}
		if c.history != nil {
			if err := c.history.Record(prompt, completion, exitCode); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("run history write failed: %v", err)
			}
		}
		return nil

	case actCopy:
		if err := clipboard.WriteAll(completion); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		c.renderer.Info("Copied to clipboard.")
		return nil

	case actDescribe:
		describer, err := c.roles.Get(role.NameDescribeShell)
		if err != nil {
			return err
		}
		// One-shot sub-completion over the pending command: cached like
		// any other request, never appended to a conversation.
		text, err := c.dispatcher.Complete(ctx, Request{
			Prompt:  completion,
			Role:    describer,
			Options: c.opts,
		})
		if err != nil {
			return err
		}
		c.renderer.Completion(text, role.ShapeDescription)
		return nil

	case actAbort:
		return nil

	default:
		return fmt.Errorf("unknown action kind %d", kind)
	}
}
