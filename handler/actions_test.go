package handler

import (
	"context"
	"strings"
	"testing"

	"sgpt/model"
	"sgpt/role"
	"sgpt/ui"
)

func TestApplies(t *testing.T) {
	tests := []struct {
		shape role.OutputShape
		want  bool
	}{
		{role.ShapeShell, true},
		{role.ShapeCode, true},
		{role.ShapeText, false},
		{role.ShapeDescription, false},
	}

	for _, tt := range tests {
		if got := Applies(tt.shape); got != tt.want {
			t.Errorf("Applies(%q) = %v, want %v", tt.shape, got, tt.want)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name     string
		shape    role.OutputShape
		choice   string
		kind     actionKind
		terminal bool
	}{
		{"shell execute", role.ShapeShell, "e", actExecute, true},
		{"shell legacy yes", role.ShapeShell, "y", actExecute, true},
		{"shell copy loops", role.ShapeShell, "c", actCopy, false},
		{"shell describe loops", role.ShapeShell, "d", actDescribe, false},
		{"shell abort", role.ShapeShell, "a", actAbort, true},
		{"code copy", role.ShapeCode, "c", actCopy, true},
		{"code abort", role.ShapeCode, "a", actAbort, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := transitions[tt.shape][tt.choice]
			if !ok {
				t.Fatalf("no transition for shape %q choice %q", tt.shape, tt.choice)
			}
			if tr.kind != tt.kind {
				t.Errorf("expected kind %d, got %d", tt.kind, tr.kind)
			}
			if tr.terminal != tt.terminal {
				t.Errorf("expected terminal=%v, got %v", tt.terminal, tr.terminal)
			}
		})
	}

	// No execute and no describe for code completions.
	for _, choice := range []string{"e", "y", "d"} {
		if _, ok := transitions[role.ShapeCode][choice]; ok {
			t.Errorf("code shape must not offer %q", choice)
		}
	}
}

func TestDefaultChoice(t *testing.T) {
	tests := []struct {
		name        string
		shape       role.OutputShape
		autoExecute bool
		want        string
	}{
		{"shell without auto-execute aborts", role.ShapeShell, false, "a"},
		{"shell with auto-execute executes", role.ShapeShell, true, "e"},
		{"code never auto-executes", role.ShapeCode, true, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Controller{autoExecute: tt.autoExecute}
			if got := c.defaultChoice(tt.shape); got != tt.want {
				t.Errorf("defaultChoice(%q) = %q, want %q", tt.shape, got, tt.want)
			}
		})
	}
}

// newTestController builds a controller whose choice input is the given
// script. Tests drive it only through abort paths so no dispatcher,
// history or clipboard is touched.
func newTestController(script string) *Controller {
	return &Controller{
		renderer: ui.NewRenderer(),
		input:    strings.NewReader(script),
		opts:     model.CompletionOptions{},
	}
}

func TestRunAbort(t *testing.T) {
	c := newTestController("a\n")
	if err := c.Run(context.Background(), "list files", "ls -la", role.ShapeShell); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunAbortsOnEOF(t *testing.T) {
	c := newTestController("")
	if err := c.Run(context.Background(), "list files", "ls -la", role.ShapeShell); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunEmptyChoiceUsesDefault(t *testing.T) {
	// autoExecute is off, so a bare return aborts.
	c := newTestController("\n")
	if err := c.Run(context.Background(), "list files", "ls -la", role.ShapeShell); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunRepromptsOnUnknownChoice(t *testing.T) {
	// "x" is not a choice; the machine must prompt again rather than
	// terminate, then honour the abort.
	c := newTestController("x\na\n")
	if err := c.Run(context.Background(), "list files", "ls -la", role.ShapeShell); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCodeShapeRejectsShellChoices(t *testing.T) {
	// Describe is a shell-only choice; for code it re-prompts.
	c := newTestController("d\na\n")
	if err := c.Run(context.Background(), "fibonacci", "def fib(n): ...", role.ShapeCode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunUppercaseChoiceAccepted(t *testing.T) {
	c := newTestController("A\n")
	if err := c.Run(context.Background(), "list files", "ls -la", role.ShapeShell); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Describe dispatches a one-shot sub-completion and returns to the
// prompt with the command still pending; it never persists anything.
func TestRunDescribeLoopsBackToPrompt(t *testing.T) {
	fix := newDispatcherFixture(t, &fakeProvider{chunks: []string{"lists directory contents"}})
	roles, err := role.NewRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create role registry: %v", err)
	}

	c := NewController(fix.dispatcher, roles, nil, ui.NewRenderer(),
		strings.NewReader("d\na\n"), false, testOptions())
	if err := c.Run(context.Background(), "list files", "ls -la", role.ShapeShell); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fix.provider.calls != 1 {
		t.Errorf("expected one describe dispatch, got %d", fix.provider.calls)
	}
	ids, err := fix.chats.ListIDs()
	if err != nil {
		t.Fatalf("failed to list ids: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("describe persisted a conversation: %v", ids)
	}
}

func TestRunNoTableIsNoOp(t *testing.T) {
	c := newTestController("e\n")
	if err := c.Run(context.Background(), "hello", "hi there", role.ShapeText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
