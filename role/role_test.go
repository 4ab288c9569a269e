package role

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return registry
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		shell         bool
		describeShell bool
		code          bool
		explicit      string
		wantName      string
		wantShape     OutputShape
		wantErr       error
	}{
		{
			name:      "no flags resolves default assistant",
			wantName:  NameDefault,
			wantShape: ShapeText,
		},
		{
			name:      "shell flag resolves shell role",
			shell:     true,
			wantName:  NameShell,
			wantShape: ShapeShell,
		},
		{
			name:          "describe flag resolves describer",
			describeShell: true,
			wantName:      NameDescribeShell,
			wantShape:     ShapeDescription,
		},
		{
			name:      "code flag resolves code role",
			code:      true,
			wantName:  NameCode,
			wantShape: ShapeCode,
		},
		{
			name:    "shell and code conflict",
			shell:   true,
			code:    true,
			wantErr: ErrConflictingModes,
		},
		{
			name:          "all three flags conflict",
			shell:         true,
			describeShell: true,
			code:          true,
			wantErr:       ErrConflictingModes,
		},
		{
			name:     "unknown explicit role",
			explicit: "no-such-role",
			wantErr:  ErrUnknownRole,
		},
	}

	registry := newTestRegistry(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Resolve(tt.shell, tt.describeShell, tt.code, tt.explicit)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("expected role %q, got %q", tt.wantName, got.Name)
			}
			if got.Shape != tt.wantShape {
				t.Errorf("expected shape %q, got %q", tt.wantShape, got.Shape)
			}
		})
	}
}

// An explicit role name always overrides flag-derived selection.
func TestResolveExplicitOverridesFlags(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Create("custom-role", "You are a custom assistant.", ShapeText); err != nil {
		t.Fatalf("failed to create role: %v", err)
	}

	got, err := registry.Resolve(true, false, false, "custom-role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "custom-role" {
		t.Errorf("expected custom-role to win over shell flag, got %q", got.Name)
	}
}

func TestCreateRoundTrip(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Create("reviewer", "Review the given code.", ShapeText); err != nil {
		t.Fatalf("failed to create role: %v", err)
	}

	got, err := registry.Get("reviewer")
	if err != nil {
		t.Fatalf("failed to get role: %v", err)
	}
	if got.Prompt != "Review the given code." {
		t.Errorf("prompt did not round-trip: %q", got.Prompt)
	}
	if got.Shape != ShapeText {
		t.Errorf("shape did not round-trip: %q", got.Shape)
	}
}

func TestCreateDuplicate(t *testing.T) {
	registry := newTestRegistry(t)

	tests := []struct {
		name     string
		roleName string
		setup    func()
	}{
		{name: "built-in name reuse", roleName: NameShell},
		{
			name:     "existing user role",
			roleName: "twice",
			setup: func() {
				if err := registry.Create("twice", "first", ShapeText); err != nil {
					t.Fatalf("setup create failed: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			err := registry.Create(tt.roleName, "prompt", ShapeText)
			if !errors.Is(err, ErrDuplicateRole) {
				t.Errorf("expected ErrDuplicateRole, got %v", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Create("ephemeral", "prompt", ShapeText); err != nil {
		t.Fatalf("failed to create role: %v", err)
	}
	if err := registry.Delete("ephemeral"); err != nil {
		t.Fatalf("failed to delete role: %v", err)
	}

	if err := registry.Delete("ephemeral"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole on second delete, got %v", err)
	}
	if err := registry.Delete(NameDefault); err == nil {
		t.Error("expected error deleting a built-in role")
	}
}

func TestList(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Create("zeta", "p", ShapeText); err != nil {
		t.Fatalf("failed to create role: %v", err)
	}
	if err := registry.Create("alpha", "p", ShapeText); err != nil {
		t.Fatalf("failed to create role: %v", err)
	}

	// List must be restartable: two calls return the same sequence.
	for i := 0; i < 2; i++ {
		names, err := registry.List()
		if err != nil {
			t.Fatalf("failed to list roles: %v", err)
		}
		want := []string{NameDefault, NameShell, NameDescribeShell, NameCode, "alpha", "zeta"}
		if len(names) != len(want) {
			t.Fatalf("expected %d roles, got %d: %v", len(want), len(names), names)
		}
		for j, name := range want {
			if names[j] != name {
				t.Errorf("position %d: expected %q, got %q", j, name, names[j])
			}
		}
	}
}

func TestBuiltinPromptsInterpolateEnvironment(t *testing.T) {
	registry := newTestRegistry(t)

	shell, err := registry.Get(NameShell)
	if err != nil {
		t.Fatalf("failed to get shell role: %v", err)
	}
	if shell.Prompt == "" {
		t.Fatal("shell role has an empty prompt")
	}
}
