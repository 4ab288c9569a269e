// Package role maps mode flags and role names to the system prompt that
// conditions a completion, and owns persistence of user-defined roles.
//
// Exactly one role variant is active per invocation. The built-in mode
// flags (shell, describe-shell, code) are mutually exclusive; an explicit
// role name always overrides flag-derived selection.
package role

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// OutputShape is the expected form of a completion, determining which
// interactive actions apply afterwards.
type OutputShape string

const (
	ShapeText        OutputShape = "text"
	ShapeShell       OutputShape = "shell"
	ShapeCode        OutputShape = "code"
	ShapeDescription OutputShape = "description"
)

// Reserved names of the built-in role variants.
const (
	NameDefault       = "default"
	NameShell         = "shell"
	NameDescribeShell = "describe-shell"
	NameCode          = "code"
)

var (
	ErrConflictingModes = errors.New("conflicting mode flags: at most one of shell, describe-shell and code may be set")
	ErrUnknownRole      = errors.New("unknown role")
	ErrDuplicateRole    = errors.New("role already exists")
)

// SystemRole pairs a system prompt with the expected output shape.
type SystemRole struct {
	Name   string      `toml:"name"`
	Prompt string      `toml:"prompt"`
	Shape  OutputShape `toml:"shape"`
}

// Registry resolves built-in roles and persists user-defined roles as
// TOML files under a roles directory.
type Registry struct {
	rolesDir string
	builtins map[string]SystemRole
}

// NewRegistry creates a registry backed by rolesDir, creating the
// directory on first use (0700 - user-only access).
func NewRegistry(rolesDir string) (*Registry, error) {
	if err := os.MkdirAll(rolesDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create roles directory: %w", err)
	}

	osName := operatingSystemName()
	shellName := loginShellName()

	builtins := map[string]SystemRole{
		NameDefault: {
			Name:  NameDefault,
			Shape: ShapeText,
			Prompt: fmt.Sprintf("You are a programming and system administration assistant. "+
				"You are managing the %s operating system with the %s shell. "+
				"Provide short responses of about 100 words unless asked for more detail. "+
				"Apply Markdown formatting when a response contains a shell command, "+
				"but not when it contains file content or configuration.", osName, shellName),
		},
		NameShell: {
			Name:  NameShell,
			Shape: ShapeShell,
			Prompt: fmt.Sprintf("Provide only %s commands for the %s operating system, without any description. "+
				"If details are lacking, provide the most logical solution. "+
				"Ensure the output is a valid shell command. "+
				"If multiple steps are required, combine them with &&. "+
				"Provide only plain text, without Markdown formatting such as ```.", shellName, osName),
		},
		NameDescribeShell: {
			Name:  NameDescribeShell,
			Shape: ShapeDescription,
			Prompt: "Provide a terse, single sentence description of the given shell command. " +
				"Describe each argument and option of the command. " +
				"Provide short responses of about 80 words. " +
				"Apply Markdown formatting when possible.",
		},
		NameCode: {
			Name:  NameCode,
			Shape: ShapeCode,
			Prompt: "Provide only code as output, without any description. " +
				"Provide the code in plain text format, without Markdown formatting " +
				"such as ``` or ```python. " +
				"If details are lacking, provide the most logical solution. " +
				"You are not allowed to ask for more details.",
		},
	}

	return &Registry{rolesDir: rolesDir, builtins: builtins}, nil
}

// Resolve selects the role for an invocation. An explicit name wins over
// the mode flags; with neither, the default assistant role applies.
func (r *Registry) Resolve(shell, describeShell, code bool, explicit string) (*SystemRole, error) {
	set := 0
	for _, flag := range []bool{shell, describeShell, code} {
		if flag {
			set++
		}
	}
	if set > 1 {
		return nil, ErrConflictingModes
	}

	if explicit != "" {
		return r.Get(explicit)
	}

	switch {
	case shell:
		return r.builtin(NameShell), nil
	case describeShell:
		return r.builtin(NameDescribeShell), nil
	case code:
		return r.builtin(NameCode), nil
	default:
		return r.builtin(NameDefault), nil
	}
}

// Get looks up a role by name, built-ins first.
func (r *Registry) Get(name string) (*SystemRole, error) {
	if role, ok := r.builtins[name]; ok {
		copied := role
		return &copied, nil
	}

	path := r.rolePath(name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}

	var role SystemRole
	if _, err := toml.DecodeFile(path, &role); err != nil {
		return nil, fmt.Errorf("failed to parse role file for %q: %w", name, err)
	}
	if role.Name == "" {
		role.Name = name
	}
	if role.Shape == "" {
		role.Shape = ShapeText
	}

	return &role, nil
}

// Create persists a new user-defined role. Built-in names are reserved.
func (r *Registry) Create(name, prompt string, shape OutputShape) error {
	if _, ok := r.builtins[name]; ok {
		return fmt.Errorf("%w: %q is a built-in role", ErrDuplicateRole, name)
	}
	if _, err := os.Stat(r.rolePath(name)); err == nil {
		return fmt.Errorf("%w: %q", ErrDuplicateRole, name)
	}
	if shape == "" {
		shape = ShapeText
	}

	role := SystemRole{Name: name, Prompt: prompt, Shape: shape}

	f, err := os.OpenFile(r.rolePath(name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create role file for %q: %w", name, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(role); err != nil {
		return fmt.Errorf("failed to encode role %q: %w", name, err)
	}

	return nil
}

// Delete removes a user-defined role. Built-ins cannot be deleted and
// absent names are an error, matching Get semantics.
func (r *Registry) Delete(name string) error {
	if _, ok := r.builtins[name]; ok {
		return fmt.Errorf("cannot delete built-in role %q", name)
	}
	if err := os.Remove(r.rolePath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrUnknownRole, name)
		}
		return fmt.Errorf("failed to delete role %q: %w", name, err)
	}
	return nil
}

// List returns the names of all resolvable roles, built-ins first, then
// user roles sorted by name.
func (r *Registry) List() ([]string, error) {
	names := []string{NameDefault, NameShell, NameDescribeShell, NameCode}

	entries, err := os.ReadDir(r.rolesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles directory: %w", err)
	}

	var userRoles []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		userRoles = append(userRoles, strings.TrimSuffix(entry.Name(), ".toml"))
	}
	sort.Strings(userRoles)

	return append(names, userRoles...), nil
}

func (r *Registry) builtin(name string) *SystemRole {
	role := r.builtins[name]
	return &role
}

func (r *Registry) rolePath(name string) string {
	return filepath.Join(r.rolesDir, name+".toml")
}

func operatingSystemName() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	default:
		return runtime.GOOS
	}
}

func loginShellName() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		return "sh"
	}
	return filepath.Base(shell)
}
