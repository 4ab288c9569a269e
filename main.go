package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sgpt/cache"
	"sgpt/config"
	"sgpt/handler"
	"sgpt/model"
	"sgpt/provider"
	"sgpt/role"
	"sgpt/storage"
	"sgpt/ui"
)

const Version = "v1.0.0"

type cliOptions struct {
	modelID       string
	temperature   float64
	topP          float64
	useCache      bool
	shell         bool
	describeShell bool
	code          bool
	chatID        string
	interactive   bool
	showChat      bool
	deleteChat    bool
	listChats     bool
	showHistory   bool
	roleName      string
	createRole    string
	showRole      string
	listRoles     bool
	deleteRole    string
	providerID    string
}

func main() {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "sgpt [prompt]",
		Short:         "Command-line assistant powered by large language models",
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts, args)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.modelID, "model", "", "large language model to use")
	flags.Float64Var(&opts.temperature, "temperature", 0.1, "randomness of generated output (0.0-2.0)")
	flags.Float64Var(&opts.topP, "top-p", 1.0, "limits highest probable tokens (0.1-1.0)")
	flags.BoolVar(&opts.useCache, "cache", true, "cache completion results")
	flags.BoolVarP(&opts.shell, "shell", "s", false, "generate and execute shell commands")
	flags.BoolVar(&opts.describeShell, "describe-shell", false, "describe a shell command")
	flags.BoolVarP(&opts.code, "code", "c", false, "generate only code")
	flags.StringVar(&opts.chatID, "chat", storage.TempChatID, "follow conversation with this id; the default id is cleared on every new run")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "start a REPL session bound to --chat")
	flags.BoolVarP(&opts.showChat, "show-chat", "p", false, "print all messages from the --chat conversation")
	flags.BoolVarP(&opts.deleteChat, "delete-chat", "d", false, "delete the --chat conversation")
	flags.BoolVarP(&opts.listChats, "list-chats", "l", false, "list all conversation ids")
	flags.BoolVar(&opts.showHistory, "show-history", false, "list recently executed generated commands")
	flags.StringVarP(&opts.roleName, "role", "r", "", "system role for the completion")
	flags.StringVar(&opts.createRole, "create-role", "", "create a role with the given name; the prompt argument becomes its system prompt")
	flags.StringVar(&opts.showRole, "show-role", "", "show a role definition")
	flags.BoolVar(&opts.listRoles, "list-roles", false, "list all roles")
	flags.StringVar(&opts.deleteRole, "delete-role", "", "delete a user-defined role")
	flags.StringVar(&opts.providerID, "provider", "", "completion provider: openai, openrouter, anthropic or ollama")

	// Mode flags are mutually exclusive; cobra rejects the combination
	// with a usage error before any core logic runs.
	rootCmd.MarkFlagsMutuallyExclusive("shell", "describe-shell", "code")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// An interrupt mid-completion is not a failure worth reporting.
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts *cliOptions, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.InitDebugLog(cfg.DataDir())

	// Config supplies sampling defaults; explicit flags win.
	if !cmd.Flags().Changed("temperature") {
		opts.temperature = cfg.Temperature
	}
	if !cmd.Flags().Changed("top-p") {
		opts.topP = cfg.TopP
	}

	renderer := ui.NewRenderer()

	roles, err := role.NewRegistry(config.GetRolesDir())
	if err != nil {
		return err
	}

	prompt := strings.TrimSpace(strings.Join(args, " "))
	stdinPiped := !term.IsTerminal(int(os.Stdin.Fd()))

	if stdinPiped && !opts.interactive {
		piped, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		if text := strings.TrimSpace(string(piped)); text != "" {
			if prompt != "" {
				prompt = text + "\n\n" + prompt
			} else {
				prompt = text
			}
		}
	}

	// Role management runs before any completion machinery is built.
	if handled, err := runRoleCommands(opts, roles, renderer, prompt); handled {
		return err
	}

	chats, err := storage.NewChatStorage(cfg.DataDir())
	if err != nil {
		return err
	}

	// Chat management commands only inspect or drop stored state.
	if handled, err := runChatCommands(opts, chats, renderer); handled {
		return err
	}

	if opts.showHistory {
		history, err := storage.NewRunHistory(cfg.DataDir())
		if err != nil {
			return err
		}
		defer history.Close()

		records, err := history.Recent(25)
		if err != nil {
			return err
		}
		renderer.List(formatRunRecords(records))
		return nil
	}

	activeRole, err := roles.Resolve(opts.shell, opts.describeShell, opts.code, opts.roleName)
	if err != nil {
		return err
	}

	if prompt == "" && !opts.interactive {
		return errors.New("missing prompt argument (see --help)")
	}

	// The scratch conversation never leaks state between unrelated runs.
	if opts.chatID == storage.TempChatID && !opts.interactive {
		if err := chats.ResetTemp(); err != nil {
			return err
		}
	}

	prov, err := buildProvider(cfg, opts)
	if err != nil {
		return err
	}
	// An explicitly chosen provider is verified up front so a typo'd
	// endpoint fails with a reachability error, not mid-dispatch.
	if opts.providerID != "" {
		if err := verifyProvider(ctx, prov, opts.providerID); err != nil {
			return err
		}
	}

	if err := config.EnsureDir(config.GetCacheDir()); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	cacheStore, err := cache.NewStore(config.GetCacheDir(), cfg.CacheEntries)
	if err != nil {
		return err
	}
	defer cacheStore.Close()
	cacheStore.SetDisabled(!opts.useCache)

	completionOpts := model.CompletionOptions{
		Model:       opts.modelID,
		Temperature: opts.temperature,
		TopP:        opts.topP,
	}
	dispatcher := handler.NewDispatcher(prov, chats, cacheStore, renderer, cfg.ChatHistory)

	if opts.interactive {
		repl := handler.NewREPL(dispatcher, renderer, opts.chatID, activeRole, completionOpts)
		return repl.Run(ctx, os.Stdin, prompt)
	}

	completion, err := dispatcher.Complete(ctx, handler.Request{
		Prompt:  prompt,
		ChatID:  opts.chatID,
		Role:    activeRole,
		Options: completionOpts,
		Stream:  true,
	})
	if err != nil {
		return err
	}

	if !handler.Applies(activeRole.Shape) {
		return nil
	}

	if stdinPiped {
		// No terminal to prompt on. Only the execute-without-asking
		// policy may run a generated command unattended.
		if activeRole.Shape == role.ShapeShell && cfg.ExecuteShell {
			return runUnattended(ctx, cfg, prompt, completion)
		}
		return nil
	}

	history, err := storage.NewRunHistory(cfg.DataDir())
	if err != nil {
		return err
	}
	defer history.Close()

	controller := handler.NewController(dispatcher, roles, history, renderer, os.Stdin, cfg.ExecuteShell, completionOpts)
	return controller.Run(ctx, prompt, completion, activeRole.Shape)
}

func runUnattended(ctx context.Context, cfg *config.Config, prompt, completion string) error {
	history, err := storage.NewRunHistory(cfg.DataDir())
	if err != nil {
		return err
	}
	defer history.Close()

	exitCode, err := handler.RunShellCommand(ctx, completion)
	if err != nil {
		return err
	}
	if err := history.Record(prompt, completion, exitCode); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("run history write failed: %v", err)
	}
	return nil
}

func runRoleCommands(opts *cliOptions, roles *role.Registry, renderer *ui.Renderer, prompt string) (bool, error) {
	switch {
	case opts.listRoles:
		names, err := roles.List()
		if err != nil {
			return true, err
		}
		renderer.List(names)
		return true, nil

	case opts.showRole != "":
		r, err := roles.Get(opts.showRole)
		if err != nil {
			return true, err
		}
		renderer.Info(fmt.Sprintf("%s (%s)", r.Name, r.Shape))
		renderer.Completion(r.Prompt, role.ShapeText)
		return true, nil

	case opts.createRole != "":
		if prompt == "" {
			return true, errors.New("missing role prompt: pass the system prompt as the positional argument")
		}
		if err := roles.Create(opts.createRole, prompt, createShape(opts)); err != nil {
			return true, err
		}
		renderer.Info(fmt.Sprintf("Role %q created.", opts.createRole))
		return true, nil

	case opts.deleteRole != "":
		if err := roles.Delete(opts.deleteRole); err != nil {
			return true, err
		}
		renderer.Info(fmt.Sprintf("Role %q deleted.", opts.deleteRole))
		return true, nil
	}

	return false, nil
}

func runChatCommands(opts *cliOptions, chats *storage.ChatStorage, renderer *ui.Renderer) (bool, error) {
	switch {
	case opts.listChats:
		ids, err := chats.ListIDs()
		if err != nil {
			return true, err
		}
		renderer.List(ids)
		return true, nil

	case opts.showChat:
		messages, err := chats.Read(opts.chatID)
		if err != nil {
			return true, err
		}
		renderer.Transcript(messages)
		return true, nil

	case opts.deleteChat:
		if err := chats.Delete(opts.chatID); err != nil {
			return true, err
		}
		renderer.Info(fmt.Sprintf("Conversation %q deleted.", opts.chatID))
		return true, nil
	}

	return false, nil
}

// createShape maps the mode flags to the output shape of a role being
// created. Cobra has already rejected conflicting combinations.
func createShape(opts *cliOptions) role.OutputShape {
	switch {
	case opts.shell:
		return role.ShapeShell
	case opts.describeShell:
		return role.ShapeDescription
	case opts.code:
		return role.ShapeCode
	default:
		return role.ShapeText
	}
}

// verifyProvider pings the provider before any completion is dispatched.
func verifyProvider(ctx context.Context, prov model.Provider, id string) error {
	if err := prov.Ping(ctx); err != nil {
		return fmt.Errorf("provider %q is not reachable: %w", id, err)
	}
	return nil
}

func formatRunRecords(records []storage.RunRecord) []string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("%s  [%d]  %s",
			r.ExecutedAt.Format("2006-01-02 15:04"), r.ExitCode, r.Command)
	}
	return lines
}

func buildProvider(cfg *config.Config, opts *cliOptions) (model.Provider, error) {
	providerID := cfg.DefaultProvider
	if opts.providerID != "" {
		providerID = opts.providerID
	}

	creds, err := config.LoadCredentials(cfg.DataDir())
	if err != nil {
		return nil, err
	}

	provCfg := provider.Config{
		Type:   provider.MapProviderIDToType(providerID),
		Model:  cfg.DefaultModel,
		APIKey: creds.APIKey(providerID),
	}
	if override, ok := cfg.ProviderByID(providerID); ok {
		provCfg.BaseURL = override.BaseURL
		if override.Model != "" {
			provCfg.Model = override.Model
		}
	}

	return provider.NewProvider(provCfg)
}
