package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/pipedef/internal/app"
	"github.com/vk/pipedef/internal/emit"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flags holds the raw values bound to the command tree.
type flags struct {
	logLevel    string
	logFormat   string
	format      string
	out         string
	historyDB   string
	externalIDs []string
	properties  []string
	limit       int
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f      flags
		result *app.Config
	)
	// build runs inside a command's RunE once cobra has parsed its flags.
	build := func(cmd app.Command, paths []string) error {
		props, err := parseProperties(f.properties)
		if err != nil {
			return err
		}
		cfg, err := app.NewConfig(app.Config{
			Command:      cmd,
			Paths:        paths,
			Format:       emit.Format(f.format),
			OutPath:      f.out,
			HistoryDB:    f.historyDB,
			ExternalIDs:  f.externalIDs,
			Properties:   props,
			HistoryLimit: f.limit,
			LogFormat:    f.logFormat,
			LogLevel:     f.logLevel,
		})
		if err != nil {
			return err
		}
		result = cfg
		return nil
	}

	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root := newRootCommand(&f, build)
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if result == nil {
		slog.Debug("No command executed, exiting.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", result.Command)
	return result, false, nil
}

func newRootCommand(f *flags, build func(app.Command, []string) error) *cobra.Command {
	root := &cobra.Command{
		Use:   "pipedef",
		Short: "Declarative CI pipeline definitions",
		Long: `pipedef loads CI build type definitions from HCL files, validates every
cross-reference and emits a deterministic descriptor for the CI server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	emitCmd := &cobra.Command{
		Use:   "emit PATH...",
		Short: "Emit the descriptor for the definitions under PATH",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return build(app.CommandEmit, args)
		},
	}
	emitCmd.Flags().StringVarP(&f.format, "format", "f", string(emit.DefaultFormat), "Output format. Options: "+formatList()+".")
	emitCmd.Flags().StringVarP(&f.out, "out", "o", "", "Write the descriptor to this file instead of stdout.")
	emitCmd.Flags().StringVar(&f.historyDB, "history-db", "", "Record the emitted descriptor in this SQLite ledger.")
	addExternalIDFlag(emitCmd, f)

	validateCmd := &cobra.Command{
		Use:   "validate PATH...",
		Short: "Load and resolve the definitions without emitting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return build(app.CommandValidate, args)
		},
	}
	addExternalIDFlag(validateCmd, f)

	matchCmd := &cobra.Command{
		Use:   "match PATH...",
		Short: "List the build types an agent with the given properties can run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return build(app.CommandMatch, args)
		},
	}
	matchCmd.Flags().StringArrayVarP(&f.properties, "property", "p", nil, "Agent property as key=value. Repeatable.")
	addExternalIDFlag(matchCmd, f)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded descriptor emits, newest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return build(app.CommandHistory, nil)
		},
	}
	historyCmd.Flags().StringVar(&f.historyDB, "history-db", "", "SQLite ledger to read.")
	historyCmd.Flags().IntVarP(&f.limit, "limit", "n", 20, "Maximum number of entries. 0 lists all.")

	root.AddCommand(emitCmd, validateCmd, matchCmd, historyCmd)
	return root
}

func addExternalIDFlag(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringArrayVar(&f.externalIDs, "external-id", nil, "Known build type id in another project. Repeatable. When set, absolute dependencies must be listed.")
}

func formatList() string {
	var names []string
	for _, f := range emit.Formats() {
		names = append(names, "'"+string(f)+"'")
	}
	return strings.Join(names, ", ")
}

// parseProperties turns key=value pairs into a map. Later keys win.
func parseProperties(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	props := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q: expected key=value", kv)
		}
		props[key] = value
	}
	return props, nil
}
