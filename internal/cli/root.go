// Package cli implements the corkboard command-line interface: people and
// their friendships, Kanban boards and their statuses, a packing list,
// Trello import, and git snapshots of the data directory.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/corkboard/internal/logging"
	"github.com/mesh-intelligence/corkboard/internal/paths"
	"github.com/mesh-intelligence/corkboard/internal/sqlite"
	"github.com/mesh-intelligence/corkboard/internal/trello"
	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
	jsonMode  bool
	yamlMode  bool
}

// app carries per-invocation state shared by subcommands.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper

	// newTrelloSource builds the Trello client; tests replace it.
	newTrelloSource func(apiKey, token string) (trello.Source, error)
}

func newApp() *app {
	return &app{
		newTrelloSource: func(apiKey, token string) (trello.Source, error) {
			return trello.NewClient(apiKey, token)
		},
	}
}

// NewRootCmd creates the top-level "corkboard" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "corkboard",
		Short: "People, friendships, and Kanban boards",
		Long: "Corkboard keeps a small social graph of people and their friendships\n" +
			"alongside Kanban boards with ordered status columns and a packing list.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config home)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data home)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&a.flags.yamlMode, "yaml", false, "output in YAML format")
	root.MarkFlagsMutuallyExclusive("json", "yaml")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(newVersionCmd(a))
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newPersonCmd(a))
	root.AddCommand(newFriendCmd(a))
	root.AddCommand(newBoardCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newPackingCmd(a))
	root.AddCommand(newSnapshotCmd(a))

	return root
}

// Execute runs the root command against the process arguments and exits
// with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup loads .env, config.yaml, and configures logging before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return systemError(fmt.Errorf("load .env: %w", err))
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir, a.flags.dataDir)
	if err != nil {
		return systemError(err)
	}
	a.configDir = configDir
	a.cfg = cfg

	level := a.flags.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	if level == "" {
		logging.Setup()
		return nil
	}
	logging.SetupWithLevel(logging.ParseLevel(level))
	return nil
}

// resolveDataDir applies the flag > config > env > default chain.
func (a *app) resolveDataDir() (string, error) {
	dir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return "", systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	return dir, nil
}

// attach resolves the data directory and attaches a SQLite backend. The
// caller must defer Detach.
func (a *app) attach() (*sqlite.Backend, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, err
	}
	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		if errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrBackendEmpty) {
			return nil, usageError(fmt.Errorf("attach backend %q: %w", cfg.Backend, err))
		}
		return nil, systemError(fmt.Errorf("attach backend: %w", err))
	}
	return backend, nil
}

// withTable attaches, hands the named table to fn, and detaches.
func (a *app) withTable(name string, fn func(types.Table) error) error {
	backend, err := a.attach()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(name)
	if err != nil {
		return systemError(err)
	}
	return classify(fn(table))
}
