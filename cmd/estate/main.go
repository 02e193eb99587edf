package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estate/estate/internal/client"
	"github.com/estate/estate/internal/config"
	"github.com/estate/estate/internal/directory"
	estatelog "github.com/estate/estate/internal/logger"
	"github.com/estate/estate/internal/people"
	"github.com/estate/estate/internal/ui"
)

var (
	configFile string
	schemaFlag string
	backendURL string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "estate",
	Short: "Digital estate directory client",
	Long: `estate browses and extends the people directory of a digital estate backend.

Run without arguments to open the interactive directory view.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadFile(configFile)

		c := config.Client()
		if cmd.Flags().Changed("schema") {
			c.Schema = schemaFlag
		}
		if cmd.Flags().Changed("backend") {
			c.BackendURL = backendURL
		}
		config.SetClient(c)
		if verbose {
			config.SetLogLevel("debug")
		}

		// the interactive view owns the terminal, so it logs to a file
		opts := estatelog.Options{
			Level:  config.Logger().Level,
			Format: config.Logger().Format,
		}
		if cmd == cmd.Root() {
			opts.OutputPath = config.Logger().File
		}

		var err error
		logger, err = estatelog.New(opts)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", configFileDefault(), "Config file")
	rootCmd.PersistentFlags().StringVar(&schemaFlag, "schema", "", "Person schema version (v1, v2 or v3)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configFileDefault() string {
	if f := os.Getenv("ESTATE_CONFIG_FILE"); f != "" {
		return f
	}
	return "estate.yaml"
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newSession builds a directory session from the loaded config
func newSession(ctx context.Context) (*directory.Session, error) {
	c := config.Client()

	schema, err := people.ParseSchema(c.Schema)
	if err != nil {
		return nil, err
	}

	backend := client.New(c.BackendURL, logger, client.WithTimeout(c.Timeout))
	logger.Debug("Session configured",
		zap.String("backend", backend.BaseURL()),
		zap.String("schema", string(schema)))

	return directory.NewSession(ctx, backend, schema, logger), nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	session, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	p := tea.NewProgram(ui.New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive view failed: %w", err)
	}
	return nil
}
