package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/smmsclient/smms/internal/config"
	"github.com/smmsclient/smms/internal/logger"
	"github.com/smmsclient/smms/internal/promise"
	"github.com/smmsclient/smms/internal/smms"
	"github.com/smmsclient/smms/internal/storage"
	"github.com/smmsclient/smms/internal/ui"
)

var (
	configPath  string
	sessionPath string
	logFile     string
	baseURL     string
)

var rootCmd = &cobra.Command{
	Use:           "smms",
	Short:         "Terminal client for the sm.ms image host",
	Long:          "Log in to sm.ms, browse your upload history, upload and delete images, and check your quota from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}

		model := ui.NewModel(env.host, env.sessions, ui.Options{
			Username: env.cfg.Username,
			Actions:  ui.DefaultActions(),
		})
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/smms/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "path to the session token cache")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "sm.ms API base URL")
}

type environment struct {
	cfg      *config.Config
	sessions *storage.LocalRepository
	host     *smms.Provider
}

// setup loads configuration, applies flag overrides and wires the session
// store into the API client.
func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("session") {
		cfg.SessionFile = sessionPath
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogFile); err != nil {
		return nil, err
	}
	logger.Log("CLI: Starting %s (base URL %s)", cmd.CommandPath(), cfg.BaseURL)

	sessions, err := storage.NewLocalRepository(cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	sessions.Load()

	client, err := smms.NewClient(smms.Options{
		BaseURL:          cfg.BaseURL,
		Timeout:          cfg.Timeout,
		TokenSource:      sessions.TokenSource(cfg.AuthScheme),
		RawAuthorization: cfg.RawAuthorization(),
	})
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:      cfg,
		sessions: sessions,
		host:     smms.NewProvider(client, cfg.HistoryOrder),
	}, nil
}

// requireSession fails fast instead of sending a request without a token.
func (e *environment) requireSession() error {
	if !e.sessions.Current().LoggedIn() {
		return fmt.Errorf("%w: run 'smms login' first", storage.ErrNoSession)
	}
	return nil
}

// await runs fn in the background and blocks until it settles or ctx ends.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := promise.Spawn(fn).Wait(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Value, res.Err
}
