package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nitpy-cse/assetreg/internal/client"
)

// GlobalFlags are shared by every subcommand.
type GlobalFlags struct {
	ServerURL   string
	SessionFile string
	Offline     bool
	Timeout     time.Duration
	LogLevel    string
}

func NewGlobalFlags() *GlobalFlags {
	return &GlobalFlags{
		ServerURL: client.DefaultServerURL,
		Timeout:   30 * time.Second,
		LogLevel:  "warn",
	}
}

func (f *GlobalFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ServerURL, "server", f.ServerURL, "Base URL of the asset register API")
	fs.StringVar(&f.SessionFile, "session", f.SessionFile, "Session file (default: <user config dir>/assetreg/session.json)")
	fs.BoolVar(&f.Offline, "offline", f.Offline, "Answer from sample data when the backend is unreachable")
	fs.DurationVar(&f.Timeout, "timeout", f.Timeout, "HTTP request timeout")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Log level (debug,info,warn,error)")
}

// setupLogger sends log output to stderr so it never mixes with tables.
func (f *GlobalFlags) setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.LogLevel)); err != nil {
		return fmt.Errorf("cannot parse log-level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// Client builds an API client from the flags.
func (f *GlobalFlags) Client() (*client.Client, error) {
	sessionFile := f.SessionFile
	if sessionFile == "" {
		var err error
		sessionFile, err = client.DefaultSessionFile()
		if err != nil {
			return nil, err
		}
	}

	opts := []client.Option{
		client.WithServerURL(f.ServerURL),
		client.WithSessionFile(sessionFile),
	}
	if f.Timeout > 0 {
		opts = append(opts, client.WithHTTPClient(&http.Client{Timeout: f.Timeout}))
	}
	if f.Offline {
		opts = append(opts, client.WithOfflineFallback(client.DefaultOfflineDelay))
	}
	return client.New(opts...)
}

// NewRootCommand assembles the assetctl command tree.
func NewRootCommand() *cobra.Command {
	f := NewGlobalFlags()

	cmd := &cobra.Command{
		Use:   "assetctl",
		Short: "Command-line client for the university asset register",
		Long: `assetctl lists, edits and exports the asset register, and lets a head of
department manage user accounts and review login activity.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return f.setupLogger()
		},
	}
	f.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		NewLoginCommand(f),
		NewLogoutCommand(f),
		NewWhoAmICommand(f),
		NewAssetsCommand(f),
		NewUsersCommand(f),
		NewLogsCommand(f),
	)
	return cmd
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
