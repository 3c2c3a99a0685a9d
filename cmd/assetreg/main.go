package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nitpy-cse/assetreg/internal/api"
	"github.com/nitpy-cse/assetreg/internal/config"
	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/store"
)

const banner = "University Assets Backend API"

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("assetreg", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var hodEmail string
	fs.StringVar(&hodEmail, "email", defaultHODEmail, "")
	fs.StringVar(&hodEmail, "e", defaultHODEmail, "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var seed bool
	fs.BoolVar(&seed, "seed", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: assetreg [flags]

Flags:
  -c, -config <path>      YAML config file (default: config.yaml if present)
  -d, -db <path>          SQLite database path (default: $DATABASE_PATH or assetreg.sqlite3)
  -a, -addr <host:port>   listen address (default: :$PORT, port 5000)
  -e, -email <address>    HOD account email on first run (default: `+defaultHODEmail+`)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
      -seed               insert sample assets into an empty register
  -h, -help               show this help and exit

Environment:
  PORT, DATABASE_DRIVER (sqlite|postgres), DATABASE_PATH, DATABASE_URL,
  JWT_SECRET, CORS_ALLOWED_ORIGINS, LOG_PATH. A .env file is loaded if present.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the loaded configuration.
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if addr == "" {
		addr = cfg.Addr()
	}
	if logPath == "" {
		logPath = cfg.Log.Path
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg, addr, hodEmail, seed); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, addr, hodEmail string, seed bool) error {
	dialect := db.Dialect(cfg.Database.Driver)
	database, err := db.Open(dialect, cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "driver", dialect)

	ctx := context.Background()

	password, err := bootstrapHOD(ctx, database, hodEmail)
	if err != nil {
		return err
	}
	if password != "" {
		printInitResult(hodEmail, password)
	}

	if seed {
		n, err := seedAssets(ctx, database)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("sample assets inserted", "count", n)
		}
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		// Auto-generated on first run and kept in the settings table.
		jwtSecret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(database, jwtSecret))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, banner)
	})

	handler := api.RecoveryMiddleware(
		api.LoggingMiddleware(
			api.MetricsMiddleware(
				api.CORS(cfg.Server.CorsAllowedOrigins)(mux),
			),
		),
	)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
