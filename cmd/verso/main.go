package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"verso/cmd/verso/config"
	"verso/internal/api"
	"verso/internal/bus"
	"verso/internal/importer"
	"verso/internal/library"
	"verso/internal/logging"
	"verso/internal/session"
	"verso/internal/store"
)

var (
	// Global flags
	verbose bool
	baseURL string
	timeout time.Duration

	// Logger for one-shot commands; the TUI has its own surfaces
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "verso",
	Short: "Verso - track your reading from the terminal",
	Long: `Verso is a terminal client for the Verso book tracker.

Shelve books, log reading progress, set yearly goals, import your Goodreads
library, and keep up with your reading circles.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "verso" && cmd.CalledAs() == "verso" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive interface
		return runTUI()
	},
}

// app bundles everything a command needs: config, session, gateway, stores.
type app struct {
	cfg      config.Config
	stateDir string
	client   *api.Client
	session  *session.Manager
	bus      *bus.Bus
	stores   *store.Set
	cache    *store.Cache
	library  *library.Service
	importer *importer.Importer
}

// newApp wires the full client stack. The session manager is the gateway's
// token source and its 401 hook; the stores subscribe to the bus; a failed
// snapshot cache open degrades to no cache rather than failing startup.
func newApp() (*app, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve state directory: %w", err)
	}
	if err := logging.Initialize(dir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: using default config: %v\n", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	sess := session.NewManager(dir)
	client := api.New(cfg.BaseURL,
		api.WithTokenSource(sess),
		api.WithAuthExpiredHook(sess.Expire),
	)
	sess.Bind(client)

	b := bus.New()
	cache, err := store.OpenCache(filepath.Join(dir, "snapshots.db"))
	if err != nil {
		logging.Boot("snapshot cache unavailable: %v", err)
		cache = nil
	}

	stores := store.NewSet(client, cache)
	stores.Hydrate(cache)
	stores.Bind(b)

	a := &app{
		cfg:      cfg,
		stateDir: dir,
		client:   client,
		session:  sess,
		bus:      b,
		stores:   stores,
		cache:    cache,
		library:  library.NewService(client, b),
		importer: importer.New(client, b),
	}

	// On forced logout everything cached for the old account goes.
	sess.OnExpire(func() {
		stores.Reset()
		if cache != nil {
			if err := cache.Clear(); err != nil {
				logging.Session("snapshot clear on expiry failed: %v", err)
			}
		}
	})

	return a, nil
}

// Close releases held resources.
func (a *app) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	logging.CloseAll()
}

// requireAuth fails fast for commands that need a session.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in; run: verso login")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend address (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(verifyEmailCmd)
	rootCmd.AddCommand(resendVerificationCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(circlesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
