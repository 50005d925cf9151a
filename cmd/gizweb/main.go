package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ajramos/gmail-web/internal/config"
	"github.com/ajramos/gmail-web/internal/db"
	"github.com/ajramos/gmail-web/internal/server"
	"github.com/ajramos/gmail-web/internal/version"
	"github.com/ajramos/gmail-web/pkg/auth"
)

func main() {
	// Essential command line flags only (GNU-style double dashes)
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/gizweb/config.json)")
	credPathFlag := flag.String("credentials", "", "Path to OAuth client credentials JSON (default: ~/.config/gizweb/credentials.json)")
	listenFlag := flag.String("listen", "", "Listen address, overrides the config file (e.g. :8080)")
	setupFlag := flag.Bool("setup", false, "Run interactive setup wizard")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	// Override flag usage text to show clean, simple usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s                        # Run with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --setup                # Run interactive setup wizard\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --version              # Show version information\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config custom.json   # Use custom configuration\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --config string\n        %s\n", "Path to JSON configuration file (default: ~/.config/gizweb/config.json)")
		fmt.Fprintf(os.Stderr, "  --credentials string\n        %s\n", "Path to OAuth client credentials JSON (default: ~/.config/gizweb/credentials.json)")
		fmt.Fprintf(os.Stderr, "  --listen string\n        %s\n", "Listen address, overrides the config file (e.g. :8080)")
		fmt.Fprintf(os.Stderr, "  --setup\n        %s\n", "Run interactive setup wizard")
		fmt.Fprintf(os.Stderr, "  --version\n        %s\n\n", "Show version information and exit")
		fmt.Fprintf(os.Stderr, "Environment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GIZWEB_CONFIG      Override default config file path\n")
		fmt.Fprintf(os.Stderr, "  GIZWEB_CREDENTIALS Override default credentials file path\n")
		fmt.Fprintf(os.Stderr, "  GIZWEB_DB          Override default session database path\n\n")
		fmt.Fprintf(os.Stderr, "For all other settings (cookies, saved searches, etc.), edit the config file.\n")
	}

	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	// Handle setup mode
	if *setupFlag {
		runSetupWizard()
		return
	}

	// Load configuration with smart defaults and environment variable support
	configPath := getConfigPath(*configPathFlag)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load configuration: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// CLI flags and environment variables win over the config file
	if credPath := getCredentialsPath(*credPathFlag, cfg.Credentials); credPath != "" {
		cfg.Credentials = credPath
	}
	if envDB := os.Getenv("GIZWEB_DB"); envDB != "" {
		cfg.Database = expandPath(envDB)
	}
	if *listenFlag != "" {
		cfg.Server.ListenAddr = *listenFlag
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		fmt.Fprintln(os.Stderr, "Download OAuth client credentials from Google Cloud Console, or run with --setup.")
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open session database: %w", err)
	}
	defer func() { _ = store.Close() }()

	sessions := db.NewSessionStore(store)
	if n, err := sessions.PurgeOlderThan(ctx, time.Now().Add(-30*24*time.Hour)); err == nil && n > 0 {
		log.Info("purged stale sessions", "count", n)
	}

	flow, err := auth.NewFlow(cfg.Credentials, strings.TrimRight(cfg.Server.BaseURL, "/")+"/auth/callback", cfg.Scopes...)
	if err != nil {
		return fmt.Errorf("initialize OAuth flow: %w", err)
	}

	searches, err := config.LoadSavedSearches(cfg.SavedSearches)
	if err != nil {
		log.Warn("could not load saved searches", "path", cfg.SavedSearches, "error", err)
	}

	srv := server.New(cfg, flow, sessions, searches, log)

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.ListenAddr, "base_url", cfg.Server.BaseURL)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newLogger builds the application logger, writing to the given file
// or stderr when no file is configured
func newLogger(logFile string) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeLog := func() {}

	if logFile != "" {
		f, err := os.OpenFile(expandPath(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeLog = func() { _ = f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, nil)), closeLog, nil
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable GIZWEB_CONFIG
// 3. Default path ~/.config/gizweb/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("GIZWEB_CONFIG"); envPath != "" {
		return expandPath(envPath)
	}

	return config.DefaultConfigPath()
}

// getCredentialsPath returns the credentials file path using the following priority:
// 1. CLI flag
// 2. Environment variable GIZWEB_CREDENTIALS
// 3. Config file setting
// 4. Default path ~/.config/gizweb/credentials.json
func getCredentialsPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("GIZWEB_CREDENTIALS"); envPath != "" {
		return expandPath(envPath)
	}

	if configValue != "" {
		return expandPath(configValue)
	}

	credPath, _ := config.DefaultCredentialPaths()
	return credPath
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}

// runSetupWizard runs an interactive setup wizard to help users configure GizWeb
func runSetupWizard() {
	fmt.Println("📧 GizWeb Setup Wizard")
	fmt.Println("======================")
	fmt.Println()

	// Check if default config already exists
	defaultConfigPath := config.DefaultConfigPath()
	credPath, _ := config.DefaultCredentialPaths()
	dbPath := config.DefaultDatabasePath()

	if _, err := os.Stat(defaultConfigPath); err == nil {
		fmt.Printf("✅ Configuration file already exists: %s\n", defaultConfigPath)
	} else {
		fmt.Printf("📝 Will create configuration file: %s\n", defaultConfigPath)
	}

	if _, err := os.Stat(credPath); err == nil {
		fmt.Printf("✅ Credentials file found: %s\n", credPath)
	} else {
		fmt.Printf("⚠️  Credentials file missing: %s\n", credPath)
		fmt.Println()
		fmt.Println("📋 To set up Gmail API credentials:")
		fmt.Println("1. Go to https://console.cloud.google.com/")
		fmt.Println("2. Create a new project or select existing one")
		fmt.Println("3. Enable Gmail API")
		fmt.Println("4. Create OAuth 2.0 credentials (Web application)")
		fmt.Println("5. Add http://localhost:8080/auth/callback as an authorized redirect URI")
		fmt.Println("6. Download the JSON file and save it as:")
		fmt.Printf("   %s\n", credPath)
		fmt.Println()
	}

	if _, err := os.Stat(dbPath); err == nil {
		fmt.Printf("✅ Session database exists: %s\n", dbPath)
	} else {
		fmt.Printf("🔐 Session database will be created on first run: %s\n", dbPath)
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(defaultConfigPath); os.IsNotExist(err) {
		fmt.Println()
		fmt.Print("📄 Create default configuration file? [Y/n]: ")

		var response string
		_, _ = fmt.Scanln(&response) // User input - error not actionable

		if response == "" || strings.ToLower(response) == "y" || strings.ToLower(response) == "yes" {
			cfg := config.DefaultConfig()
			if err := cfg.SaveConfig(defaultConfigPath); err != nil {
				fmt.Printf("❌ Failed to create config file: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ Created configuration file: %s\n", defaultConfigPath)
		}
	}

	fmt.Println()
	fmt.Println("🚀 Setup complete! You can now run:")
	fmt.Printf("   %s\n", os.Args[0])
	fmt.Println()
	fmt.Println("💡 Tips:")
	fmt.Println("• Edit the config file to change the listen address or cookie settings")
	fmt.Println("• Use environment variables for different profiles")
	fmt.Println("• Run with -h to see all options")
}
