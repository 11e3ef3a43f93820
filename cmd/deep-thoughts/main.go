// ABOUTME: Entry point for the deep-thoughts API server
// ABOUTME: Provides serve, init, and health commands

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/deep-thoughts/internal/client"
	"github.com/2389/deep-thoughts/internal/config"
	"github.com/2389/deep-thoughts/internal/server"
)

// Version is set at build time.
var version = "dev"

const banner = `
     _                        _   _                       _     _
  __| | ___  ___ _ __        | |_| |__   ___  _   _  __ _| |__ | |_ ___
 / _' |/ _ \/ _ \ '_ \ _____ | __| '_ \ / _ \| | | |/ _' | '_ \| __/ __|
| (_| |  __/  __/ |_) |_____|| |_| | | | (_) | |_| | (_| | | | | |_\__ \
 \__,_|\___|\___| .__/        \__|_| |_|\___/ \__,_|\__, |_| |_|\__|___/
                |_|                                 |___/
`

// getConfigPath returns the path to the server config file.
// Priority: DEEP_THOUGHTS_CONFIG env var > XDG_CONFIG_HOME/deep-thoughts/server.yaml > ~/.config/deep-thoughts/server.yaml
func getConfigPath() string {
	if envPath := os.Getenv("DEEP_THOUGHTS_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "server.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "deep-thoughts", "server.yaml")
}

// getDataPath returns the data directory.
// Priority: XDG_DATA_HOME/deep-thoughts > ~/.local/share/deep-thoughts
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "deep-thoughts")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: deep-thoughts <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the API server")
		fmt.Println("  init      Create a new config file interactively")
		fmt.Println("  health    Check server liveness and store readiness")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	switch cfg.Database.Driver {
	case config.DriverDynamoDB:
		fmt.Printf("Store:     dynamodb (%s)\n", cfg.Database.DynamoDB.Table)
	default:
		fmt.Printf("Store:     sqlite (%s)\n", cfg.Database.Path)
	}

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}

	fmt.Println()

	logger.Info("starting deep-thoughts",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"driver", cfg.Database.Driver,
	)

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

// serverURL derives a base URL for the configured listener.
func serverURL(cfg *config.Config) string {
	if cfg.Tailscale.Enabled {
		if cfg.Tailscale.HTTPS || cfg.Tailscale.Funnel {
			return "https://" + cfg.Tailscale.Hostname
		}
		return "http://" + cfg.Tailscale.Hostname
	}
	addr := cfg.Server.HTTPAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c := client.New(serverURL(cfg))
	if err := c.Health(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if err := c.Ready(ctx); err != nil {
		return fmt.Errorf("not ready: %w", err)
	}

	fmt.Println("healthy")
	return nil
}

// generateSecret returns a random base64 string suitable for auth.jwt_secret.
func generateSecret() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("deep-thoughts configuration setup")
	fmt.Println("=================================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDBPath := filepath.Join(getDataPath(), "thoughts.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		if !isYes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", config.DefaultHTTPAddr)
	origins := prompt(reader, "Allowed CORS origins (comma separated)", "http://localhost:3000")

	fmt.Println("\n--- Database Configuration ---")
	driver := prompt(reader, "Driver (sqlite/dynamodb)", config.DriverSQLite)
	var dbPath, table, region, endpoint string
	if driver == config.DriverDynamoDB {
		table = prompt(reader, "DynamoDB table", "deep-thoughts")
		region = prompt(reader, "AWS region", "us-east-1")
		endpoint = prompt(reader, "Endpoint override (leave empty for AWS)", "")
	} else {
		driver = config.DriverSQLite
		dbPath = prompt(reader, "SQLite database path", defaultDBPath)
	}

	fmt.Println("\n--- Tailscale Configuration ---")
	tailscaleEnabled := isYes(prompt(reader, "Enable Tailscale?", "no"))

	var tsHostname, tsAuthKey string
	var tsEphemeral, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, "Tailscale hostname", "deep-thoughts")
		tsAuthKey = prompt(reader, "Tailscale auth key (leave empty to use DEEP_THOUGHTS_TS_AUTHKEY or TS_AUTHKEY)", "")
		tsEphemeral = isYes(prompt(reader, "Ephemeral node?", "no"))
		tsFunnel = isYes(prompt(reader, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	var cfg strings.Builder
	cfg.WriteString("# deep-thoughts configuration\n")
	cfg.WriteString("# Generated by deep-thoughts init\n\n")

	cfg.WriteString("server:\n")
	if !tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", httpAddr))
	}
	cfg.WriteString("  allowed_origins:\n")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.WriteString(fmt.Sprintf("    - %q\n", o))
		}
	}
	cfg.WriteString("  shutdown_timeout: \"5s\"\n\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  driver: %q\n", driver))
	if driver == config.DriverDynamoDB {
		cfg.WriteString("  dynamodb:\n")
		cfg.WriteString(fmt.Sprintf("    table: %q\n", table))
		cfg.WriteString(fmt.Sprintf("    region: %q\n", region))
		if endpoint != "" {
			cfg.WriteString(fmt.Sprintf("    endpoint: %q\n", endpoint))
		}
	} else {
		cfg.WriteString(fmt.Sprintf("  path: %q\n", dbPath))
	}
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", tailscaleEnabled))
	if tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", tsHostname))
		if tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: %q\n", secret))
	cfg.WriteString("  token_ttl: \"2h\"\n")
	cfg.WriteString("  max_login_failures: 5 # 0 disables the lockout\n")
	cfg.WriteString("  login_lockout: \"15m\"\n\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n\n", logFormat))

	cfg.WriteString("metrics:\n")
	cfg.WriteString("  enabled: false\n")
	cfg.WriteString("  path: \"/metrics\"\n")

	if _, err := config.Parse([]byte(cfg.String()), "yaml"); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds the signing secret.
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		fmt.Printf("\nData directory: %s\n", filepath.Dir(dbPath))
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  deep-thoughts serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
