package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultEndpoint = "http://127.0.0.1:9998/table-data"
	defaultAddr     = "127.0.0.1:9998"
	defaultTimeout  = 10 * time.Second
)

// Command selects what the binary runs.
type Command int

const (
	CommandView Command = iota
	CommandServe
)

// Config holds CLI configuration.
type Config struct {
	Command     Command
	ConfigDir   string
	ShowVersion bool

	// view
	Endpoint string
	Timeout  time.Duration
	LogPath  string

	// serve
	Addr     string
	DBPath   string
	SeedPath string
}

// ParseFlags parses command-line arguments (without the program name) and
// returns configuration. "serve" as the first argument selects the backend.
func ParseFlags(args []string) (*Config, error) {
	config := &Config{Command: CommandView}

	// Load .env files first so env-based defaults work with existing flag parsing.
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	name := "tabula"
	if len(args) > 0 && args[0] == "serve" {
		config.Command = CommandServe
		name = "tabula serve"
		args = args[1:]
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")
	fs.StringVar(&config.ConfigDir, "config-dir", "", "Directory for settings and data (default: ~/.tabula)")

	var timeout string
	switch config.Command {
	case CommandServe:
		fs.StringVar(&config.Addr, "addr", "", "Address to listen on (or set TABULA_ADDR, default "+defaultAddr+")")
		fs.StringVar(&config.DBPath, "db", "", "Path to SQLite database file (or set TABULA_DB, default: <config-dir>/tabula.db)")
		fs.StringVar(&config.SeedPath, "seed", "", "JSON file of rows to load before serving")
	default:
		fs.StringVar(&config.Endpoint, "endpoint", "", "Table data URL (or set TABULA_ENDPOINT, default "+defaultEndpoint+")")
		fs.StringVar(&timeout, "timeout", "", "Fetch timeout (or set TABULA_TIMEOUT, default 10s)")
		fs.StringVar(&config.LogPath, "log", "", "Write debug log to this file (or set TABULA_LOG)")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	config.Endpoint = firstNonEmpty(config.Endpoint, os.Getenv("TABULA_ENDPOINT"), defaultEndpoint)
	config.Addr = firstNonEmpty(config.Addr, os.Getenv("TABULA_ADDR"), defaultAddr)
	config.DBPath = firstNonEmpty(config.DBPath, os.Getenv("TABULA_DB"))
	config.LogPath = firstNonEmpty(config.LogPath, os.Getenv("TABULA_LOG"))

	config.Timeout = defaultTimeout
	if timeout = firstNonEmpty(timeout, os.Getenv("TABULA_TIMEOUT")); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid timeout %q: must not be negative", timeout)
		}
		config.Timeout = d
	}

	if config.ShowVersion {
		return config, nil
	}

	// Set default config dir if not specified
	if config.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		config.ConfigDir = filepath.Join(home, ".tabula")
	}
	if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if config.Command == CommandServe && config.DBPath == "" {
		config.DBPath = filepath.Join(config.ConfigDir, "tabula.db")
	}

	return config, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		value = strings.Trim(value, `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
