package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	StateFile string
	Timeout   time.Duration
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("KEYSHOP_SERVER", "http://localhost:8080/api"),
		StateFile: getEnvOrDefault("KEYSHOP_STATE_FILE", defaultStateFile()),
		Timeout:   getDurationOrDefault("KEYSHOP_TIMEOUT", 10*time.Second),
		Output:    FormatText,
		Verbose:   false,
	}
}

// Validate rejects flag values the commands cannot use
func (c *Config) Validate() error {
	if c.Output != FormatText && c.Output != FormatJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.Output, FormatText, FormatJSON)
	}
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// EnsureStateDir creates the state file's directory, readable only by the user
func (c *Config) EnsureStateDir() error {
	if err := os.MkdirAll(filepath.Dir(c.StateFile), 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".keyshop", "state.yaml")
	}
	return filepath.Join(home, ".keyshop", "state.yaml")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultVal
}
