// Package config loads optional overrides for the compiler/VM's
// compile-time-fixed capacities from a plzero.toml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the tunable capacities of the codegen and VM. The zero value
// is never used directly; DefaultConfig supplies the specification's numbers.
type Config struct {
	Codegen struct {
		MaxCodeLength int `toml:"max_code_length"`
		MaxNameTable  int `toml:"max_name_table"`
		StartAddress  int `toml:"start_address"`
	} `toml:"codegen"`

	VM struct {
		MaxStackHeight int `toml:"max_stack_height"`
		RegisterCount  int `toml:"register_count"`
	} `toml:"vm"`

	Lexer struct {
		MaxIdentifierLength int `toml:"max_identifier_length"`
		MaxNumberLength     int `toml:"max_number_length"`
	} `toml:"lexer"`

	Output struct {
		EchoLexer bool   `toml:"echo_lexer"`
		EchoCode  bool   `toml:"echo_code"`
		EchoTrace bool   `toml:"echo_trace"`
		FileName  string `toml:"file_name"`
	} `toml:"output"`
}

// DefaultConfig returns the capacities named in the specification.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Codegen.MaxCodeLength = 500
	cfg.Codegen.MaxNameTable = 65535
	cfg.Codegen.StartAddress = 4

	cfg.VM.MaxStackHeight = 2000
	cfg.VM.RegisterCount = 16

	cfg.Lexer.MaxIdentifierLength = 11
	cfg.Lexer.MaxNumberLength = 5

	cfg.Output.EchoLexer = false
	cfg.Output.EchoCode = false
	cfg.Output.EchoTrace = false
	cfg.Output.FileName = "outputFile.txt"

	return cfg
}

// GetConfigPath returns the platform-specific default config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "plzero")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "plzero.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "plzero")

	default:
		return "plzero.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "plzero.toml"
	}

	return filepath.Join(configDir, "plzero.toml")
}

// Load loads configuration from ./plzero.toml if present, otherwise from the
// platform default path, falling back to DefaultConfig when neither exists.
func Load() (*Config, error) {
	if _, err := os.Stat("plzero.toml"); err == nil {
		return LoadFrom("plzero.toml")
	}
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the given path. A missing file is not an
// error: DefaultConfig is returned unmodified.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveTo writes the configuration to path, creating parent directories as
// needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
