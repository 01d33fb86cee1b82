package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --------------------------------------------------------------------------
// Configuration keys (flags and FUNDB_<KEY> environment variables)
// --------------------------------------------------------------------------

const (
	EnvPrefix = "fundb"

	KeyDir        = "dir"        // FUNDB_DIR: base directory for generated paths
	KeyLogLevel   = "log-level"  // FUNDB_LOG_LEVEL
	KeyCapacity   = "capacity"   // FUNDB_CAPACITY: in-memory capacity, 0 = unbounded
	KeySerializer = "serializer" // FUNDB_SERIALIZER: json, gob, json+zstd
	KeyMetrics    = "metrics"    // FUNDB_METRICS: print metrics after a command
)

// --------------------------------------------------------------------------
// Configuration struct
// --------------------------------------------------------------------------

// Config holds the process-wide settings. It is read once at startup with
// LoadConfig and then passed explicitly to whoever needs it; it is never
// mutated afterwards.
type Config struct {
	// BaseDir is the directory under which unique paths are generated
	BaseDir string

	// DefaultCapacity is the in-memory capacity of collections opened by the CLI (0 = unbounded)
	DefaultCapacity uint64

	// Serializer selects the value codec used by the CLI
	Serializer string

	// Logging configuration
	LogLevel string

	// Metrics enables printing the process metrics after a command
	Metrics bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:    os.TempDir(),
		Serializer: "json",
		LogLevel:   "info",
	}
}

// InitEnv loads .env files and prepares viper to read FUNDB_* variables.
func InitEnv() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	defaults := DefaultConfig()
	viper.SetDefault(KeyDir, defaults.BaseDir)
	viper.SetDefault(KeyLogLevel, defaults.LogLevel)
	viper.SetDefault(KeySerializer, defaults.Serializer)
	viper.SetDefault(KeyCapacity, 0)
	viper.SetDefault(KeyMetrics, false)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// LoadConfig reads the configuration from viper (flags bound by the caller,
// environment, defaults).
func LoadConfig() (*Config, error) {
	conf := &Config{
		BaseDir:         viper.GetString(KeyDir),
		DefaultCapacity: viper.GetUint64(KeyCapacity),
		Serializer:      viper.GetString(KeySerializer),
		LogLevel:        viper.GetString(KeyLogLevel),
		Metrics:         viper.GetBool(KeyMetrics),
	}
	if conf.BaseDir == "" {
		conf.BaseDir = os.TempDir()
	}
	if _, err := ParseLogLevel(conf.LogLevel); err != nil {
		return nil, err
	}
	return conf, nil
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Storage")
	addField("Base Directory", c.BaseDir)
	if c.DefaultCapacity == 0 {
		addField("Capacity", "unbounded")
	} else {
		addField("Capacity", fmt.Sprintf("%d", c.DefaultCapacity))
	}
	addField("Serializer", c.Serializer)

	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Metrics", fmt.Sprintf("%t", c.Metrics))

	return sb.String()
}
