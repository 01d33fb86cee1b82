package util

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ValentinKolb/fundb/lib/codec"
	"github.com/ValentinKolb/fundb/lib/common"
	"github.com/ValentinKolb/fundb/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

var (
	clog = logger.GetLogger(common.LoggerCmd)

	// config is loaded once by LoadConfig before any command runs
	config = common.DefaultConfig()
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupConfigFlags adds the global configuration flags to a command
func SetupConfigFlags(cmd *cobra.Command) {
	defaults := common.DefaultConfig()

	key := common.KeyDir
	cmd.PersistentFlags().String(key, defaults.BaseDir, WrapString("Base directory for generated collection paths (env FUNDB_DIR)"))

	key = common.KeyLogLevel
	cmd.PersistentFlags().String(key, defaults.LogLevel, WrapString("Log level (debug, info, warn, error)"))

	key = common.KeyCapacity
	cmd.PersistentFlags().Uint64(key, 0, WrapString("Number of decoded elements kept in memory per collection (0 = unbounded)"))

	key = common.KeySerializer
	cmd.PersistentFlags().String(key, defaults.Serializer, WrapString("Value codec of the collections (json, gob, json+zstd, gob+zstd)"))

	key = common.KeyMetrics
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the process metrics after the command"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// LoadConfig binds the flags of cmd, reads the configuration and configures
// the loggers. It is run once before every command.
func LoadConfig(cmd *cobra.Command) error {
	if err := BindCommandFlags(cmd); err != nil {
		return err
	}
	conf, err := common.LoadConfig()
	if err != nil {
		return err
	}
	if err := common.InitLoggers(conf); err != nil {
		return err
	}
	config = conf
	return nil
}

// Config returns the loaded configuration
func Config() *common.Config {
	return config
}

// --------------------------------------------------------------------------
// Collections
// --------------------------------------------------------------------------

// options builds the construction options of the collection at path
func options(path string) *store.Options {
	opts := store.DefaultOptions().
		WithPath(path).
		WithBaseDir(config.BaseDir)
	if config.DefaultCapacity > 0 {
		opts.WithCapacity(config.DefaultCapacity)
	}
	return opts
}

// valueCodec returns the configured codec for raw JSON documents
func valueCodec() (codec.Codec[json.RawMessage], error) {
	return codec.ByName[json.RawMessage](config.Serializer)
}

// OpenVec opens the vector at path, retrying once
func OpenVec(path string) (*store.Vecx[json.RawMessage], error) {
	c, err := valueCodec()
	if err != nil {
		return nil, err
	}
	return store.TryTwice(clog, func() (*store.Vecx[json.RawMessage], error) {
		return store.NewVecx(options(path), c)
	})
}

// OpenMap opens the string keyed map at path, retrying once
func OpenMap(path string) (*store.Mapx[string, json.RawMessage], error) {
	c, err := valueCodec()
	if err != nil {
		return nil, err
	}
	return store.TryTwice(clog, func() (*store.Mapx[string, json.RawMessage], error) {
		return store.NewMapx[string, json.RawMessage](options(path), codec.StringKey{}, c)
	})
}

// ParseDocument checks that arg is a JSON document
func ParseDocument(arg string) (json.RawMessage, error) {
	if !json.Valid([]byte(arg)) {
		return nil, fmt.Errorf("value is not valid JSON: %s", arg)
	}
	return json.RawMessage(arg), nil
}

// PrintJSON prints v as indented JSON
func PrintJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// CloseAndLog closes a collection, a failure is only logged
func CloseAndLog(c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		clog.Errorf("close failed: %v", err)
	}
}
