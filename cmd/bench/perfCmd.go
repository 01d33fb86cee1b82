package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/fundb/cmd/util"
	"github.com/ValentinKolb/fundb/lib/codec"
	"github.com/ValentinKolb/fundb/lib/common"
	"github.com/ValentinKolb/fundb/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	plog = logger.GetLogger(common.LoggerCmd)

	// PerfCmd runs micro benchmarks against ephemeral collections
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for fundb collections",
		Long:    "Runs benchmarks against ephemeral collections below the base directory. The capacity flag controls how much of each collection is cached.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfElements    = 1000
	perfValueSizeKB = 1
	perfSkip        = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. push,map-get)"))
	key = "elements"
	PerfCmd.Flags().Int(key, 1000, util.WrapString("How many elements to load before the read benchmarks"))
	key = "value-size"
	PerfCmd.Flags().Int(key, 1, util.WrapString("Size of each element (in KB)"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfElements = viper.GetInt("elements")
	perfValueSizeKB = viper.GetInt("value-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfElements <= 0 {
		return fmt.Errorf("elements must be positive")
	}
	return nil
}

// benchmark is one named benchmark
type benchmark struct {
	name string
	fn   func(b *testing.B)
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for fundb collections")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.Config().String())
	fmt.Printf("Elements: %d, value size: %d KB\n", perfElements, perfValueSizeKB)
	fmt.Println()

	c, err := codec.ByName[json.RawMessage](util.Config().Serializer)
	if err != nil {
		return err
	}
	value := json.RawMessage(strconv.Quote(strings.Repeat("x", perfValueSizeKB*1024)))

	benchmarks := []benchmark{
		{name: "push", fn: func(b *testing.B) {
			vec := mustVec(b, c)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := vec.Push(value); err != nil {
					b.Fatal(err)
				}
			}
		}},
		{name: "get-tail", fn: func(b *testing.B) {
			vec := mustVec(b, c)
			fill(b, vec, value)
			window := windowOf(vec)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := vec.Get(vec.Len() - 1 - uint64(i)%window); err != nil {
					b.Fatal(err)
				}
			}
		}},
		{name: "get-cold", fn: func(b *testing.B) {
			vec := mustVec(b, c)
			fill(b, vec, value)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := vec.Get(uint64(i % perfElements)); err != nil {
					b.Fatal(err)
				}
			}
		}},
		{name: "iter", fn: func(b *testing.B) {
			vec := mustVec(b, c)
			fill(b, vec, value)
			it := vec.Iter()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if !it.Next() {
					if err := it.Err(); err != nil {
						b.Fatal(err)
					}
					it.Reset()
				}
			}
		}},
		{name: "map-insert", fn: func(b *testing.B) {
			m := mustMap(b, c)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := m.Insert(uint64(i%perfElements), value); err != nil {
					b.Fatal(err)
				}
			}
		}},
		{name: "map-get", fn: func(b *testing.B) {
			m := mustMap(b, c)
			for i := 0; i < perfElements; i++ {
				if _, err := m.Insert(uint64(i), value); err != nil {
					b.Fatal(err)
				}
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := m.Get(uint64(i % perfElements)); err != nil {
					b.Fatal(err)
				}
			}
		}},
	}

	fmt.Println("starting tests...")

	results := make(map[string]testing.BenchmarkResult)
	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			results[bm.name] = testing.BenchmarkResult{}
			printResult(bm.name, results[bm.name])
			continue
		}
		results[bm.name] = testing.Benchmark(bm.fn)
		printResult(bm.name, results[bm.name])
	}

	if util.Config().Metrics {
		fmt.Println()
		store.WriteMetrics(os.Stdout)
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.Config()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// options returns ephemeral options below the base directory
func options() *store.Options {
	opts := store.DefaultOptions().
		WithBaseDir(util.Config().BaseDir).
		WithEphemeral(true)
	if capacity := util.Config().DefaultCapacity; capacity > 0 {
		opts.WithCapacity(capacity)
	}
	return opts
}

func mustVec(b *testing.B, c codec.Codec[json.RawMessage]) *store.Vecx[json.RawMessage] {
	vec, err := store.NewVecx(options(), c)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		if err := vec.Close(); err != nil {
			plog.Errorf("(bench) - error closing vector: %v", err)
		}
	})
	return vec
}

func mustMap(b *testing.B, c codec.Codec[json.RawMessage]) *store.Mapx[uint64, json.RawMessage] {
	m, err := store.NewMapx[uint64, json.RawMessage](options(), codec.Uint64Key{}, c)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		if err := m.Close(); err != nil {
			plog.Errorf("(bench) - error closing map: %v", err)
		}
	})
	return m
}

func fill(b *testing.B, vec *store.Vecx[json.RawMessage], value json.RawMessage) {
	for i := 0; i < perfElements; i++ {
		if err := vec.Push(value); err != nil {
			b.Fatal(err)
		}
	}
}

// windowOf returns the number of cached tail elements (at least 1)
func windowOf(vec *store.Vecx[json.RawMessage]) uint64 {
	if cached := vec.Stats().Cached; cached > 0 {
		return uint64(cached)
	}
	return 1
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.Config) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Capacity", "Serializer", "Elements", "ValueSizeKB",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strconv.FormatUint(config.DefaultCapacity, 10),
			config.Serializer,
			strconv.Itoa(perfElements),
			strconv.Itoa(perfValueSizeKB),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
