package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/fundb/cmd/bench"
	"github.com/ValentinKolb/fundb/cmd/mapx"
	"github.com/ValentinKolb/fundb/cmd/util"
	"github.com/ValentinKolb/fundb/cmd/vec"
	"github.com/ValentinKolb/fundb/lib/common"
	"github.com/ValentinKolb/fundb/lib/store"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "fundb",
		Short: "disk-backed vectors and maps",
		Long: fmt.Sprintf(`fundb (v%s)

Disk-backed collections for Go. A vector and an ordered map that keep a
bounded window of decoded elements in memory while the full dataset lives
in an embedded Pebble store. The configuration can be set via command line
flags or environment variables of the form FUNDB_<flag> (e.g. FUNDB_DIR=/data).`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: printMetrics,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fundb",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fundb v%s\n", Version)
		},
	}
	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print a fresh unique collection path below the base directory",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(store.UniquePath(util.Config().BaseDir))
		},
	}
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(util.Config().String())
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(common.InitEnv)

	// Add Commands
	RootCmd.AddCommand(vec.VecCommands)
	RootCmd.AddCommand(mapx.MapCommands)
	RootCmd.AddCommand(bench.PerfCmd)
	RootCmd.AddCommand(pathCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupConfigFlags(RootCmd)
}

// setup loads the configuration once before any command runs
func setup(cmd *cobra.Command, _ []string) error {
	return util.LoadConfig(cmd)
}

// printMetrics prints the process metrics if enabled
func printMetrics(_ *cobra.Command, _ []string) {
	if util.Config().Metrics {
		fmt.Println()
		store.WriteMetrics(os.Stdout)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
