package vec

import (
	"github.com/spf13/cobra"
)

var (
	// VecCommands represents the vector command group
	VecCommands = &cobra.Command{
		Use:   "vec",
		Short: "Work with disk-backed vectors",
		Long: `Work with disk-backed vectors. Every command takes the instance directory
as its first argument; the vector is created there if it does not exist.
Elements are JSON documents.`,
	}
)

func init() {
	// Add subcommands
	VecCommands.AddCommand(pushCmd)
	VecCommands.AddCommand(getCmd)
	VecCommands.AddCommand(lastCmd)
	VecCommands.AddCommand(lenCmd)
	VecCommands.AddCommand(listCmd)
	VecCommands.AddCommand(statsCmd)
}
