package mapx

import (
	"github.com/spf13/cobra"
)

var (
	// MapCommands represents the map command group
	MapCommands = &cobra.Command{
		Use:   "map",
		Short: "Work with disk-backed maps",
		Long: `Work with disk-backed maps with string keys. Every command takes the
instance directory as its first argument; the map is created there if it
does not exist. Values are JSON documents.`,
	}
)

func init() {
	// Add subcommands
	MapCommands.AddCommand(setCmd)
	MapCommands.AddCommand(getCmd)
	MapCommands.AddCommand(hasCmd)
	MapCommands.AddCommand(delCmd)
	MapCommands.AddCommand(lenCmd)
	MapCommands.AddCommand(listCmd)
	MapCommands.AddCommand(statsCmd)
}
