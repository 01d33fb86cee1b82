package mapx

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/fundb/cmd/util"
	"github.com/ValentinKolb/fundb/lib/store"
	"github.com/spf13/cobra"
)

type docMap = store.Mapx[string, json.RawMessage]

// withMap opens the map at path for the duration of fn
func withMap(path string, fn func(m *docMap) error) error {
	m, err := util.OpenMap(path)
	if err != nil {
		return err
	}
	defer util.CloseAndLog(m)
	return fn(m)
}

var (
	setCmd = &cobra.Command{
		Use:   "set [path] [key] [json]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := util.ParseDocument(args[2])
			if err != nil {
				return err
			}
			return withMap(args[0], func(m *docMap) error {
				replaced, err := m.Insert(args[1], doc)
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, replaced=%t, len=%d\n", args[1], replaced, m.Len())
				return nil
			})
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [path] [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMap(args[0], func(m *docMap) error {
				val, ok, err := m.Get(args[1])
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, found=%t, value=%s\n", args[1], ok, val.Get())
				return nil
			})
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [path] [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMap(args[0], func(m *docMap) error {
				found, err := m.Has(args[1])
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, found=%t\n", args[1], found)
				return nil
			})
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [path] [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMap(args[0], func(m *docMap) error {
				removed, err := m.Remove(args[1])
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, removed=%t, len=%d\n", args[1], removed, m.Len())
				return nil
			})
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len [path]",
		Short: "Prints the number of entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMap(args[0], func(m *docMap) error {
				fmt.Println(m.Len())
				return nil
			})
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [path]",
		Short: "Prints all entries in key order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMap(args[0], func(m *docMap) error {
				it := m.Iter()
				for it.Next() {
					fmt.Printf("%s: %s\n", it.Key(), it.Value().Get())
				}
				return it.Err()
			})
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats [path]",
		Short: "Prints cache and size statistics and the descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMap(args[0], func(m *docMap) error {
				return util.PrintJSON(map[string]any{
					"descriptor": m.Descriptor(),
					"stats":      m.Stats(),
				})
			})
		},
	}
)
