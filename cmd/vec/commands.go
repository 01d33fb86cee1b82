package vec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ValentinKolb/fundb/cmd/util"
	"github.com/ValentinKolb/fundb/lib/store"
	"github.com/spf13/cobra"
)

// withVec opens the vector at path for the duration of fn
func withVec(path string, fn func(v *store.Vecx[json.RawMessage]) error) error {
	v, err := util.OpenVec(path)
	if err != nil {
		return err
	}
	defer util.CloseAndLog(v)
	return fn(v)
}

var (
	pushCmd = &cobra.Command{
		Use:   "push [path] [json]...",
		Short: "Appends one or more elements",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]json.RawMessage, 0, len(args)-1)
			for _, arg := range args[1:] {
				doc, err := util.ParseDocument(arg)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			return withVec(args[0], func(v *store.Vecx[json.RawMessage]) error {
				for _, doc := range docs {
					if err := v.Push(doc); err != nil {
						return err
					}
				}
				fmt.Printf("pushed %d, len=%d\n", len(docs), v.Len())
				return nil
			})
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [path] [index]",
		Short: "Reads the element at an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			return withVec(args[0], func(v *store.Vecx[json.RawMessage]) error {
				val, ok, err := v.Get(i)
				if err != nil {
					return err
				}
				fmt.Printf("index=%d, found=%t, cached=%t, value=%s\n", i, ok, val.IsBorrowed(), val.Get())
				return nil
			})
		},
	}
	lastCmd = &cobra.Command{
		Use:   "last [path]",
		Short: "Reads the last element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVec(args[0], func(v *store.Vecx[json.RawMessage]) error {
				val, ok, err := v.Last()
				if err != nil {
					return err
				}
				fmt.Printf("found=%t, value=%s\n", ok, val.Get())
				return nil
			})
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len [path]",
		Short: "Prints the number of elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVec(args[0], func(v *store.Vecx[json.RawMessage]) error {
				fmt.Println(v.Len())
				return nil
			})
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [path]",
		Short: "Prints all elements in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVec(args[0], func(v *store.Vecx[json.RawMessage]) error {
				it := v.Iter()
				for it.Next() {
					fmt.Printf("%d: %s\n", it.Index(), it.Value().Get())
				}
				if err := it.Err(); err != nil {
					return err
				}
				fmt.Printf("(%d hits, %d misses)\n", it.Hits(), it.Misses())
				return nil
			})
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats [path]",
		Short: "Prints cache and size statistics and the descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVec(args[0], func(v *store.Vecx[json.RawMessage]) error {
				return util.PrintJSON(map[string]any{
					"descriptor": v.Descriptor(),
					"stats":      v.Stats(),
				})
			})
		},
	}
)
