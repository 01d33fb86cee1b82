// Package cmd implements the command-line interface of fundb. It provides a
// hierarchical command structure to create, inspect and benchmark disk-backed
// collections from the shell.
//
// The package is organized into several subpackages:
//
//   - vec: Commands for vectors (push, get, last, len, list, stats)
//   - mapx: Commands for string keyed maps (set, get, has, del, len, list, stats)
//   - bench: The perf command, benchmarks against ephemeral collections
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Values are JSON documents and are stored with the configured serializer.
// See fundb -help for a list of all commands.
package cmd
