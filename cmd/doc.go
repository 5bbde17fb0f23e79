// Package cmd implements the command-line interface for the ttlstore
// expiring key-value store. It provides a hierarchical command structure
// for inspecting and manipulating a store from the shell.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, delete, gc, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See ttlstore -help for a list of all commands.
package cmd
