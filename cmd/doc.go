// Package cmd implements the command-line interface for the numstore server
// and client. It provides a hierarchical command structure with operations
// for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for store operations (get, set, delete, etc.)
//   - serve: Commands for starting and configuring the numstore server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See numstore -help for a list of all commands.
package cmd
