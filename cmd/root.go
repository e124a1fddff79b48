package cmd

import (
	"fmt"
	"os"

	"github.com/anydict/numstore/cmd/kv"
	"github.com/anydict/numstore/cmd/serve"
	"github.com/anydict/numstore/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "numstore",
		Short: "fixed-capacity numeric store",
		Long: fmt.Sprintf(`numstore (v%s)

A fixed-capacity store for small numeric values written in Go. Every key is
a slot index, every value fits in four bits - two values per byte, with
binary persistence and an RPC server for remote access.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of numstore",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("numstore v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
