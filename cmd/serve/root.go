package serve

import (
	"fmt"
	"strings"

	cmdUtil "github.com/anydict/numstore/cmd/util"
	"github.com/anydict/numstore/rpc/common"
	"github.com/anydict/numstore/rpc/serializer"
	"github.com/anydict/numstore/rpc/server"
	"github.com/anydict/numstore/rpc/transport"
	"github.com/anydict/numstore/rpc/transport/http"
	"github.com/anydict/numstore/rpc/transport/socket"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the numstore server",
		Long:    `Start the numstore server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is NUMSTORE_<flag> (e.g. NUMSTORE_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "stores"
	ServeCmd.PersistentFlags().String(key, "0=1024", cmdUtil.WrapString("Comma-separated list of stores to serve. Format: ID=capacity[:lenient] (e.g. '0=1000000,1=4096:lenient'). Stores are strict unless marked lenient"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/numstore.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Directory for store persistence. If set, stores are loaded from <data-dir>/<ID>.numstore at startup and written back on shutdown. Empty disables persistence"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address on which to expose Prometheus metrics (e.g. localhost:9090). Empty disables the endpoint"))

	key = "workers"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("Maximum number of concurrent requests per connection (ignored for http)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and
// environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse stores
	storesConfig := viper.GetString("stores")
	serveCmdConfig.Stores = []common.StoreDef{}
	for _, storeConfig := range strings.Split(storesConfig, ",") {
		def, err := common.ParseStoreDef(strings.TrimSpace(storeConfig))
		if err != nil {
			return err
		}
		serveCmdConfig.Stores = append(serveCmdConfig.Stores, def)
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the numstore server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	maxWorkers := viper.GetInt("workers")
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = socket.NewTCPServerTransport(maxWorkers)
	case "unix":
		t = socket.NewUnixServerTransport(maxWorkers)
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("numstore")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
