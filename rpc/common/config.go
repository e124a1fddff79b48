package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anydict/numstore/lib/store"
)

// --------------------------------------------------------------------------
// Hosted store definition
// --------------------------------------------------------------------------

// StoreDef describes one store instance hosted by the server.
type StoreDef struct {
	ID       uint64     // Store ID the transports route by
	Capacity uint64     // Number of key slots
	Mode     store.Mode // Strict or lenient validation
}

// ParseStoreDef parses the textual form "ID=capacity[:lenient]" used by
// flags and environment variables, e.g. "0=1000000" or "1=4096:lenient".
func ParseStoreDef(s string) (StoreDef, error) {
	var def StoreDef

	idPart, rest, found := strings.Cut(s, "=")
	if !found {
		return def, fmt.Errorf("invalid store definition %q: expected ID=capacity[:lenient]", s)
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return def, fmt.Errorf("invalid store ID %q: %v", idPart, err)
	}

	capPart, modePart, hasMode := strings.Cut(rest, ":")
	capacity, err := strconv.ParseUint(capPart, 10, 64)
	if err != nil || capacity == 0 {
		return def, fmt.Errorf("invalid capacity %q: must be a positive integer", capPart)
	}

	mode := store.ModeStrict
	if hasMode {
		if mode, err = store.ParseMode(modePart); err != nil {
			return def, err
		}
	}

	return StoreDef{ID: id, Capacity: capacity, Mode: mode}, nil
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for the server.
type ServerConfig struct {
	// Hosted stores
	Stores []StoreDef

	// Transport settings
	Endpoint      string
	TimeoutSecond int64

	// Persistence: if set, stores are loaded from <DataDir>/<ID>.numstore at
	// startup and saved back on shutdown
	DataDir string

	// Optional Prometheus metrics endpoint (empty = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Storage
	addSection("Storage")
	if c.DataDir != "" {
		addField("Data Directory", c.DataDir)
	} else {
		addField("Data Directory", "(persistence disabled)")
	}

	// Metrics
	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	// Stores
	addSection("Stores")
	for _, def := range c.Stores {
		addField(strconv.FormatUint(def.ID, 10),
			fmt.Sprintf("capacity %d, %s mode", def.Capacity, def.Mode))
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
