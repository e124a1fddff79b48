package socket

import (
	"fmt"
	"net"
	"os"

	"github.com/anydict/numstore/rpc/common"
	"github.com/anydict/numstore/rpc/transport"
)

const (
	unixDefaultBufferSize = 64 * 1024 // 64 KB
)

// --------------------------------------------------------------------------
// Unix Server Connector
// --------------------------------------------------------------------------

// unixServerConnector implements the IServerConnector interface for Unix sockets
type unixServerConnector struct{}

// (docu see socket.IServerConnector)
func (c *unixServerConnector) GetName() string {
	return "unix"
}

// (docu see socket.IServerConnector)
func (c *unixServerConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	socketPath := config.Endpoint

	// Remove existing socket file if it exists
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %v", err)
	}

	// Create Unix socket listener
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Unix socket: %v", err)
	}

	return listener, nil
}

// --------------------------------------------------------------------------
// Unix Client Connector
// --------------------------------------------------------------------------

// unixClientConnector implements the IClientConnector interface for Unix sockets
type unixClientConnector struct{}

// (docu see socket.IClientConnector)
func (c *unixClientConnector) GetName() string {
	return "unix"
}

// (docu see socket.IClientConnector)
func (c *unixClientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("unix", endpoint)
}

// UpgradeConnection is a no-op for Unix sockets
func (c *unixClientConnector) UpgradeConnection(_ net.Conn, _ common.ClientConfig) error {
	return nil
}

// --------------------------------------------------------------------------
// Transport Factory Methods
// --------------------------------------------------------------------------

// NewUnixServerTransport creates a new Unix server transport with default buffer size
func NewUnixServerTransport(maxWorkersPerConn int) transport.IRPCServerTransport {
	return newServerTransport(&unixServerConnector{}, unixDefaultBufferSize, maxWorkersPerConn)
}

// NewUnixClientTransport creates a new Unix client transport
func NewUnixClientTransport() transport.IRPCClientTransport {
	return newClientTransport(&unixClientConnector{})
}
