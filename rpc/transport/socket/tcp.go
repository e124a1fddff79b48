package socket

import (
	"fmt"
	"net"
	"time"

	"github.com/anydict/numstore/rpc/common"
	"github.com/anydict/numstore/rpc/transport"
)

const (
	tcpDefaultBufferSize = 512 * 1024 // 512 KB
	tcpKeepAlivePeriod   = 30 * time.Second
)

// --------------------------------------------------------------------------
// TCP Server Connector
// --------------------------------------------------------------------------

// tcpServerConnector implements the IServerConnector interface for TCP sockets
type tcpServerConnector struct{}

// (docu see socket.IServerConnector)
func (c *tcpServerConnector) GetName() string {
	return "tcp"
}

// (docu see socket.IServerConnector)
func (c *tcpServerConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}
	return listener, nil
}

// --------------------------------------------------------------------------
// TCP Client Connector
// --------------------------------------------------------------------------

// tcpClientConnector implements the IClientConnector interface for TCP sockets
type tcpClientConnector struct{}

// (docu see socket.IClientConnector)
func (c *tcpClientConnector) GetName() string {
	return "tcp"
}

// (docu see socket.IClientConnector)
func (c *tcpClientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

// UpgradeConnection applies performance settings to a TCP connection.
// Nagle's algorithm is disabled - the frame protocol already batches header
// and payload into one write, and request latency matters more than
// throughput per packet here.
func (c *tcpClientConnector) UpgradeConnection(conn net.Conn, _ common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	if err := tcpConn.SetNoDelay(true); err != nil {
		return err
	}
	if err := tcpConn.SetKeepAlive(true); err != nil {
		return err
	}
	return tcpConn.SetKeepAlivePeriod(tcpKeepAlivePeriod)
}

// --------------------------------------------------------------------------
// Transport Factory Methods
// --------------------------------------------------------------------------

// NewTCPServerTransport creates a new TCP server transport with default buffer size
func NewTCPServerTransport(maxWorkersPerConn int) transport.IRPCServerTransport {
	return newServerTransport(&tcpServerConnector{}, tcpDefaultBufferSize, maxWorkersPerConn)
}

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRPCClientTransport {
	return newClientTransport(&tcpClientConnector{})
}
