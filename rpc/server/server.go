package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/VictoriaMetrics/metrics"
	"github.com/anydict/numstore/lib/store"
	"github.com/anydict/numstore/lib/store/dense"
	"github.com/anydict/numstore/lib/store/synced"
	"github.com/anydict/numstore/rpc/common"
	"github.com/anydict/numstore/rpc/serializer"
	"github.com/anydict/numstore/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

var logger = common.GetLogger("rpc/server")

// serverStore is one hosted store with the adapter that handles requests
// for it
type serverStore struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		socket.NewTCPServerTransport(16),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		stores:     xsync.NewMapOf[uint64, serverStore](),
	}
}

type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	stores     *xsync.MapOf[uint64, serverStore]
}

// registerTransportHandler wires the transport to the adapters: the raw
// payload is deserialized, routed by store ID, handled, and the response
// serialized back.
func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(storeID uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate store
		hosted, ok := s.stores.Load(storeID)

		// Case store does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("store %d not found", storeID),
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
				}
			} else {
				// Let the adapter handle the request
				respMsg = *hosted.Adapter.Handle(&msg, hosted.Store)
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			logger.Error("failed to serialize response", "err", err)
			val, _ = s.serializer.Serialize(common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			})
		}
		return val
	})
}

// storeFilePath returns the persistence location for a hosted store
func (s *RPCServer) storeFilePath(id uint64) string {
	return filepath.Join(s.config.DataDir, fmt.Sprintf("%d.numstore", id))
}

func (s *RPCServer) init() error {
	// Init logger
	if err := common.InitLogger(s.config.LogLevel); err != nil {
		return err
	}

	logger.Info("created RPC server")
	fmt.Println(s.config.String())

	if len(s.config.Stores) == 0 {
		return fmt.Errorf("no stores configured")
	}

	// CREATE STORES

	/*
		Each configured store is a dense engine wrapped with the synced
		decorator - the transports dispatch requests concurrently, so the
		single-threaded engine must never be exposed directly.
	*/

	for _, def := range s.config.Stores {
		if _, loaded := s.stores.Load(def.ID); loaded {
			return fmt.Errorf("duplicate store ID %d", def.ID)
		}

		engine, err := dense.New(def.Capacity, def.Mode)
		if err != nil {
			return fmt.Errorf("failed to create store %d: %w", def.ID, err)
		}
		wrapped := synced.New(engine)

		// Restore persisted state if present
		if s.config.DataDir != "" {
			path := s.storeFilePath(def.ID)
			if _, err := os.Stat(path); err == nil {
				if err := wrapped.LoadFile(path); err != nil {
					return fmt.Errorf("failed to load store %d from %s: %w", def.ID, path, err)
				}
				logger.Info("restored store from disk", "storeID", def.ID, "path", path)
			}
		}

		s.stores.Store(def.ID, serverStore{
			Store:   wrapped,
			Adapter: NewStoreServerAdapter(),
		})
		logger.Info("created store",
			"storeID", def.ID, "capacity", def.Capacity, "mode", def.Mode.String())
	}

	logger.Info("numstore setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	// Persist stores on shutdown
	if s.config.DataDir != "" {
		s.saveOnShutdown()
	}

	// Expose Prometheus metrics if configured
	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics()
	}

	return nil
}

// saveOnShutdown installs a signal handler that writes every hosted store to
// the data directory before the process exits.
func (s *RPCServer) saveOnShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("shutting down, persisting stores", "signal", sig.String())

		if err := os.MkdirAll(s.config.DataDir, 0o755); err != nil {
			logger.Error("failed to create data directory", "err", err)
			os.Exit(1)
		}

		failed := false
		s.stores.Range(func(id uint64, hosted serverStore) bool {
			path := s.storeFilePath(id)
			if err := hosted.Store.SaveFile(path); err != nil {
				logger.Error("failed to save store", "storeID", id, "err", err)
				failed = true
			} else {
				logger.Info("saved store", "storeID", id, "path", path)
			}
			return true
		})

		if failed {
			os.Exit(1)
		}
		os.Exit(0)
	}()
}

// serveMetrics exposes the process metrics in Prometheus text format
func (s *RPCServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	logger.Info("starting metrics endpoint", "endpoint", s.config.MetricsEndpoint)
	if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
		logger.Error("metrics endpoint failed", "err", err)
	}
}

// Serve starts the RPC server
// This function will also initialize the server plus the stores and start the transport layer
func (s *RPCServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
