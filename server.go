// Package aesdsock implements a line-oriented message store exposed
// over a TCP socket and an emulated Linux character device.
package aesdsock

import (
	"fmt"

	"github.com/aesdsock/aesdsock/internal/config"
	"github.com/aesdsock/aesdsock/internal/interfaces"
	"github.com/aesdsock/aesdsock/internal/logging"
	"github.com/aesdsock/aesdsock/internal/store"
	"github.com/aesdsock/aesdsock/internal/supervisor"
)

// Logger is the narrow logging interface Server and its subsystems
// are written against.
type Logger = interfaces.Logger

// Observer collects operational metrics from a running Server.
type Observer = interfaces.Observer

// Options configures a Server beyond what config.Config carries.
type Options struct {
	// Logger receives operational log lines. Defaults to
	// logging.Default() when nil.
	Logger *logging.Logger

	// Observer receives metric observations. Defaults to a
	// MetricsObserver wrapping a fresh Metrics when nil.
	Observer Observer
}

// Server wraps internal/supervisor.Supervisor with the concrete
// backing-store wiring: one store, created at startup and torn down
// on shutdown, shared by every accepted connection.
type Server struct {
	cfg     config.Config
	sup     *supervisor.Supervisor
	metrics *Metrics
	logger  *logging.Logger

	fileStore       *store.FileStore
	realDeviceStore *store.RealDeviceStore
}

// NewServer builds a Server from cfg. The returned Server is not yet
// accepting connections; call Serve to run the accept loop.
func NewServer(cfg config.Config, opts *Options) (*Server, error) {
	if opts == nil {
		opts = &Options{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	metrics := NewMetrics()
	observer := opts.Observer
	if observer == nil {
		observer = NewMetricsObserver(metrics)
	}

	s := &Server{cfg: cfg, metrics: metrics, logger: logger}

	var newHandle supervisor.HandleFactory
	switch cfg.Store {
	case config.StoreFile:
		fs, err := store.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, WrapError("NewServer", err)
		}
		s.fileStore = fs
		newHandle = func() interfaces.Store { return fs.Handle() }
	case config.StoreDevice:
		ds := store.NewDeviceStore(cfg.RingCapacity)
		newHandle = func() interfaces.Store { return ds.Handle() }
	case config.StoreRealDevice:
		rs, err := store.NewRealDeviceStore(cfg.DevicePath)
		if err != nil {
			return nil, WrapError("NewServer", err)
		}
		s.realDeviceStore = rs
		newHandle = func() interfaces.Store { return rs.Handle() }
	default:
		return nil, NewError("NewServer", ErrCodeInvalidArgument, fmt.Sprintf("unknown store kind %q", cfg.Store))
	}

	sup, err := supervisor.New(supervisor.Config{
		Addr:            fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		NewHandle:       newHandle,
		Logger:          logger,
		Observer:        observer,
		Backlog:         5,
		EnableTimestamp: cfg.Store == config.StoreFile,
	})
	if err != nil {
		return nil, WrapError("NewServer", err)
	}
	s.sup = sup

	return s, nil
}

// Serve runs the accept loop until Shutdown closes the listener. It
// blocks the calling goroutine; callers typically run it in its own
// goroutine and wait on a signal channel.
func (s *Server) Serve() error {
	return s.sup.Serve()
}

// Shutdown stops accepting connections, drains in-flight ones, and,
// when backed by the local file, removes it afterward.
func (s *Server) Shutdown() error {
	s.sup.Shutdown()
	s.metrics.Stop()

	if s.fileStore != nil {
		if err := s.fileStore.Remove(); err != nil {
			return WrapError("Shutdown", err)
		}
	}
	if s.realDeviceStore != nil {
		if err := s.realDeviceStore.Close(); err != nil {
			return WrapError("Shutdown", err)
		}
	}
	return nil
}

// Addr returns the bound listener's address.
func (s *Server) Addr() string {
	return s.sup.Addr().String()
}

// Metrics returns the server's metrics instance.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}
