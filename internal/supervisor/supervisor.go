// Package supervisor implements the accept loop, connection registry,
// and signal-driven shutdown sequence, grounded on
// original_source/server/aesdsocket.c's main/handle_incoming_signal.
package supervisor

import (
	"container/list"
	"net"
	"sync"
	"time"

	aesdsock "github.com/aesdsock/aesdsock"
	"github.com/aesdsock/aesdsock/internal/constants"
	"github.com/aesdsock/aesdsock/internal/interfaces"
	"github.com/aesdsock/aesdsock/internal/timestamp"
	"github.com/aesdsock/aesdsock/internal/worker"
)

// HandleFactory returns a fresh interfaces.Store handle bound to the
// server's shared backing store, one per accepted connection —
// mirroring every connection thread in original_source sharing one
// FILE* but calling fopen-equivalent open semantics independently.
type HandleFactory func() interfaces.Store

// Config configures a Supervisor.
type Config struct {
	Addr              string
	NewHandle         HandleFactory
	Logger            interfaces.Logger
	Observer          interfaces.Observer
	Backlog           int
	EnableTimestamp   bool
	TimestampInterval time.Duration
	TimestampHandle   HandleFactory
}

// Supervisor owns the listening socket, the connection registry, and
// the timestamp producer for the server's lifetime.
type Supervisor struct {
	cfg      Config
	listener net.Listener
	lock     sync.Mutex // the shared backing-store lock, held for one connection's dispatch at a time

	connMu      sync.Mutex
	connections *list.List // of *worker.Worker

	producer *timestamp.Producer

	closeOnce sync.Once
}

// New creates a Supervisor and binds its listening socket with
// SO_REUSEPORT enabled.
func New(cfg Config) (*Supervisor, error) {
	if cfg.Backlog < constants.DefaultListenBacklog {
		cfg.Backlog = constants.DefaultListenBacklog
	}

	listener, err := reuseportListen(cfg.Addr)
	if err != nil {
		return nil, aesdsock.WrapError("New", err)
	}

	s := &Supervisor{
		cfg:         cfg,
		listener:    listener,
		connections: list.New(),
	}

	if cfg.EnableTimestamp {
		factory := cfg.TimestampHandle
		if factory == nil {
			factory = cfg.NewHandle
		}
		s.producer = timestamp.New(timestamp.Config{
			Store:    factory(),
			Lock:     &s.lock,
			Logger:   cfg.Logger,
			Observer: cfg.Observer,
			Interval: cfg.TimestampInterval,
		})
	}

	return s, nil
}

// Serve runs the accept loop until the listener is closed by
// Shutdown. It spawns one worker.Worker per accepted connection and,
// after each accept, performs a single-pass reap: insertion-at-head is
// monotonic with completion, so one pass per iteration is sufficient
// to keep the list bounded.
func (s *Supervisor) Serve() error {
	if s.producer != nil {
		s.producer.Start()
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}

		w := worker.New(worker.Config{
			Conn:     conn,
			Store:    s.cfg.NewHandle(),
			Lock:     &s.lock,
			Logger:   s.cfg.Logger,
			Observer: s.cfg.Observer,
		})
		w.Start()

		s.connMu.Lock()
		s.connections.PushFront(w)
		s.reapLocked()
		s.connMu.Unlock()
	}
}

// reapLocked removes every completed worker from the registry. Caller
// must hold connMu.
func (s *Supervisor) reapLocked() {
	for e := s.connections.Front(); e != nil; {
		next := e.Next()
		if e.Value.(*worker.Worker).Complete() {
			s.connections.Remove(e)
		}
		e = next
	}
}

// Shutdown performs an orderly termination sequence: close the
// listener so no new connections are accepted, shut down every live
// connection to unblock its worker, wait (up to 5 seconds) for them to
// finish, then stop the timestamp producer. Safe to call multiple
// times; only the first call acts.
func (s *Supervisor) Shutdown() {
	s.closeOnce.Do(func() {
		_ = s.listener.Close()

		s.connMu.Lock()
		workers := make([]*worker.Worker, 0, s.connections.Len())
		for e := s.connections.Front(); e != nil; e = e.Next() {
			workers = append(workers, e.Value.(*worker.Worker))
		}
		s.connMu.Unlock()

		for _, w := range workers {
			w.Shutdown()
		}

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if s.allComplete(workers) {
				break
			}
			time.Sleep(constants.ReapPause)
		}

		if s.producer != nil {
			s.producer.Stop()
		}
	})
}

func (s *Supervisor) allComplete(workers []*worker.Worker) bool {
	for _, w := range workers {
		if !w.Complete() {
			return false
		}
	}
	return true
}

// Addr returns the bound listener's address, useful in tests that
// bind to ":0".
func (s *Supervisor) Addr() net.Addr {
	return s.listener.Addr()
}
