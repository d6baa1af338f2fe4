// Package worker implements the per-connection lifecycle: frame one
// message off the wire, dispatch it as a write-through or a seek,
// then replay the backing store to the client.
package worker

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aesdsock/aesdsock/internal/bufpool"
	"github.com/aesdsock/aesdsock/internal/framer"
	"github.com/aesdsock/aesdsock/internal/interfaces"
	"github.com/aesdsock/aesdsock/internal/uapi"
)

// Config configures a single connection Worker.
type Config struct {
	Conn     net.Conn
	Store    interfaces.Store
	Lock     *sync.Mutex
	Logger   interfaces.Logger
	Observer interfaces.Observer
}

// Worker services one accepted client connection end to end: read one
// message, dispatch it, play back the store, close.
type Worker struct {
	conn     net.Conn
	store    interfaces.Store
	lock     *sync.Mutex
	logger   interfaces.Logger
	observer interfaces.Observer
	peer     string

	complete atomic.Bool
}

// New creates a Worker ready to be started with Start.
func New(cfg Config) *Worker {
	return &Worker{
		conn:     cfg.Conn,
		store:    cfg.Store,
		lock:     cfg.Lock,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		peer:     cfg.Conn.RemoteAddr().String(),
	}
}

// Start launches the worker's goroutine. The caller observes
// completion via Complete, set on every exit path.
func (w *Worker) Start() {
	go w.run()
}

// Complete reports whether the worker has finished servicing its
// connection. Safe to poll from the supervisor's reaper without
// holding any lock — it is the sole publication point between the
// worker goroutine and the supervisor.
func (w *Worker) Complete() bool {
	return w.complete.Load()
}

// Shutdown unblocks a pending read/write by shutting down the
// underlying connection, used by the supervisor during termination.
func (w *Worker) Shutdown() {
	if tc, ok := w.conn.(*net.TCPConn); ok {
		_ = tc.CloseRead()
		_ = tc.CloseWrite()
		return
	}
	_ = w.conn.Close()
}

func (w *Worker) run() {
	defer w.finish()

	if w.logger != nil {
		w.logger.Printf("accepted connection from %s", w.peer)
	}
	if w.observer != nil {
		w.observer.ObserveConnection(w.peer)
	}

	// The shared store lock is acquired before the newline-wait, not
	// just around the open/dispatch/playback that follows: one slow or
	// malicious client monopolizes the shared store for as long as it
	// takes to complete its message, matching connection_thread_function
	// holding output_file_mutex across its whole recv-to-close sequence.
	w.lock.Lock()
	defer w.lock.Unlock()

	message, ok := w.readMessage()
	if !ok {
		return
	}

	if err := w.store.OpenAppendRead(); err != nil {
		w.logWrite(0, err)
		return
	}
	defer w.store.Close()

	if seek, ok := framer.ParseSeekCommand(message); ok {
		err := w.store.Ioctl(uapi.AesdSeekTo{WriteCmd: seek.WriteCmd, WriteCmdOffset: seek.WriteCmdOffset})
		if w.observer != nil {
			w.observer.ObserveSeek(err == nil)
		}
		if err != nil {
			if w.logger != nil {
				w.logger.Printf("seek to (%d,%d) failed for %s: %v", seek.WriteCmd, seek.WriteCmdOffset, w.peer, err)
			}
			return
		}
	} else {
		err := w.store.Append(message)
		w.logWrite(len(message), err)
		if err != nil {
			return
		}
		if err := w.store.Seek(0); err != nil {
			if w.logger != nil {
				w.logger.Printf("rewind failed for %s: %v", w.peer, err)
			}
			return
		}
	}

	w.playback()
}

func (w *Worker) readMessage() ([]byte, bool) {
	f := framer.New()
	chunk := bufpool.Get()
	defer bufpool.Put(chunk)
	for {
		n, err := w.conn.Read(chunk)
		if n > 0 {
			f.Feed(chunk[:n])
			if message, ok := f.Next(); ok {
				return message, true
			}
		}
		if err != nil {
			return nil, false
		}
	}
}

// playback streams the store back to the client in non-fatal-send
// mode: any write error terminates this connection but is never
// treated as fatal to the process, matching original_source's use of
// MSG_NOSIGNAL around send().
func (w *Worker) playback() {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	total := 0
	var playbackErr error
	start := time.Now()

	for {
		n, err := w.store.ReadLine(buf)
		if n > 0 {
			if _, werr := w.conn.Write(buf[:n]); werr != nil {
				playbackErr = werr
				break
			}
			total += n
		}
		if err != nil {
			if err != io.EOF {
				playbackErr = err
			}
			break
		}
	}

	if w.observer != nil {
		w.observer.ObservePlayback(total, time.Since(start).Nanoseconds(), playbackErr == nil)
	}
	if playbackErr != nil && w.logger != nil {
		w.logger.Printf("playback to %s failed after %d bytes: %v", w.peer, total, playbackErr)
	}
}

func (w *Worker) logWrite(n int, err error) {
	if w.observer != nil {
		w.observer.ObserveWrite(n, 0, err == nil)
	}
	if err != nil && w.logger != nil {
		w.logger.Printf("write from %s failed: %v", w.peer, err)
	}
}

func (w *Worker) finish() {
	_ = w.conn.Close()
	w.complete.Store(true)
	if w.logger != nil {
		w.logger.Printf("closed connection from %s", w.peer)
	}
}
