// Package timestamp implements the background producer that appends
// a timestamp entry to the backing store on a fixed interval,
// grounded on original_source/server/timestamp_writer.c.
package timestamp

import (
	"sync"
	"time"

	"github.com/aesdsock/aesdsock/internal/constants"
	"github.com/aesdsock/aesdsock/internal/interfaces"
)

// Producer appends "timestamp:<RFC2822>\n" to the shared backing
// store every constants.TimestampInterval, serialized under the same
// lock the connection workers use.
type Producer struct {
	store    interfaces.Store
	lock     *sync.Mutex
	logger   interfaces.Logger
	observer interfaces.Observer
	interval time.Duration

	done chan struct{}
	wg   sync.WaitGroup
}

// Config configures a Producer.
type Config struct {
	Store    interfaces.Store
	Lock     *sync.Mutex
	Logger   interfaces.Logger
	Observer interfaces.Observer
	Interval time.Duration // zero means constants.TimestampInterval
}

// New creates a Producer. Call Start to begin ticking.
func New(cfg Config) *Producer {
	interval := cfg.Interval
	if interval <= 0 {
		interval = constants.TimestampInterval
	}
	return &Producer{
		store:    cfg.Store,
		lock:     cfg.Lock,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the ticking goroutine.
func (p *Producer) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop signals the producer to exit and blocks until its goroutine
// has returned, even if it is mid-sleep — the ticker is selected
// against the done channel rather than polled, so shutdown is prompt
// regardless of where in the interval Stop is called.
func (p *Producer) Stop() {
	close(p.done)
	p.wg.Wait()
}

func (p *Producer) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case now := <-ticker.C:
			p.write(now)
		}
	}
}

func (p *Producer) write(now time.Time) {
	line := []byte("timestamp:" + now.Format("Mon, 02 Jan 2006 15:04:05 -0700") + "\n")

	p.lock.Lock()
	err := p.append(line)
	p.lock.Unlock()

	if p.observer != nil {
		p.observer.ObserveTimestamp(err == nil)
	}
	if err != nil && p.logger != nil {
		p.logger.Printf("timestamp write failed: %v", err)
	}
}

func (p *Producer) append(line []byte) error {
	if err := p.store.OpenAppendRead(); err != nil {
		return err
	}
	defer p.store.Close()
	return p.store.Append(line)
}
