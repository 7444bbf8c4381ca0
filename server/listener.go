package server

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"github.com/timvisee/pixelpwnr-server/canvas"
	"github.com/timvisee/pixelpwnr-server/protocol"
	"github.com/timvisee/pixelpwnr-server/stats"
)

// Options configures a Listener's per-connection behaviour.
type Options struct {
	Config      protocol.Config
	BufCap      int
	IdleTimeout time.Duration
	Logger      *log.Logger
}

// Listener accepts TCP connections and spawns one Conn per accepted socket
// against a shared Pixmap and Stats. It never holds the canvas or stats
// behind a lock itself — each Conn mutates them directly.
type Listener struct {
	addr string
	pm   *canvas.Pixmap
	st   *stats.Stats
	opts Options

	ln   net.Listener
	quit chan struct{}
	wg   sync.WaitGroup

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// NewListener builds a Listener bound to addr once Start is called.
func NewListener(addr string, pm *canvas.Pixmap, st *stats.Stats, opts Options) *Listener {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.BufCap <= 0 {
		opts.BufCap = 4096
	}
	w, h := pm.Dimensions()
	opts.Config.Width, opts.Config.Height = uint16(clampU16(w)), uint16(clampU16(h))
	return &Listener{
		addr:  addr,
		pm:    pm,
		st:    st,
		opts:  opts,
		quit:  make(chan struct{}),
		conns: make(map[*Conn]struct{}),
	}
}

func clampU16(v int) int {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return v
}

// Start binds the listen address and begins accepting connections in the
// background. It returns once the bind has succeeded or failed.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.ln = ln
	l.wg.Add(1)
	go l.acceptLoop()
	return nil
}

// Addr returns the bound listen address. Valid only after Start succeeds.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-l.quit
		cancel()
	}()

	for {
		nc, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.quit:
				return
			default:
				l.opts.Logger.Printf("server: accept error: %v", err)
				continue
			}
		}

		l.st.IncClientsTotal()
		conn := NewConn(nc, l.pm, l.st, l.opts.Config, l.opts.BufCap, l.opts.IdleTimeout, l.opts.Logger)
		l.track(conn)

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			defer l.untrack(conn)
			defer conn.Close()
			defer l.st.DecClientsCurrent()
			if err := conn.Serve(ctx); err != nil {
				l.opts.Logger.Printf("server: conn %s error: %v", conn.ID(), err)
			}
		}()
	}
}

func (l *Listener) track(c *Conn) {
	l.mu.Lock()
	l.conns[c] = struct{}{}
	l.mu.Unlock()
}

func (l *Listener) untrack(c *Conn) {
	l.mu.Lock()
	delete(l.conns, c)
	l.mu.Unlock()
}

// Stop stops accepting new connections, broadcasts shutdown to every live
// Conn, and waits for them to finish their current drain iteration (or for
// ctx to expire, whichever comes first).
func (l *Listener) Stop(ctx context.Context) error {
	close(l.quit)
	if l.ln != nil {
		_ = l.ln.Close()
	}

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveConns returns the number of currently-tracked connections. Intended
// for tests and diagnostics, not the hot path.
func (l *Listener) ActiveConns() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}
