package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/timvisee/pixelpwnr-server/canvas"
	"github.com/timvisee/pixelpwnr-server/netbuf"
	"github.com/timvisee/pixelpwnr-server/protocol"
	"github.com/timvisee/pixelpwnr-server/stats"
)

// shutdownPoll is how often a Conn with no configured idle timeout wakes up
// to check for a shutdown signal. The codec and exec never suspend, so this
// is the only latency a connection can impose on shutdown.
const shutdownPoll = time.Second

// readChunk is how much producer-side room Conn reserves per socket read.
const readChunk = 4096

// Conn owns one accepted socket end to end: its input and output buffers,
// and shared handles to the canvas and stats. It is single-tasked — there is
// no concurrency inside a Conn; the codec's cost per byte is low enough that
// a second goroutine per connection would be pure overhead.
type Conn struct {
	id     uuid.UUID
	nc     net.Conn
	in     *netbuf.Buffer
	out    *netbuf.Buffer
	pm     *canvas.Pixmap
	st     *stats.Stats
	cfg    protocol.Config
	idle   time.Duration
	logger *log.Logger
}

// NewConn wraps an accepted socket. bufCap bounds both the input and output
// buffers (see netbuf.Buffer); idle is the optional per-connection idle
// timeout (0 disables it).
func NewConn(nc net.Conn, pm *canvas.Pixmap, st *stats.Stats, cfg protocol.Config, bufCap int, idle time.Duration, logger *log.Logger) *Conn {
	if logger == nil {
		logger = log.Default()
	}
	if tc, ok := nc.(*net.TCPConn); ok {
		// Replies are short and latency-sensitive; Nagle's algorithm would
		// only add delay for no bandwidth benefit here.
		_ = tc.SetNoDelay(true)
	}
	return &Conn{
		id:     uuid.New(),
		nc:     nc,
		in:     netbuf.New(readChunk, bufCap),
		out:    netbuf.New(256, bufCap),
		pm:     pm,
		st:     st,
		cfg:    cfg,
		idle:   idle,
		logger: logger,
	}
}

// ID returns the connection's log-correlation identifier.
func (c *Conn) ID() uuid.UUID { return c.id }

// Serve runs the connection's main loop until the socket closes, errors, or
// ctx is cancelled. It never returns a panic to its caller: a panic inside
// exec or the codec is caught here, logged, and treated as a dropped
// connection so one misbehaving frame can never affect another connection.
func (c *Conn) Serve(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("server: conn %s panic: %v", c.id, r)
			err = fmt.Errorf("server: conn %s panic: %v", c.id, r)
		}
	}()

	for {
		if err := c.flush(ctx); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, errShutdown) {
				return nil
			}
			return err
		}

		n, err := c.readSome(ctx)
		if err != nil {
			if errors.Is(err, errShutdown) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if n == 0 {
			continue // deadline poll with nothing read; loop to recheck ctx
		}
		c.st.IncBytes(uint64(n))

		c.drain()
	}
}

var errShutdown = errors.New("server: shutdown")

// readSome blocks for up to one poll/idle interval, reads whatever the
// socket has ready into the input buffer's producer region, and returns the
// number of bytes produced.
func (c *Conn) readSome(ctx context.Context) (int, error) {
	deadline := shutdownPoll
	timedOutIsFatal := false
	if c.idle > 0 {
		deadline = c.idle
		timedOutIsFatal = true
	}
	if err := c.nc.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return 0, err
	}

	// Request at most the room actually left under the buffer's cap: a
	// partial frame still sitting unconsumed can leave less than readChunk
	// of headroom, and Reserve(readChunk) would fail outright even though
	// a smaller read would let the frame complete.
	want := readChunk
	if room := c.in.Available(); room < want {
		want = room
	}
	if want <= 0 {
		return 0, fmt.Errorf("server: conn %s input buffer full of an incomplete frame", c.id)
	}

	dst, err := c.in.Reserve(want)
	if err != nil {
		return 0, err
	}
	n, err := c.nc.Read(dst)
	if n > 0 {
		c.in.Produced(n)
	}
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			if ctx.Err() != nil {
				return n, errShutdown
			}
			if timedOutIsFatal {
				return n, fmt.Errorf("server: conn %s idle timeout: %w", c.id, err)
			}
			return n, nil
		}
		if errors.Is(err, io.EOF) {
			return n, io.EOF
		}
		return n, err
	}
	return n, nil
}

// drain repeatedly invokes the codec over the unconsumed input, running exec
// for each Command it emits, until the codec reports it needs more bytes or
// the output buffer fills (backpressure: stop draining so the slow client's
// unread replies cap our own input consumption).
func (c *Conn) drain() {
	for {
		cmd, n, err := protocol.Scan(c.in.Unread(), c.cfg)
		switch {
		case errors.Is(err, protocol.ErrNeedMore):
			return
		case errors.Is(err, protocol.ErrSkip):
			c.in.Consume(n)
			continue
		default:
			exec(cmd, c.pm, c.st, c.out)
			c.in.Consume(n)
		}
		if c.out.Full() {
			return
		}
	}
}

// flush writes as many buffered reply bytes as possible to the socket,
// polling ctx between attempts so a slow-draining client can't hold up
// shutdown indefinitely.
func (c *Conn) flush(ctx context.Context) error {
	for c.out.Len() > 0 {
		if ctx.Err() != nil {
			return errShutdown
		}
		if err := c.nc.SetWriteDeadline(time.Now().Add(shutdownPoll)); err != nil {
			return err
		}
		n, err := c.nc.Write(c.out.Unread())
		if n > 0 {
			c.out.Consume(n)
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
	}
	return nil
}

// Close releases the underlying socket.
func (c *Conn) Close() error {
	return c.nc.Close()
}
