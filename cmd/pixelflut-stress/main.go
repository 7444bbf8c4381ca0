// Command pixelflut-stress hammers a running pixelflut-server with many
// concurrent connections, each flooding PX commands, and prints a summary of
// throughput and errors at the end of the run.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:1234", "server address to connect to")
	sessions := flag.Int("sessions", 8, "number of concurrent connections")
	duration := flag.Duration("duration", 15*time.Second, "total duration of the stress run")
	width := flag.Int("width", 800, "canvas width to draw within")
	height := flag.Int("height", 600, "canvas height to draw within")
	binary := flag.Bool("binary", false, "use the PB binary command instead of text PX")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	metrics := newStressMetrics()

	var wg sync.WaitGroup
	for i := 0; i < *sessions; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			runSession(ctx, metrics, *addr, *width, *height, *binary, idx)
		}(i)
	}
	wg.Wait()

	metrics.printSummary(*duration)
}

func runSession(ctx context.Context, metrics *stressMetrics, addr string, width, height int, binary bool, idx int) {
	rng := rand.New(rand.NewSource(int64(idx) + 1))

	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			metrics.recordError()
			time.Sleep(200 * time.Millisecond)
			continue
		}
		metrics.recordConnect()
		drawLoop(ctx, metrics, conn, rng, width, height, binary)
		_ = conn.Close()
	}
}

func drawLoop(ctx context.Context, metrics *stressMetrics, conn net.Conn, rng *rand.Rand, width, height int, binary bool) {
	w := bufio.NewWriterSize(conn, 16*1024)
	buf := make([]byte, 0, 32)
	sent := 0

	for {
		if ctx.Err() != nil {
			_ = w.Flush()
			return
		}
		x := rng.Intn(width)
		y := rng.Intn(height)
		r, g, b := uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))

		buf = buf[:0]
		if binary {
			buf = append(buf, 'P', 'B',
				byte(x), byte(x>>8), byte(y), byte(y>>8),
				r, g, b, 0xFF)
		} else {
			buf = fmt.Appendf(buf, "PX %d %d %02x%02x%02x\n", x, y, r, g, b)
		}

		if _, err := w.Write(buf); err != nil {
			metrics.recordError()
			return
		}
		metrics.recordPixel()
		sent++

		if sent%256 == 0 {
			if err := w.Flush(); err != nil {
				metrics.recordError()
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(2 * time.Second)); err != nil {
				return
			}
		}
	}
}

type stressMetrics struct {
	pixels   atomic.Uint64
	connects atomic.Uint64
	errors   atomic.Uint64
}

func newStressMetrics() *stressMetrics {
	return &stressMetrics{}
}

func (m *stressMetrics) recordPixel()   { m.pixels.Add(1) }
func (m *stressMetrics) recordConnect() { m.connects.Add(1) }
func (m *stressMetrics) recordError()   { m.errors.Add(1) }

func (m *stressMetrics) printSummary(d time.Duration) {
	pixels := m.pixels.Load()
	rate := float64(pixels) / d.Seconds()
	log.Printf("summary: connects=%d pixels=%d errors=%d rate=%.0f px/s",
		m.connects.Load(), pixels, m.errors.Load(), rate)
}
