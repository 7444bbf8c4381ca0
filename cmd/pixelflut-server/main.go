// Command pixelflut-server runs a Pixelflut canvas server: it accepts TCP
// connections, lets each client draw pixels onto a shared framebuffer via the
// Pixelflut text/binary protocol, and periodically reports stats.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/timvisee/pixelpwnr-server/canvas"
	"github.com/timvisee/pixelpwnr-server/config"
	"github.com/timvisee/pixelpwnr-server/protocol"
	"github.com/timvisee/pixelpwnr-server/server"
	"github.com/timvisee/pixelpwnr-server/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: failed to load config: %v, using defaults", err)
		cfg = config.Default()
	}

	host := flag.String("host", cfg.Host, "TCP listen address")
	width := flag.Int("width", cfg.Width, "canvas width in pixels")
	height := flag.Int("height", cfg.Height, "canvas height in pixels")
	noBinary := flag.Bool("no-binary", cfg.NoBinary, "disable the PB binary command")
	idleTimeout := flag.Duration("idle-timeout", cfg.IdleTimeout, "drop a connection idle this long (0 disables)")
	statsInterval := flag.Duration("stats-interval", cfg.StatsInterval, "interval between stats log lines")
	snapshotIn := flag.String("snapshot-in", cfg.SnapshotIn, "PNG file to load into the canvas at startup")
	snapshotOut := flag.String("snapshot-out", cfg.SnapshotOut, "PNG file to save the canvas to at shutdown")
	statsDB := flag.String("stats-db", cfg.StatsDB, "SQLite database to append stats history to (empty disables)")
	cpuProfile := flag.String("pprof-cpu", "", "write a CPU profile to this file")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create CPU profile: %v\n", err)
			os.Exit(1)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	pm := canvas.New(*width, *height)
	if *snapshotIn != "" {
		if err := loadSnapshot(*snapshotIn, pm); err != nil {
			log.Printf("snapshot: failed to load %s: %v", *snapshotIn, err)
		} else {
			log.Printf("snapshot: loaded canvas from %s", *snapshotIn)
		}
	}

	st := stats.New()

	var sinks []stats.Sink
	sinks = append(sinks, stats.NewLogSink(log.Default()), newConsoleSink())
	var history *stats.SQLiteHistory
	if *statsDB != "" {
		history, err = stats.NewSQLiteHistory(*statsDB)
		if err != nil {
			log.Printf("stats: failed to open history db %s: %v", *statsDB, err)
		} else {
			defer history.Close()
			sinks = append(sinks, history)
		}
	}
	reporter := stats.NewReporter(st, *statsInterval, sinks...)
	reporter.Start()
	defer reporter.Stop()

	pcfg := protocol.DefaultConfig()
	pcfg.BinaryEnabled = !*noBinary

	ln := server.NewListener(*host, pm, st, server.Options{
		Config: pcfg,
		BufCap: cfg.BufCap,
		// Flag wins over the loaded config's idle timeout default.
		IdleTimeout: *idleTimeout,
		Logger:      log.Default(),
	})
	if err := ln.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start listener: %v\n", err)
		os.Exit(1)
	}
	log.Printf("pixelflut-server listening on %s, canvas %dx%d", ln.Addr(), *width, *height)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ln.Stop(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	if *snapshotOut != "" {
		if err := saveSnapshot(*snapshotOut, pm); err != nil {
			log.Printf("snapshot: failed to save %s: %v", *snapshotOut, err)
		} else {
			log.Printf("snapshot: saved canvas to %s", *snapshotOut)
		}
	}
}

// loadSnapshot decodes a PNG at path and fills pm with it. The image's
// dimensions must match pm's exactly.
func loadSnapshot(path string, pm *canvas.Pixmap) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return err
	}

	width, height := pm.Dimensions()
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("snapshot: image is %dx%d, canvas is %dx%d", b.Dx(), b.Dy(), width, height)
	}

	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return pm.Fill(rgba.Pix)
}

// saveSnapshot encodes pm's current contents as a PNG at path.
func saveSnapshot(path string, pm *canvas.Pixmap) error {
	width, height := pm.Dimensions()
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(rgba.Pix, pm.Snapshot(nil))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, rgba)
}

// consoleSink prints a human-readable throughput line to stdout each time it
// samples, truncated to the operator's terminal width when stdout is a tty.
type consoleSink struct {
	mu       sync.Mutex
	lastSeen time.Time
	lastBy   uint64
	lastPx   uint64
}

func newConsoleSink() *consoleSink {
	return &consoleSink{lastSeen: time.Now()}
}

func (c *consoleSink) Record(snap stats.Snapshot) {
	c.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(c.lastSeen).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}
	byteRate := float64(snap.BytesRead-c.lastBy) / elapsed
	pixelRate := float64(snap.PixelsSet-c.lastPx) / elapsed
	c.lastSeen, c.lastBy, c.lastPx = now, snap.BytesRead, snap.PixelsSet
	c.mu.Unlock()

	line := fmt.Sprintf("%s/s, %s px/s, %s clients",
		humanize.Bytes(uint64(byteRate)),
		humanize.Comma(int64(pixelRate)),
		humanize.Comma(snap.ClientsCurrent))

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 && len(line) > width {
		line = line[:width]
	}
	fmt.Println(line)
}
