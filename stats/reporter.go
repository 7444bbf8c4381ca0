package stats

import (
	"log"
	"time"
)

// Sink receives periodic stats snapshots. It is the boundary contract for an
// external reporting backend (e.g. InfluxDB). This package ships LogSink and
// SQLiteHistory; it has no InfluxDB sink.
type Sink interface {
	Record(Snapshot)
}

// LogSink logs each snapshot at info level. Useful as a zero-dependency
// default when no history sink is configured.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink returns a Sink that logs through l, defaulting to log.Default().
func NewLogSink(l *log.Logger) *LogSink {
	if l == nil {
		l = log.Default()
	}
	return &LogSink{logger: l}
}

func (s *LogSink) Record(snap Snapshot) {
	s.logger.Printf("stats: bytes=%d pixels=%d clients_total=%d clients_current=%d",
		snap.BytesRead, snap.PixelsSet, snap.ClientsTotal, snap.ClientsCurrent)
}

// Reporter samples a Stats on a fixed interval and forwards the snapshot to
// zero or more Sinks.
type Reporter struct {
	stats    *Stats
	interval time.Duration
	sinks    []Sink
	quit     chan struct{}
	done     chan struct{}
}

// NewReporter builds a Reporter that samples stats every interval.
func NewReporter(s *Stats, interval time.Duration, sinks ...Sink) *Reporter {
	return &Reporter{
		stats:    s,
		interval: interval,
		sinks:    sinks,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the sampling loop in a new goroutine. Stop must be called to
// release it.
func (r *Reporter) Start() {
	go r.run()
}

func (r *Reporter) run() {
	defer close(r.done)
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sample()
		case <-r.quit:
			return
		}
	}
}

func (r *Reporter) sample() {
	snap := r.stats.Snapshot()
	for _, sink := range r.sinks {
		sink.Record(snap)
	}
}

// Stop halts the sampling loop and waits for it to exit.
func (r *Reporter) Stop() {
	close(r.quit)
	<-r.done
}
