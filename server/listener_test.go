package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/timvisee/pixelpwnr-server/canvas"
	"github.com/timvisee/pixelpwnr-server/protocol"
	"github.com/timvisee/pixelpwnr-server/stats"
)

func TestListenerAcceptAndServe(t *testing.T) {
	pm := canvas.New(50, 50)
	st := stats.New()
	ln := NewListener("127.0.0.1:0", pm, st, Options{Config: protocol.DefaultConfig(), BufCap: 4096})
	if err := ln.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("SIZE\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "SIZE 50 50\n" {
		t.Fatalf("got %q", line)
	}
	if got := st.Snapshot().ClientsTotal; got != 1 {
		t.Fatalf("clients_total = %d, want 1", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ln.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestListenerTracksClientsCurrent(t *testing.T) {
	pm := canvas.New(10, 10)
	st := stats.New()
	ln := NewListener("127.0.0.1:0", pm, st, Options{Config: protocol.DefaultConfig(), BufCap: 4096})
	if err := ln.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = ln.Stop(ctx)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ln.ActiveConns() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ln.ActiveConns() != 1 {
		t.Fatalf("active conns = %d, want 1", ln.ActiveConns())
	}
	if got := st.Snapshot().ClientsCurrent; got != 1 {
		t.Fatalf("clients_current = %d, want 1", got)
	}

	conn.Close()

	for ln.ActiveConns() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := st.Snapshot().ClientsCurrent; got != 0 {
		t.Fatalf("clients_current = %d, want 0 after disconnect", got)
	}
}
