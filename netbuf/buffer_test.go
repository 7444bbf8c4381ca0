package netbuf

import "testing"

func TestReserveProducedUnreadConsume(t *testing.T) {
	b := New(8, 64)
	dst, err := b.Reserve(4)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	copy(dst, []byte("abcd"))
	b.Produced(4)

	if got := string(b.Unread()); got != "abcd" {
		t.Fatalf("unread = %q", got)
	}
	b.Consume(2)
	if got := string(b.Unread()); got != "cd" {
		t.Fatalf("unread after consume = %q", got)
	}
}

func TestConsumeAllRewindsForFree(t *testing.T) {
	b := New(8, 64)
	dst, _ := b.Reserve(3)
	copy(dst, []byte("xyz"))
	b.Produced(3)
	b.Consume(3)
	if b.Len() != 0 {
		t.Fatalf("len = %d, want 0", b.Len())
	}
	dst, err := b.Reserve(8)
	if err != nil {
		t.Fatalf("reserve after full consume: %v", err)
	}
	if len(dst) != 8 {
		t.Fatalf("reserve gave %d bytes, want 8", len(dst))
	}
}

func TestReserveGrowsAndCompacts(t *testing.T) {
	b := New(4, 64)
	dst, _ := b.Reserve(4)
	copy(dst, []byte("abcd"))
	b.Produced(4)
	b.Consume(2) // "cd" remains unread

	dst, err := b.Reserve(6)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	copy(dst, []byte("efghij"))
	b.Produced(6)

	if got := string(b.Unread()); got != "cdefghij" {
		t.Fatalf("unread = %q, want %q", got, "cdefghij")
	}
}

func TestReserveRejectsPastMaxCapacity(t *testing.T) {
	b := New(4, 8)
	if _, err := b.Reserve(4); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	b.Produced(4)
	if _, err := b.Reserve(5); err == nil {
		t.Fatalf("expected error reserving past max capacity")
	}
}

func TestFull(t *testing.T) {
	b := New(4, 4)
	if b.Full() {
		t.Fatalf("empty buffer reported full")
	}
	dst, err := b.Reserve(4)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	copy(dst, []byte("abcd"))
	b.Produced(4)
	if !b.Full() {
		t.Fatalf("buffer at max capacity not reported full")
	}
}

func TestAvailableShrinksAsBufferFills(t *testing.T) {
	b := New(4, 8)
	if got := b.Available(); got != 8 {
		t.Fatalf("available = %d, want 8", got)
	}
	dst, err := b.Reserve(4)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	b.Produced(4)
	_ = dst
	if got := b.Available(); got != 4 {
		t.Fatalf("available after producing 4 = %d, want 4", got)
	}
	b.Consume(4)
	if got := b.Available(); got != 8 {
		t.Fatalf("available after consuming all = %d, want 8", got)
	}
}

func TestAvailableUnboundedWhenNoMaxCapacity(t *testing.T) {
	b := New(4, 0)
	if b.Available() <= 0 {
		t.Fatalf("available = %d, want a large positive value", b.Available())
	}
}

func TestPanicsOnOverconsume(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic consuming past unread length")
		}
	}()
	b := New(4, 8)
	b.Consume(1)
}
