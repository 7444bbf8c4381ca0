package canvas

import "testing"

func TestSetGetOpaqueRoundTrip(t *testing.T) {
	p := New(10, 10)
	p.Set(3, 4, 0xAA, 0xBB, 0xCC, 0xFF)
	r, g, b, a := p.Get(3, 4)
	if r != 0xAA || g != 0xBB || b != 0xCC || a != 0xFF {
		t.Fatalf("got (%02x,%02x,%02x,%02x)", r, g, b, a)
	}
}

func TestSetBlendOverExisting(t *testing.T) {
	p := New(10, 10)
	p.Set(0, 0, 0xFF, 0xFF, 0xFF, 0xFF)
	p.Set(0, 0, 0x00, 0x00, 0x00, 0x80)
	r, g, b, a := p.Get(0, 0)
	if a != 0xFF {
		t.Fatalf("blended pixel alpha = %02x, want ff", a)
	}
	// out = src*a + dst*(1-a) = 0*(128/255) + 255*(1-128/255) = 127
	if r != 0x7F || g != 0x7F || b != 0x7F {
		t.Fatalf("got (%02x,%02x,%02x), want (7f,7f,7f)", r, g, b)
	}
}

func TestContains(t *testing.T) {
	p := New(10, 20)
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{9, 19, true},
		{10, 0, false},
		{0, 20, false},
		{-1, 0, false},
	}
	for _, c := range cases {
		if got := p.Contains(c.x, c.y); got != c.want {
			t.Fatalf("Contains(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestSnapshotAndFillRoundTrip(t *testing.T) {
	p := New(2, 2)
	p.Set(0, 0, 1, 2, 3, 0xFF)
	p.Set(1, 1, 4, 5, 6, 0xFF)

	buf := p.Snapshot(nil)
	if len(buf) != 4*2*2 {
		t.Fatalf("snapshot length = %d, want %d", len(buf), 4*2*2)
	}

	q := New(2, 2)
	if err := q.Fill(buf); err != nil {
		t.Fatalf("fill: %v", err)
	}
	r, g, b, a := q.Get(1, 1)
	if r != 4 || g != 5 || b != 6 || a != 0xFF {
		t.Fatalf("got (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestFillRejectsWrongLength(t *testing.T) {
	p := New(2, 2)
	if err := p.Fill(make([]byte, 3)); err == nil {
		t.Fatalf("expected error on mismatched length")
	}
}

func TestNewPanicsOnInvalidDimensions(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-positive dimensions")
		}
	}()
	New(0, 10)
}
