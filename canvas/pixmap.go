// Package canvas implements the shared pixel framebuffer: a fixed-size grid
// of 32-bit RGBA pixels written concurrently by many connection goroutines
// and read by a single external renderer.
//
// There is no mutex on the canvas. Each pixel is one atomic 32-bit word;
// concurrent writes to distinct pixels never collide, and concurrent writes
// to the same pixel produce one of the submitted values with no torn bytes.
// A mutex around the whole buffer would serialise every connection on every
// write, which defeats the one property that matters under contest load.
package canvas

import (
	"fmt"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"
)

// Pixmap is a fixed-size RGBA framebuffer. Width and height are immutable
// for the lifetime of the value.
type Pixmap struct {
	width, height int
	pixels        []atomic.Uint32
}

// New allocates a Pixmap of the given dimensions. Both must be positive.
func New(width, height int) *Pixmap {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("canvas: invalid dimensions %dx%d", width, height))
	}
	return &Pixmap{
		width:  width,
		height: height,
		pixels: make([]atomic.Uint32, width*height),
	}
}

// Dimensions returns the canvas width and height in pixels.
func (p *Pixmap) Dimensions() (width, height int) {
	return p.width, p.height
}

// Contains reports whether (x, y) is a valid coordinate on this canvas.
func (p *Pixmap) Contains(x, y int) bool {
	return x >= 0 && x < p.width && y >= 0 && y < p.height
}

func (p *Pixmap) index(x, y int) int {
	return y*p.width + x
}

func pack(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

func unpack(word uint32) (r, g, b, a uint8) {
	return uint8(word), uint8(word >> 8), uint8(word >> 16), uint8(word >> 24)
}

// Get performs a single atomic load and returns the pixel at (x, y).
// The caller must have already validated the coordinate with Contains.
func (p *Pixmap) Get(x, y int) (r, g, b, a uint8) {
	return unpack(p.pixels[p.index(x, y)].Load())
}

// Set writes the pixel at (x, y). When a is 0xFF the write replaces the
// destination unconditionally with a single atomic store. When a < 0xFF the
// source is alpha-blended over the current destination with a non-atomic
// read-modify-write: a racing writer may clobber this one. That race is
// accepted — see package doc — because blending is rare on competitive
// traffic and a lock here would serialise every set on the canvas.
func (p *Pixmap) Set(x, y int, r, g, b, a uint8) {
	slot := &p.pixels[p.index(x, y)]
	if a == 0xFF {
		slot.Store(pack(r, g, b, a))
		return
	}
	dr, dg, db, _ := unpack(slot.Load())
	blended := blend(dr, dg, db, r, g, b, a)
	slot.Store(pack(blended.r, blended.g, blended.b, 0xFF))
}

type rgb struct{ r, g, b uint8 }

// blend computes source-over straight-alpha compositing of (sr,sg,sb,sa)
// atop (dr,dg,db) using go-colorful's linear RGB lerp: dst.BlendRgb(src, t)
// returns dst + t*(src-dst), which is exactly out = src*a + dst*(1-a).
func blend(dr, dg, db, sr, sg, sb, sa uint8) rgb {
	t := float64(sa) / 255.0
	dst := colorful.Color{R: float64(dr) / 255, G: float64(dg) / 255, B: float64(db) / 255}
	src := colorful.Color{R: float64(sr) / 255, G: float64(sg) / 255, B: float64(sb) / 255}
	out := dst.BlendRgb(src, t)
	return rgb{r: clamp255(out.R), g: clamp255(out.G), b: clamp255(out.B)}
}

func clamp255(v float64) uint8 {
	v = v*255 + 0.5
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Snapshot copies the current pixel buffer into dst as packed RGBA bytes in
// scanline order, growing dst if it is too small, and returns the slice
// actually written (len(dst) == 4*width*height). This is the boundary
// contract an external renderer polls; the result may interleave old and
// new pixels across the copy and callers must tolerate that.
func (p *Pixmap) Snapshot(dst []byte) []byte {
	need := 4 * len(p.pixels)
	if cap(dst) < need {
		dst = make([]byte, need)
	} else {
		dst = dst[:need]
	}
	for i := range p.pixels {
		word := p.pixels[i].Load()
		off := i * 4
		dst[off] = byte(word)
		dst[off+1] = byte(word >> 8)
		dst[off+2] = byte(word >> 16)
		dst[off+3] = byte(word >> 24)
	}
	return dst
}

// Fill loads pix (packed RGBA scanlines, same layout as Snapshot) into the
// canvas. Used to seed the canvas from a startup image; len(pix) must equal
// 4*width*height.
func (p *Pixmap) Fill(pix []byte) error {
	need := 4 * len(p.pixels)
	if len(pix) != need {
		return fmt.Errorf("canvas: fill expects %d bytes, got %d", need, len(pix))
	}
	for i := range p.pixels {
		off := i * 4
		p.pixels[i].Store(pack(pix[off], pix[off+1], pix[off+2], pix[off+3]))
	}
	return nil
}
