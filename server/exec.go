package server

import (
	"github.com/timvisee/pixelpwnr-server/canvas"
	"github.com/timvisee/pixelpwnr-server/netbuf"
	"github.com/timvisee/pixelpwnr-server/protocol"
	"github.com/timvisee/pixelpwnr-server/stats"
)

// exec interprets one parsed Command against the canvas and stats, writing
// any reply into out. It never blocks and never allocates beyond the small
// reply it builds, and it never tears down the connection — a command-level
// failure always becomes an ERR reply, not a returned error.
func exec(cmd protocol.Command, pm *canvas.Pixmap, st *stats.Stats, out *netbuf.Buffer) {
	switch cmd.Kind {
	case protocol.KindSize:
		w, h := pm.Dimensions()
		writeReply(out, func(dst []byte) []byte { return protocol.AppendSize(dst, w, h) })

	case protocol.KindHelp:
		writeReply(out, func(dst []byte) []byte { return append(dst, protocol.HelpText...) })

	case protocol.KindPxGet:
		r, g, b, _ := pm.Get(int(cmd.X), int(cmd.Y))
		writeReply(out, func(dst []byte) []byte { return protocol.AppendPixelQuery(dst, cmd.X, cmd.Y, r, g, b) })

	case protocol.KindPxSet:
		pm.Set(int(cmd.X), int(cmd.Y), cmd.R, cmd.G, cmd.B, cmd.A)
		st.IncPixels(1)

	case protocol.KindError:
		writeReply(out, func(dst []byte) []byte { return protocol.AppendError(dst, cmd.Message) })
	}
}

// writeReply renders a reply with build and appends it to out. If out has no
// room left, the reply is dropped silently rather than blocking the
// pipeline on a slow client.
func writeReply(out *netbuf.Buffer, build func(dst []byte) []byte) {
	rendered := build(nil)
	if len(rendered) == 0 {
		return
	}
	dst, err := out.Reserve(len(rendered))
	if err != nil {
		return
	}
	copy(dst, rendered)
	out.Produced(len(rendered))
}
