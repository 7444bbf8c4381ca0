package protocol

import "encoding/binary"

// binaryFrameLen is the fixed length of a PB frame: 2-byte prefix, x (u16
// LE), y (u16 LE), r, g, b, a (u8 each).
const binaryFrameLen = 10

// binaryPrefix is the two-byte marker that disambiguates a PB frame from a
// text line when binary commands are enabled.
var binaryPrefix = [2]byte{'P', 'B'}

func isBinaryPrefix(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == binaryPrefix[0] && buf[1] == binaryPrefix[1]
}

// parseBinary decodes a complete 10-byte PB frame. The caller guarantees
// len(buf) >= binaryFrameLen.
func parseBinary(buf []byte) Command {
	x := binary.LittleEndian.Uint16(buf[2:4])
	y := binary.LittleEndian.Uint16(buf[4:6])
	r, g, b, a := buf[6], buf[7], buf[8], buf[9]
	return Command{Kind: KindPxSet, X: x, Y: y, R: r, G: g, B: b, A: a}
}
