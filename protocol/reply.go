package protocol

import "strconv"

// AppendSize appends a "SIZE <w> <h>\n" reply to dst.
func AppendSize(dst []byte, width, height int) []byte {
	dst = append(dst, "SIZE "...)
	dst = strconv.AppendInt(dst, int64(width), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(height), 10)
	dst = append(dst, '\n')
	return dst
}

// AppendPixelQuery appends a "PX <x> <y> <rrggbb>\n" reply to dst.
func AppendPixelQuery(dst []byte, x, y uint16, r, g, b uint8) []byte {
	dst = append(dst, "PX "...)
	dst = strconv.AppendUint(dst, uint64(x), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendUint(dst, uint64(y), 10)
	dst = append(dst, ' ')
	dst = appendHex2(dst, r)
	dst = appendHex2(dst, g)
	dst = appendHex2(dst, b)
	dst = append(dst, '\n')
	return dst
}

// AppendError appends an "ERR <reason>\n" reply to dst.
func AppendError(dst []byte, reason string) []byte {
	dst = append(dst, "ERR "...)
	dst = append(dst, reason...)
	dst = append(dst, '\n')
	return dst
}
