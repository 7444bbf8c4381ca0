package protocol

// scanDecimal reads 1-5 decimal digits from the head of buf (leading zeros
// allowed, no leading '+'/'-') and returns the parsed value, the number of
// bytes consumed, and whether the scan succeeded.
func scanDecimal(buf []byte) (value int, n int, ok bool) {
	for n < len(buf) && n < 5 {
		c := buf[n]
		if c < '0' || c > '9' {
			break
		}
		value = value*10 + int(c-'0')
		n++
	}
	return value, n, n > 0
}

// scanSpaces consumes one or more ASCII spaces from the head of buf and
// returns how many were consumed.
func scanSpaces(buf []byte) int {
	n := 0
	for n < len(buf) && buf[n] == ' ' {
		n++
	}
	return n
}

// trimTrailingSpaces drops trailing 0x20 bytes, matching the grammar's
// tolerance for trailing spaces before the line terminator.
func trimTrailingSpaces(line []byte) []byte {
	end := len(line)
	for end > 0 && line[end-1] == ' ' {
		end--
	}
	return line[:end]
}

// trimCR drops a single trailing '\r', tolerating CRLF line endings.
func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}

// scanColor parses a 2, 6, or 8 hex-digit color into (r, g, b, a), defaulting
// a to 0xFF for the grey and opaque forms. It requires the entire remaining
// slice to be consumed by exactly one of the three valid widths.
func scanColor(buf []byte) (r, g, b, a uint8, ok bool) {
	switch len(buf) {
	case 2:
		grey, ok := scanHexByte(buf)
		if !ok {
			return 0, 0, 0, 0, false
		}
		return grey, grey, grey, 0xFF, true
	case 6:
		rr, ok1 := scanHexByte(buf[0:2])
		gg, ok2 := scanHexByte(buf[2:4])
		bb, ok3 := scanHexByte(buf[4:6])
		if !ok1 || !ok2 || !ok3 {
			return 0, 0, 0, 0, false
		}
		return rr, gg, bb, 0xFF, true
	case 8:
		rr, ok1 := scanHexByte(buf[0:2])
		gg, ok2 := scanHexByte(buf[2:4])
		bb, ok3 := scanHexByte(buf[4:6])
		aa, ok4 := scanHexByte(buf[6:8])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return 0, 0, 0, 0, false
		}
		return rr, gg, bb, aa, true
	default:
		return 0, 0, 0, 0, false
	}
}

// parseTextLine interprets line (terminator and trailing spaces already
// stripped) as one Pixelflut text command.
func parseTextLine(line []byte) Command {
	switch {
	case string(line) == "HELP":
		return Command{Kind: KindHelp}
	case string(line) == "SIZE":
		return Command{Kind: KindSize}
	case len(line) >= 3 && line[0] == 'P' && line[1] == 'X' && line[2] == ' ':
		return parsePX(line[2:])
	default:
		return Command{Kind: KindError, Message: "unknown command"}
	}
}

func parsePX(rest []byte) Command {
	sp := scanSpaces(rest)
	if sp == 0 {
		return Command{Kind: KindError, Message: "malformed PX command"}
	}
	rest = rest[sp:]

	x, n, ok := scanDecimal(rest)
	if !ok || x > 0xFFFF {
		return Command{Kind: KindError, Message: "bad x coordinate"}
	}
	rest = rest[n:]
	sp = scanSpaces(rest)
	if sp == 0 {
		return Command{Kind: KindError, Message: "malformed PX command"}
	}
	rest = rest[sp:]

	y, n, ok := scanDecimal(rest)
	if !ok || y > 0xFFFF {
		return Command{Kind: KindError, Message: "bad y coordinate"}
	}
	rest = rest[n:]

	if len(rest) == 0 {
		return Command{Kind: KindPxGet, X: uint16(x), Y: uint16(y)}
	}

	sp = scanSpaces(rest)
	if sp == 0 {
		return Command{Kind: KindError, Message: "malformed PX command"}
	}
	rest = rest[sp:]
	if len(rest) == 0 {
		return Command{Kind: KindError, Message: "missing color"}
	}

	r, g, b, a, ok := scanColor(rest)
	if !ok {
		return Command{Kind: KindError, Message: "bad color"}
	}
	return Command{Kind: KindPxSet, X: uint16(x), Y: uint16(y), R: r, G: g, B: b, A: a}
}

