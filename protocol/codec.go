package protocol

import "bytes"

// ErrSkip signals that n bytes (an empty line) were consumed but no Command
// was produced. The caller should advance by n and scan again without
// running CmdExec.
var ErrSkip = errSkip{}

type errSkip struct{}

func (errSkip) Error() string { return "protocol: skip (blank line)" }

// Scan is a pure function of buf and cfg: given the current unconsumed
// slice, it returns either
//
//   - a Command and the number of bytes to mark consumed (err == nil), or
//   - err == ErrSkip with n set to the (non-zero) number of bytes to mark
//     consumed for a blank line, or
//   - err == ErrNeedMore with n == 0, meaning wait for more bytes, or
//   - any other error is never returned; malformed/out-of-range frames are
//     reported as a Command of Kind KindError instead, since the caller
//     must still reply and continue rather than abort the connection.
//
// Scan never retains buf and never mutates it; identical input slices
// always produce identical output, which is what lets the caller's buffer
// compact or grow between calls without the codec noticing.
func Scan(buf []byte, cfg Config) (cmd Command, n int, err error) {
	if cfg.BinaryEnabled && isBinaryPrefix(buf) {
		if len(buf) < binaryFrameLen {
			return Command{}, 0, ErrNeedMore
		}
		return checkRange(parseBinary(buf), cfg), binaryFrameLen, nil
	}

	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		return Command{}, 0, ErrNeedMore
	}
	lineLen := idx + 1

	maxLen := cfg.MaxLineLen
	if maxLen <= 0 {
		maxLen = DefaultConfig().MaxLineLen
	}
	if lineLen > maxLen {
		return Command{Kind: KindError, Message: "line too long"}, lineLen, nil
	}

	line := trimTrailingSpaces(trimCR(buf[:idx]))
	if len(line) == 0 {
		return Command{}, lineLen, ErrSkip
	}
	return checkRange(parseTextLine(line), cfg), lineLen, nil
}

// checkRange rejects PxGet/PxSet commands whose coordinates fall outside
// the configured canvas, turning them into a KindError Command. Commands of
// other kinds, and already-errored ones, pass through unchanged.
func checkRange(cmd Command, cfg Config) Command {
	if cmd.Kind != KindPxGet && cmd.Kind != KindPxSet {
		return cmd
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return cmd
	}
	if cmd.X >= cfg.Width || cmd.Y >= cfg.Height {
		return Command{Kind: KindError, Message: "coordinate out of range"}
	}
	return cmd
}
