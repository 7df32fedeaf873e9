// Package daemon implements the optional warm-interpreter server
// described in spec.md §4.H: a pool of worker goroutines listening on a
// Unix-domain socket, and the client that talks to it. The workers share
// one daemon process; they are not separate preforked processes.
package daemon

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Tag identifies the kind of message carried by a Frame.
type Tag byte

const (
	TagSessionInit Tag = iota + 1
	TagStdin
	TagStdinClose
	TagStdout
	TagStderr
	TagExecutionResult
	TagShutdown
)

// SessionInit opens a session: the client's working directory,
// environment, arguments, and how it wants to feed stdin.
type SessionInit struct {
	MsgID      uint64
	WorkingDir string
	Env        map[string]string
	Args       []string
	StdinMode  StdinMode
}

// StdinMode selects how a session's stdin is sourced.
type StdinMode byte

const (
	StdinNull StdinMode = iota
	StdinPipe
	StdinInherit
)

// DataFrame carries a Stdin/Stdout/Stderr chunk.
type DataFrame struct {
	MsgID uint64
	Tag   Tag
	Data  []byte
}

// ExecutionResult ends a session with the process-equivalent exit code.
type ExecutionResult struct {
	MsgID    uint64
	ExitCode int
}

// WriteFrame writes a length-prefixed frame: 4-byte big-endian length,
// then a tag byte, then payload.
func WriteFrame(w io.Writer, tag Tag, payload []byte) error {
	var hdr [5]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(payload)+1))
	hdr[4] = byte(tag)
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("daemon: write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("daemon: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and returns its tag and
// payload (not including the tag byte).
func ReadFrame(r io.Reader) (Tag, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return 0, nil, fmt.Errorf("daemon: empty frame")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("daemon: read frame payload: %w", err)
	}
	return Tag(buf[0]), buf[1:], nil
}

// encodeKV encodes a tag-value record: a sequence of length-prefixed
// byte strings. This is the "stable tag-value scheme" spec.md §4.H asks
// for, kept intentionally simple rather than reaching for a generic
// serialization library the teacher's stack doesn't carry.
func encodeKV(fields ...[]byte) []byte {
	var out []byte
	for _, f := range fields {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(f)))
		out = append(out, lenBuf[:]...)
		out = append(out, f...)
	}
	return out
}

func decodeKV(buf []byte, n int) ([][]byte, error) {
	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if len(buf) < 4 {
			return nil, fmt.Errorf("daemon: truncated field %d", i)
		}
		l := binary.BigEndian.Uint32(buf[:4])
		buf = buf[4:]
		if uint32(len(buf)) < l {
			return nil, fmt.Errorf("daemon: truncated field %d body", i)
		}
		out = append(out, buf[:l])
		buf = buf[l:]
	}
	return out, nil
}
