package daemon

import (
	"fmt"
	"io"
	"net"
	"os"
)

// Client opens a session against a running Server and relays the local
// process's stdio to it, per spec.md §4.H's client description.
type Client struct {
	SocketPath string
}

// Run connects, sends SessionInit built from the current process's
// environment/args/working directory, relays stdin/stdout/stderr, and
// returns the exit code carried by the server's ExecutionResult.
//
// If the connection cannot be established, the caller should fall back
// to direct in-process execution, per spec.md §4.H; Run reports that
// case via ErrNoServer so callers can distinguish it from a session
// that failed after connecting.
func (c *Client) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	conn, err := net.Dial("unix", c.SocketPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoServer, err)
	}
	defer conn.Close()

	wd, err := os.Getwd()
	if err != nil {
		return 0, err
	}
	env := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	const initMsgID = 1
	init := SessionInit{
		MsgID:      initMsgID,
		WorkingDir: wd,
		Env:        env,
		Args:       args,
		StdinMode:  StdinPipe,
	}
	if err := WriteFrame(conn, TagSessionInit, EncodeSessionInit(init)); err != nil {
		return 0, err
	}

	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := stdin.Read(buf)
			if n > 0 {
				WriteFrame(conn, TagStdin, EncodeData(initMsgID, buf[:n]))
			}
			if err != nil {
				WriteFrame(conn, TagStdinClose, EncodeData(initMsgID, nil))
				return
			}
		}
	}()

	for {
		tag, payload, err := ReadFrame(conn)
		if err != nil {
			return 0, fmt.Errorf("daemon: client read: %w", err)
		}
		switch tag {
		case TagStdout:
			_, data, err := DecodeData(payload)
			if err == nil {
				stdout.Write(data)
			}
		case TagStderr:
			_, data, err := DecodeData(payload)
			if err == nil {
				stderr.Write(data)
			}
		case TagExecutionResult:
			res, err := DecodeExecutionResult(payload)
			if err != nil {
				return 0, err
			}
			return res.ExitCode, nil
		}
	}
}

// ErrNoServer is returned by Client.Run when the daemon's socket could
// not be reached at all.
var ErrNoServer = fmt.Errorf("daemon: no server listening")
