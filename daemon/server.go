package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionHandler runs one client session to completion and returns the
// process-equivalent exit code. It is supplied by the caller so that
// package daemon stays independent of package interp; cmd/rushd wires
// the two together.
type SessionHandler func(ctx context.Context, init SessionInit, conn net.Conn) (exitCode int, err error)

// Config configures a Server.
type Config struct {
	SocketPath string
	PIDPath    string
	PoolSize   int // default 4
	QueueBound int // default 100
	Logger     *zap.SugaredLogger
	Handle     SessionHandler
}

// Server is the dispatcher plus its worker pool, as spec.md §4.H
// describes: a single-threaded accept loop hands connections to a
// bounded pool of independent workers, each with its own runtime state.
//
// Go has no cheap equivalent of the original preforked OS-process pool,
// so each "worker" here is a goroutine; isolation between sessions comes
// from SessionHandler constructing a fresh interpreter per call rather
// than from OS process boundaries. See DESIGN.md for the tradeoff.
type Server struct {
	cfg Config

	ln     net.Listener
	work   chan net.Conn
	log    *zap.SugaredLogger
	closed chan struct{}
	once   sync.Once
}

// NewServer builds a Server bound to cfg.SocketPath. It does not start
// listening until Run is called.
func NewServer(cfg Config) *Server {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 4
	}
	if cfg.QueueBound <= 0 {
		cfg.QueueBound = 100
	}
	log := cfg.Logger
	if log == nil {
		plain, _ := zap.NewProduction()
		log = plain.Sugar()
	}
	return &Server{
		cfg:    cfg,
		work:   make(chan net.Conn, cfg.QueueBound),
		log:    log,
		closed: make(chan struct{}),
	}
}

// Run listens on cfg.SocketPath, removing a stale socket file first,
// and serves connections with cfg.PoolSize workers until ctx is
// cancelled, at which point it stops accepting, drains in-flight
// sessions, and removes the socket and PID files.
func (s *Server) Run(ctx context.Context) error {
	if err := removeStaleSocket(s.cfg.SocketPath); err != nil {
		return err
	}
	ln, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("daemon: listen %s: %w", s.cfg.SocketPath, err)
	}
	s.ln = ln

	if err := writePIDFile(s.cfg.PIDPath); err != nil {
		ln.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.PoolSize; i++ {
		workerID := i
		g.Go(func() error { return s.worker(ctx, workerID) })
	}
	g.Go(func() error { return s.acceptLoop(ctx) })

	<-ctx.Done()
	s.shutdown()

	err = g.Wait()
	os.Remove(s.cfg.SocketPath)
	os.Remove(s.cfg.PIDPath)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdown() {
	s.once.Do(func() {
		close(s.closed)
		if s.ln != nil {
			s.ln.Close()
		}
	})
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
				return fmt.Errorf("daemon: accept: %w", err)
			}
		}
		select {
		case s.work <- conn:
		case <-ctx.Done():
			conn.Close()
			return nil
		default:
			// Queue full: reject deterministically rather than block
			// the single-threaded dispatcher or silently drop.
			s.log.Warnw("rejecting session, queue full", "bound", s.cfg.QueueBound)
			WriteFrame(conn, TagExecutionResult, EncodeExecutionResult(0, 2))
			conn.Close()
		}
	}
}

func (s *Server) worker(ctx context.Context, id int) error {
	for {
		select {
		case conn, ok := <-s.work:
			if !ok {
				return nil
			}
			// A session already handed to this worker runs to completion
			// even if shutdown starts meanwhile.
			s.serveConn(context.WithoutCancel(ctx), id, conn)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) serveConn(ctx context.Context, workerID int, conn net.Conn) {
	defer conn.Close()

	tag, payload, err := ReadFrame(conn)
	if err != nil || tag != TagSessionInit {
		s.log.Errorw("expected session init", "worker", workerID, "err", err)
		return
	}
	init, err := DecodeSessionInit(payload)
	if err != nil {
		s.log.Errorw("malformed session init", "worker", workerID, "err", err)
		return
	}

	exitCode, err := s.cfg.Handle(ctx, init, conn)
	if err != nil {
		s.log.Errorw("session failed", "worker", workerID, "err", err)
		exitCode = 1
	}
	WriteFrame(conn, TagExecutionResult, EncodeExecutionResult(init.MsgID, exitCode))
}

func removeStaleSocket(path string) error {
	conn, err := net.Dial("unix", path)
	if err == nil {
		conn.Close()
		return fmt.Errorf("daemon: socket %s already has a live listener", path)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	os.Remove(path)
	return nil
}
