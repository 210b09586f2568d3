// Package server owns the listening socket and runs the sequential
// accept/read/dispatch/write/close cycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dylanjw/mdb/internal/protocol"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Dispatcher turns an inbound buffer into response bytes.
type Dispatcher interface {
	Dispatch(raw []byte) (*protocol.Request, []byte, error)
}

// Recorder receives per-request observations. It may be nil.
type Recorder interface {
	ObserveRequest(method string, status int, d time.Duration)
	IncMalformed()
	IncFatal()
}

// Options configure a Server.
type Options struct {
	// Addr is the host:port to listen on.
	Addr string
	// ReadBufferSize caps the single read taken from each connection.
	ReadBufferSize int
	// ReadTimeout bounds the read when non-zero.
	ReadTimeout time.Duration
	// ProbeAttempts is how many readiness dials Listen makes before giving up.
	ProbeAttempts int
}

// Server is a single-threaded request/response server over TCP.
// One connection is handled at a time and is closed after one response.
type Server struct {
	opts       Options
	dispatcher Dispatcher
	recorder   Recorder
	logger     hclog.Logger

	mu sync.Mutex
	ln net.Listener
}

// New creates a Server. recorder and logger may be nil.
func New(opts Options, dispatcher Dispatcher, recorder Recorder, logger hclog.Logger) *Server {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = protocol.MaxRequestSize
	}
	if opts.ProbeAttempts <= 0 {
		opts.ProbeAttempts = 5
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		opts:       opts,
		dispatcher: dispatcher,
		recorder:   recorder,
		logger:     logger,
	}
}

// Listen binds the address and checks that it accepts dials.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}

	addr := ln.Addr().String()
	for attempt := 1; ; attempt++ {
		if CheckServer(addr, time.Second) {
			break
		}
		if attempt >= s.opts.ProbeAttempts {
			ln.Close()
			return fmt.Errorf("server failed to set up properly after %d checks", attempt)
		}
		time.Sleep(100 * time.Millisecond)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.logger.Info("listening", "addr", addr)
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve accepts connections until ctx is cancelled or a handler reports a fatal
// error. Cancellation returns nil; the in-flight cycle finishes first.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("serve called before listen")
	}
	defer ln.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("server stopped")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		if err := s.serveConn(conn); err != nil {
			if s.recorder != nil {
				s.recorder.IncFatal()
			}
			s.logger.Error("fatal error while handling request", "error", err)
			return err
		}
	}
}

// serveConn runs one full cycle. Only fatal errors are returned.
func (s *Server) serveConn(conn net.Conn) error {
	defer conn.Close()

	logger := s.logger.With("conn_id", uuid.NewString(), "remote", conn.RemoteAddr().String())
	logger.Debug("connected")

	if s.opts.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	}

	// Bytes past the buffer stay unread; closing with them pending makes the
	// kernel reset the connection, so an oversized request gets no reply.
	buf := make([]byte, s.opts.ReadBufferSize)
	n, err := conn.Read(buf)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("read failed", "error", err)
		} else {
			logger.Debug("client closed without sending data")
		}
		return nil
	}

	start := time.Now()
	req, out, err := s.dispatcher.Dispatch(buf[:n])
	if errors.Is(err, protocol.ErrMalformedRequest) {
		logger.Warn("dropping malformed request", "bytes", n)
		if s.recorder != nil {
			s.recorder.IncMalformed()
		}
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := conn.Write(out); err != nil {
		logger.Warn("write failed", "error", err)
		return nil
	}

	// Handlers return rendered responses; anything else is written as-is but
	// carries no status to record.
	resp, err := protocol.ParseResponse(out)
	if err != nil {
		logger.Warn("handler output is not a response", "method", req.Method, "uri", req.URI, "error", err)
		return nil
	}
	logger.Debug("request handled", "method", req.Method, "uri", req.URI, "status", resp.Status)
	if s.recorder != nil {
		s.recorder.ObserveRequest(req.Method, resp.Status, time.Since(start))
	}
	return nil
}

// CheckServer reports whether addr accepts a TCP connection.
func CheckServer(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
