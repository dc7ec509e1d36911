package dict

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/doveauthd/internal/logging"
	"github.com/dmitrijs2005/doveauthd/internal/netx"
)

// Server accepts dict client connections and feeds their request lines
// through a Handler, one goroutine per connection.
type Server struct {
	address string
	handler *Handler
	logger  logging.Logger
}

func NewServer(address string, h *Handler, l logging.Logger) *Server {
	return &Server{
		address: address,
		handler: h,
		logger:  l.With("module", "dict_server"),
	}
}

// Run binds the listener and serves until ctx is cancelled. It returns
// after every in-flight connection handler has finished.
func (s *Server) Run(ctx context.Context) error {

	listener, err := netx.Listen(s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping dict server...")
		_ = listener.Close()
	}()

	s.logger.Info(ctx, "Starting dict server", "address", s.address)

	var wg sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

// serveConn reads request lines until the client disconnects or ctx is
// cancelled. A client that went away before its reply was written is not
// an error worth more than a log line.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	// unblock the scanner when the server shuts down
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logger := s.logger.With("conn", uuid.NewString())
	logger.Info(ctx, "dict client connected")

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		reply := s.handler.Handle(ctx, scanner.Text())
		if reply == "" {
			continue
		}
		if _, err := io.WriteString(conn, reply); err != nil {
			logger.Warn(ctx, "writing reply", "error", err)
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Warn(ctx, "reading request", "error", err)
		return
	}
	logger.Info(ctx, "dict client disconnected")
}
