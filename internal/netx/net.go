// Package netx resolves listen addresses for the dict socket.
package netx

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/dmitrijs2005/doveauthd/internal/filex"
)

// Listen binds a listener for addr.
//
// Address forms:
//
//	unix:/run/doveauthd/doveauthd.socket — unix domain socket
//	127.0.0.1:10087                      — tcp
//
// For unix sockets the parent directory is created if missing, a stale
// socket file left by a previous run is removed before binding, and the
// socket mode is opened up so the dict client, which runs as the mail
// system user, can connect.
func Listen(addr string) (net.Listener, error) {
	path, ok := strings.CutPrefix(addr, "unix:")
	if !ok {
		return net.Listen("tcp", addr)
	}

	path, err := filex.EnsureParentDir(path)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", path, err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o666); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}

	return ln, nil
}
