// Package statsview wraps github.com/go-echarts/statsview, which charts heap,
// goroutine and GC figures in a browser while a benchmark runs. The real
// server is only linked into binaries built with the statsview tag; other
// builds get a Launch that returns ErrUnavailable.
package statsview

import (
	"errors"
	"fmt"
	"net"
)

// ErrUnavailable is returned by Launch in builds without the statsview tag.
var ErrUnavailable = errors.New("statsview: not compiled in, rebuild with -tags statsview")

// DefaultAddr is the listen address the bench command uses unless told
// otherwise.
const DefaultAddr = "localhost:12680"

// Server is a stats server started by Launch.
type Server struct {
	// URL is the page with the charts.
	URL  string
	stop func()
}

// Stop shuts the server down. It is safe on a nil Server.
func (s *Server) Stop() {
	if s != nil && s.stop != nil {
		s.stop()
	}
}

// pageURL turns a listen address into the chart page URL.
func pageURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("statsview: address %q: %w", addr, err)
	}
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/debug/statsview", nil
}
