// Package websocket exposes the node console over a websocket, so a
// remote terminal can attach where a serial cable would normally go.
package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/sensortalks/zeronode.go/pkg/run"
)

// ReadWriter adapts a websocket connection for the serial console.
type ReadWriter struct {
	conn    *websocket.Conn
	pending []byte
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return &ReadWriter{conn: conn}
}

// Read implements io.Reader over binary websocket frames.
func (rw *ReadWriter) Read(p []byte) (int, error) {
	for len(rw.pending) == 0 {
		var msg []byte
		if err := websocket.Message.Receive(rw.conn, &msg); err != nil {
			return 0, err
		}
		rw.pending = msg
	}
	n := copy(p, rw.pending)
	rw.pending = rw.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (rw *ReadWriter) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(rw.conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Server serves the console to one websocket client at a time; extra
// clients are turned away until the attached one detaches.
type Server struct {
	Addr string
	// Attach is called with the client stream and blocks while the
	// client stays attached.
	Attach func(rw *ReadWriter)

	busy chan struct{}
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.busy = make(chan struct{}, 1)
	mux := http.NewServeMux()
	mux.Handle("/term", websocket.Handler(func(conn *websocket.Conn) {
		select {
		case s.busy <- struct{}{}:
			defer func() { <-s.busy }()
		default:
			glog.Warningf("terminal busy, rejecting %s", conn.Request().RemoteAddr)
			return
		}
		glog.Infof("terminal attached from %s", conn.Request().RemoteAddr)
		s.Attach(New(conn))
		glog.Infof("terminal detached")
	}))
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("terminal listening on ws://%s/term", s.Addr)
	return run.WithCloser(ctx, srv, srv.ListenAndServe)
}
