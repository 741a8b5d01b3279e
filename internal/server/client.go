// internal/server/client.go
package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"ember/internal/diag"
	"ember/internal/driver"
	"ember/internal/value"
)

// Frame types sent to clients.
const (
	FrameHello      = "hello"
	FrameOutput     = "output"
	FrameDiagnostic = "diagnostic"
	FrameVars       = "vars"
	FrameDone       = "done"
	FrameError      = "error"
)

// Request is a client frame. Exactly one of Source or Command is set.
type Request struct {
	Source  string `json:"source,omitempty"`
	Command string `json:"command,omitempty"`
}

// Frame is a server frame, discriminated by Type.
type Frame struct {
	Type       string            `json:"type"`
	ID         string            `json:"id,omitempty"`
	Text       string            `json:"text,omitempty"`
	Diagnostic *diag.Diagnostic  `json:"diagnostic,omitempty"`
	Vars       map[string]string `json:"vars,omitempty"`
	OK         *bool             `json:"ok,omitempty"`
}

type client struct {
	id      string
	conn    *websocket.Conn
	session *driver.Session
	out     *lineWriter
}

func newClient(id string, conn *websocket.Conn, strict bool) *client {
	c := &client{id: id, conn: conn}
	c.out = &lineWriter{send: func(line string) error {
		return c.send(Frame{Type: FrameOutput, Text: line})
	}}
	c.session = driver.NewSession(driver.Options{
		File:            "<ws>",
		Out:             c.out,
		Sink:            &frameSink{client: c},
		StrictVariables: strict,
	})
	return c
}

func (c *client) send(f Frame) error {
	return c.conn.WriteJSON(f)
}

func (c *client) serve() {
	if err := c.send(Frame{Type: FrameHello, ID: c.id}); err != nil {
		return
	}
	for {
		var req Request
		if err := c.conn.ReadJSON(&req); err != nil {
			if _, ok := err.(*websocket.CloseError); !ok {
				glog.V(1).Infof("connection %s: read: %v", c.id, err)
			}
			if !isJSONError(err) {
				return
			}
			if c.send(Frame{Type: FrameError, Text: "malformed request: " + err.Error()}) != nil {
				return
			}
			continue
		}
		if err := c.handle(req); err != nil {
			glog.V(1).Infof("connection %s: write: %v", c.id, err)
			return
		}
	}
}

func (c *client) handle(req Request) error {
	switch {
	case req.Source != "" && req.Command != "":
		return c.send(Frame{Type: FrameError, Text: "request has both source and command"})

	case req.Command == "vars":
		store := c.session.Store()
		vars := make(map[string]string, store.Len())
		for _, name := range store.Names() {
			v, _ := store.Get(name)
			vars[name] = value.Inspect(v)
		}
		return c.send(Frame{Type: FrameVars, Vars: vars})

	case req.Command == "reset":
		c.session.Store().Reset()
		return c.done(true)

	case req.Command != "":
		return c.send(Frame{Type: FrameError, Text: fmt.Sprintf("unknown command %q", req.Command)})
	}

	glog.V(1).Infof("connection %s: exec %d bytes", c.id, len(req.Source))
	err := c.session.Exec(req.Source)
	if flushErr := c.out.Flush(); flushErr != nil {
		return flushErr
	}
	return c.done(err == nil)
}

func (c *client) done(ok bool) error {
	return c.send(Frame{Type: FrameDone, OK: &ok})
}

// frameSink forwards each diagnostic to the client as it is reported.
type frameSink struct {
	diag.Collector
	client *client
}

func (s *frameSink) Report(d diag.Diagnostic) {
	s.Collector.Report(d)
	if err := s.client.send(Frame{Type: FrameDiagnostic, Diagnostic: &d}); err != nil {
		glog.V(1).Infof("connection %s: diagnostic: %v", s.client.id, err)
	}
}

// lineWriter turns print output into one frame per line.
type lineWriter struct {
	buf  bytes.Buffer
	send func(line string) error
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			return len(p), nil
		}
		line := string(w.buf.Next(i + 1))
		if err := w.send(line[:i]); err != nil {
			return 0, err
		}
	}
}

// Flush sends any unterminated trailing output.
func (w *lineWriter) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	line := w.buf.String()
	w.buf.Reset()
	return w.send(line)
}

func isJSONError(err error) bool {
	switch err.(type) {
	case *json.SyntaxError, *json.UnmarshalTypeError:
		return true
	}
	return false
}
