package testutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

// TelnetClient is a line-oriented test client for the telnet frontend.
// Output is buffered so consecutive ReadUntil calls never lose data that
// arrived in the same read.
type TelnetClient struct {
	conn    net.Conn
	pending strings.Builder
	t       *testing.T
}

// NewTelnetClient dials addr.
//
// Precondition: addr must have a listening server.
// Postcondition: Returns a connected client closed at test cleanup, or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil returns output up to and including the first occurrence of
// substr, keeping anything after it for the next call. Telnet command
// bytes are kept as received.
//
// Postcondition: Returns the consumed output, or fails the test on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	tmp := make([]byte, 1024)
	for {
		buf := c.pending.String()
		if i := strings.Index(buf, substr); i >= 0 {
			end := i + len(substr)
			c.pending.Reset()
			c.pending.WriteString(buf[end:])
			return buf[:end]
		}
		n, err := c.conn.Read(tmp)
		c.pending.Write(tmp[:n])
		if err != nil && n == 0 {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, c.pending.String(), err)
		}
	}
}

// ExpectClosed fails the test unless the server closes the connection
// within timeout. Remaining output is discarded.
func (c *TelnetClient) ExpectClosed(timeout time.Duration) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, err := io.Copy(io.Discard, c.conn)
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		c.t.Fatalf("connection still open after %s", timeout)
	}
	c.pending.Reset()
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
