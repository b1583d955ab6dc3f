// Package telnet serves the game over a line-oriented telnet connection.
package telnet

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command bytes (RFC 854).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// Prompt is written before each input line.
const Prompt = "> "

// MaxLineLength bounds a single input line in bytes.
const MaxLineLength = 1024

// ErrLineTooLong is returned by ReadLine when a line exceeds MaxLineLength.
var ErrLineTooLong = errors.New("telnet: input line too long")

// decoder strips telnet command sequences from a byte stream.
type decoder struct {
	state int
}

const (
	stData = iota
	stCommand
	stOption
	stSub
	stSubIAC
)

// feed consumes one byte and reports whether it is data.
func (d *decoder) feed(b byte) (byte, bool) {
	switch d.state {
	case stCommand:
		switch b {
		case WILL, WONT, DO, DONT:
			d.state = stOption
		case SB:
			d.state = stSub
		case IAC:
			d.state = stData
			return IAC, true
		default:
			d.state = stData
		}
		return 0, false
	case stOption:
		d.state = stData
		return 0, false
	case stSub:
		if b == IAC {
			d.state = stSubIAC
		}
		return 0, false
	case stSubIAC:
		if b == SE {
			d.state = stData
		} else {
			d.state = stSub
		}
		return 0, false
	}
	if b == IAC {
		d.state = stCommand
		return 0, false
	}
	return b, true
}

// FilterIAC removes telnet command sequences from input. An escaped
// IAC IAC pair yields one 0xFF byte.
func FilterIAC(input []byte) []byte {
	var d decoder
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if c, ok := d.feed(b); ok {
			out = append(out, c)
		}
	}
	return out
}

// Conn is a telnet client connection with line-based reads.
// Reads must come from one goroutine; writes are serialized.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	dec    decoder

	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw with telnet handling.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers suppress-go-ahead so clients send full lines.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next input line without its terminator. Telnet
// commands and control characters other than tab are dropped.
//
// Postcondition: Returns ErrLineTooLong after discarding an oversized line.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	var sb strings.Builder
	overflow := false
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return sb.String(), err
		}
		ch, ok := c.dec.feed(b)
		if !ok {
			continue
		}
		if ch == '\n' {
			break
		}
		if ch == '\r' {
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			break
		}
		if ch < 0x20 && ch != '\t' {
			continue
		}
		if sb.Len() >= MaxLineLength {
			overflow = true
			continue
		}
		sb.WriteByte(ch)
	}
	if overflow {
		return "", ErrLineTooLong
	}
	return sb.String(), nil
}

// WriteLines sends each line followed by CRLF in a single write.
func (c *Conn) WriteLines(lines ...string) error {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\r\n")
	}
	return c.write([]byte(sb.String()))
}

// WritePrompt sends Prompt without a line terminator.
func (c *Conn) WritePrompt() error {
	return c.write([]byte(Prompt))
}

func (c *Conn) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(b)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.raw.Close() }

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }
