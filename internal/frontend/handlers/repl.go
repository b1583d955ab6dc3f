package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/quartermaster/internal/frontend/telnet"
	"github.com/cory-johannsen/quartermaster/internal/game/command"
)

// RunREPL drives proc from in, writing rendered responses and prompts to
// out, until quit or end of input. Lines longer than telnet.MaxLineLength
// are dropped with MsgLineTooLong and the session continues.
//
// Postcondition: returns nil on quit or EOF.
func RunREPL(ctx context.Context, proc *command.Processor, in io.Reader, out io.Writer) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	write := func(lines []string, prompt bool) error {
		for _, l := range lines {
			if _, err := fmt.Fprintln(w, l); err != nil {
				return err
			}
		}
		if prompt {
			if _, err := w.WriteString(telnet.Prompt); err != nil {
				return err
			}
		}
		return w.Flush()
	}

	if err := write(RenderResponse(proc.Greeting()), true); err != nil {
		return err
	}

	r := bufio.NewReader(in)
	for {
		line, err := readLine(r)
		switch {
		case errors.Is(err, telnet.ErrLineTooLong):
			if err := write([]string{MsgLineTooLong}, true); err != nil {
				return err
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		resp := proc.Handle(ctx, line)
		if resp.Quit {
			return write(RenderResponse(resp), false)
		}
		if err := write(RenderResponse(resp), true); err != nil {
			return err
		}
	}
}

// readLine returns the next newline-terminated line without its line
// ending. An over-long line is consumed through its newline and reported
// as telnet.ErrLineTooLong. A final unterminated line is returned before
// io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	overflow := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && (sb.Len() > 0 || overflow) {
				break
			}
			return "", err
		}
		if b == '\n' {
			break
		}
		if sb.Len() >= telnet.MaxLineLength+1 {
			overflow = true
			continue
		}
		sb.WriteByte(b)
	}
	line := strings.TrimSuffix(sb.String(), "\r")
	if overflow || len(line) > telnet.MaxLineLength {
		return "", telnet.ErrLineTooLong
	}
	return line, nil
}
