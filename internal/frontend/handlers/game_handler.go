package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/frontend/telnet"
	"github.com/cory-johannsen/quartermaster/internal/game/session"
)

// MsgLineTooLong replies to an input line over telnet.MaxLineLength.
const MsgLineTooLong = "That line is too long."

// GameHandler runs a telnet client through a game session: greeting, name
// entry, then the command loop until quit or disconnect.
type GameHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewGameHandler creates a GameHandler.
//
// Precondition: sessions and logger must be non-nil.
func NewGameHandler(sessions *session.Manager, logger *zap.Logger) *GameHandler {
	return &GameHandler{sessions: sessions, logger: logger}
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: the game session is closed when this returns. A client
// quit or disconnect returns nil.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	sess := h.sessions.Open()
	defer func() { _ = h.sessions.Close(sess.ID) }()

	log := h.logger.With(zap.String("session", sess.ID), zap.String("remote_addr", conn.RemoteAddr().String()))
	if err := h.send(conn, RenderResponse(sess.Greeting())); err != nil {
		return err
	}

	for {
		line, err := conn.ReadLine()
		switch {
		case errors.Is(err, telnet.ErrLineTooLong):
			if err := h.send(conn, []string{MsgLineTooLong}); err != nil {
				return err
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading from client: %w", err)
		}

		resp, err := sess.Handle(ctx, line)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			log.Debug("command rejected", zap.String("line", line), zap.Error(resp.Err))
		}
		if resp.Quit {
			return conn.WriteLines(RenderResponse(resp)...)
		}
		if err := h.send(conn, RenderResponse(resp)); err != nil {
			return err
		}
	}
}

func (h *GameHandler) send(conn *telnet.Conn, lines []string) error {
	if len(lines) > 0 {
		if err := conn.WriteLines(lines...); err != nil {
			return err
		}
	}
	return conn.WritePrompt()
}
