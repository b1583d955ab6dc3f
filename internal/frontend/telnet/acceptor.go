package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/config"
)

// MsgServerFull is sent to clients refused by the connection limit.
const MsgServerFull = "The shop is full. Please try again later."

// SessionHandler drives one connected client until it disconnects.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for telnet clients and hands each to a SessionHandler.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
	slots    chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewAcceptor creates an Acceptor.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ready:   make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	if cfg.MaxConnections > 0 {
		a.slots = make(chan struct{}, cfg.MaxConnections)
	}
	return a
}

// Start listens and accepts clients until Stop is called.
//
// Postcondition: Returns nil after Stop, or the listen error.
func (a *Acceptor) Start() error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()
	close(a.ready)
	if a.ctx.Err() != nil {
		// Stop ran before the listener was published.
		_ = ln.Close()
		return nil
	}

	a.logger.Info("telnet acceptor listening", zap.String("addr", ln.Addr().String()))

	for {
		raw, err := ln.Accept()
		if err != nil {
			if a.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Warn("accepting connection", zap.Error(err))
			continue
		}
		if !a.acquire() {
			a.refuse(raw)
			continue
		}
		a.wg.Add(1)
		go a.serve(raw)
	}
}

func (a *Acceptor) acquire() bool {
	if a.slots == nil {
		return true
	}
	select {
	case a.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (a *Acceptor) release() {
	if a.slots != nil {
		<-a.slots
	}
}

func (a *Acceptor) refuse(raw net.Conn) {
	a.logger.Warn("connection limit reached", zap.String("remote_addr", raw.RemoteAddr().String()))
	conn := NewConn(raw, 0, a.cfg.WriteTimeout)
	_ = conn.WriteLines(MsgServerFull)
	_ = conn.Close()
}

func (a *Acceptor) serve(raw net.Conn) {
	defer a.wg.Done()
	defer a.release()

	start := time.Now()
	addr := raw.RemoteAddr().String()
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	// Unblock ReadLine on shutdown.
	stop := context.AfterFunc(a.ctx, func() { _ = raw.Close() })
	defer stop()

	a.logger.Info("client connected", zap.String("remote_addr", addr))
	if err := conn.Negotiate(); err != nil {
		a.logger.Warn("telnet negotiation failed", zap.String("remote_addr", addr), zap.Error(err))
		return
	}
	err := a.handler.HandleSession(a.ctx, conn)
	a.logger.Info("client disconnected",
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
		zap.NamedError("reason", err),
	)
}

// Stop closes the listener and every client, then waits for handlers.
func (a *Acceptor) Stop() {
	a.cancel()
	a.mu.Lock()
	ln := a.listener
	a.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Ready is closed once the listener is bound.
func (a *Acceptor) Ready() <-chan struct{} { return a.ready }

// Addr returns the bound address, or "" before Start binds.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}
