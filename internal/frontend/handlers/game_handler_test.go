package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/quartermaster/internal/config"
	"github.com/cory-johannsen/quartermaster/internal/frontend/telnet"
	"github.com/cory-johannsen/quartermaster/internal/game/command"
	"github.com/cory-johannsen/quartermaster/internal/game/player"
	"github.com/cory-johannsen/quartermaster/internal/game/pricing"
	"github.com/cory-johannsen/quartermaster/internal/game/session"
	"github.com/cory-johannsen/quartermaster/internal/game/shop"
	"github.com/cory-johannsen/quartermaster/internal/storage/memory"
	"github.com/cory-johannsen/quartermaster/internal/testutil"
)

func startServer(t *testing.T) (*telnet.Acceptor, *session.Manager) {
	t.Helper()
	logger := zap.NewNop()
	repo := player.NewRepository(memory.New(), player.Defaults{Gold: 10}, logger)
	sh := shop.New(pricing.Default(), logger)
	reg := command.DefaultRegistry()
	mgr := session.NewManager(func(opts ...command.Option) *command.Processor {
		return command.NewProcessor(reg, repo, sh, logger, opts...)
	}, logger)

	cfg := config.TelnetConfig{Host: "127.0.0.1", ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	acc := telnet.NewAcceptor(cfg, NewGameHandler(mgr, logger), zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- acc.Start() }()
	select {
	case <-acc.Ready():
	case err := <-errCh:
		t.Fatalf("acceptor: %v", err)
	}
	t.Cleanup(acc.Stop)
	return acc, mgr
}

func TestGameHandler_FullSession(t *testing.T) {
	acc, mgr := startServer(t)
	client := testutil.NewTelnetClient(t, acc.Addr())
	wait := 2 * time.Second

	client.ReadUntil(command.MsgGreeting, wait)
	client.ReadUntil(telnet.Prompt, wait)

	client.Send("alice")
	out := client.ReadUntil(command.MsgAdventure, wait)
	assert.Contains(t, out, "Welcome, alice. These are your account stats:")
	assert.Contains(t, out, "Account Name | Level | Gold")
	assert.Contains(t, out, "alice        | 0     | 10")

	client.Send("shop:buy:sword:common:1")
	client.ReadUntil("You bought 1 common sword for 10 gold.", wait)

	client.Send("inventory")
	out = client.ReadUntil("sword", wait)
	assert.Contains(t, out, "Item Type | Item Quality | Amount")

	client.Send("dance")
	client.ReadUntil(`Unknown command: "dance"`, wait)

	client.Send("quit")
	client.ReadUntil("Goodbye, alice.", wait)
	client.ExpectClosed(wait)

	require.Eventually(t, func() bool { return mgr.Count() == 0 }, wait, 10*time.Millisecond)
}

func TestGameHandler_DisconnectClosesSession(t *testing.T) {
	acc, mgr := startServer(t)
	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil(command.MsgGreeting, 2*time.Second)
	require.Eventually(t, func() bool { return mgr.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	client.Close()
	require.Eventually(t, func() bool { return mgr.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestGameHandler_NameHeldByOtherConnection(t *testing.T) {
	acc, _ := startServer(t)
	wait := 2 * time.Second

	first := testutil.NewTelnetClient(t, acc.Addr())
	first.ReadUntil(telnet.Prompt, wait)
	first.Send("bob")
	first.ReadUntil(command.MsgAdventure, wait)

	second := testutil.NewTelnetClient(t, acc.Addr())
	second.ReadUntil(telnet.Prompt, wait)
	second.Send("bob")
	second.ReadUntil(command.MsgNameInUse, wait)
}
