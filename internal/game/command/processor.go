package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
	"github.com/cory-johannsen/quartermaster/internal/game/player"
	"github.com/cory-johannsen/quartermaster/internal/game/pricing"
	"github.com/cory-johannsen/quartermaster/internal/game/shop"
	"github.com/cory-johannsen/quartermaster/internal/observability"
)

// Player-facing messages.
const (
	MsgGreeting     = "Hello player! Please enter your account name."
	MsgInvalidName  = "Please enter a valid name."
	MsgNameInUse    = "That name is already in use by another session."
	MsgAdventure    = "Where will your adventure begin?"
	MsgEmpty        = "Your inventory is empty."
	MsgStoreFailure = "Something went wrong saving your progress."
	MsgTooLarge     = "That order is too large."
)

// ErrUnknownCommand is matched when a verb resolves to no command.
var ErrUnknownCommand = errors.New("unknown command")

// ErrUsage is matched when a command's arguments are missing or malformed.
var ErrUsage = errors.New("invalid command usage")

// UnknownCommandError names the verb that was not recognized.
type UnknownCommandError struct {
	Verb string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command: %q. Type help for a list of commands.", e.Verb)
}

// Is makes UnknownCommandError match ErrUnknownCommand.
func (e *UnknownCommandError) Is(target error) bool { return target == ErrUnknownCommand }

// UsageError carries the expected argument form.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string { return "Usage: " + e.Usage }

// Is makes UsageError match ErrUsage.
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// State is the Processor's position in the session flow.
type State int

const (
	// StateAwaitingName accepts the account name.
	StateAwaitingName State = iota
	// StateInSession accepts commands.
	StateInSession
)

func (s State) String() string {
	if s == StateInSession {
		return "in_session"
	}
	return "awaiting_name"
}

// ClaimFunc reserves a player name for the calling session. It returns a
// release function, or an error when the name is held elsewhere.
type ClaimFunc func(name string) (release func(), err error)

// Option configures a Processor.
type Option func(*Processor)

// WithClaim sets the name reservation hook used on login.
func WithClaim(fn ClaimFunc) Option {
	return func(p *Processor) { p.claim = fn }
}

// Processor turns input lines into Responses for one session. It holds the
// session's state explicitly and is not safe for concurrent use.
type Processor struct {
	registry *Registry
	players  *player.Repository
	shop     *shop.Shop
	logger   *zap.Logger
	claim    ClaimFunc

	state   State
	player  *player.Player
	release func()
	changed *player.Profile
}

// NewProcessor creates a Processor in StateAwaitingName.
//
// Precondition: registry, players, sh, and logger must be non-nil.
func NewProcessor(registry *Registry, players *player.Repository, sh *shop.Shop, logger *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		registry: registry,
		players:  players,
		shop:     sh,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current state.
func (p *Processor) State() State { return p.state }

// Player returns the logged-in player, nil before login.
func (p *Processor) Player() *player.Player { return p.player }

// Greeting returns the prompt shown when a session opens.
func (p *Processor) Greeting() *Response {
	r := &Response{}
	r.Say(MsgGreeting)
	return r
}

// Close releases any name claim. It is safe to call more than once.
func (p *Processor) Close() {
	if p.release != nil {
		p.release()
		p.release = nil
	}
}

// Handle processes one input line.
//
// Postcondition: Returns a non-nil Response. A rejected line leaves player
// state unchanged and sets Response.Err.
func (p *Processor) Handle(ctx context.Context, line string) *Response {
	if p.state == StateAwaitingName {
		return p.login(ctx, line)
	}

	parsed := Parse(line)
	if parsed.Verb == "" {
		return &Response{}
	}
	resp := &Response{}
	cmd, ok := p.registry.Resolve(parsed.Verb)
	if !ok {
		p.fail(resp, "unknown", &UnknownCommandError{Verb: parsed.Verb})
		return resp
	}

	var err error
	switch cmd.Handler {
	case HandlerShop:
		err = p.handleShop(ctx, resp, cmd, parsed.Args)
	case HandlerInventory:
		p.handleInventory(resp)
	case HandlerProfile:
		pr := p.player.Profile()
		resp.Show(pr.Table())
		resp.Profile = &pr
	case HandlerPrices:
		resp.Show(p.shop.Prices().Table())
	case HandlerHelp:
		resp.Show(p.registry.Table())
	case HandlerQuit:
		resp.Say("Goodbye, %s.", p.player.Name())
		resp.Quit = true
	default:
		err = fmt.Errorf("command %q has no handler %q", cmd.Name, cmd.Handler)
	}
	if err != nil {
		p.fail(resp, cmd.Name, err)
		return resp
	}
	observability.CommandsTotal.WithLabelValues(cmd.Name, observability.OutcomeOK).Inc()
	if p.changed != nil && resp.Profile == nil {
		resp.Profile = p.changed
	}
	p.changed = nil
	return resp
}

func (p *Processor) login(ctx context.Context, line string) *Response {
	resp := &Response{}
	name, err := player.ValidateName(line)
	if err != nil {
		resp.Say(MsgInvalidName)
		resp.Err = err
		observability.CommandsTotal.WithLabelValues("login", observability.OutcomeRejected).Inc()
		return resp
	}

	var release func()
	if p.claim != nil {
		release, err = p.claim(name)
		if err != nil {
			resp.Say(MsgNameInUse)
			resp.Err = err
			observability.CommandsTotal.WithLabelValues("login", observability.OutcomeRejected).Inc()
			return resp
		}
	}

	pl, created, err := p.players.LoadOrCreate(ctx, name)
	if err != nil {
		if release != nil {
			release()
		}
		p.logger.Error("loading player", zap.String("player", name), zap.Error(err))
		resp.Say(MsgStoreFailure)
		resp.Err = err
		observability.CommandsTotal.WithLabelValues("login", observability.OutcomeError).Inc()
		return resp
	}

	p.player = pl
	p.release = release
	p.state = StateInSession
	pl.OnChange(func(pr player.Profile) { p.changed = &pr })

	if created {
		resp.Say("Welcome, %s. These are your account stats:", name)
	} else {
		resp.Say("Welcome back, %s. These are your account stats:", name)
	}
	pr := pl.Profile()
	resp.Show(pr.Table())
	resp.Say(MsgAdventure)
	resp.Profile = &pr
	observability.CommandsTotal.WithLabelValues("login", observability.OutcomeOK).Inc()
	p.logger.Info("player logged in", zap.String("player", name), zap.Bool("created", created))
	return resp
}

func (p *Processor) handleInventory(resp *Response) {
	contents := p.player.Inventory().Snapshot()
	if contents.Len() == 0 {
		resp.Say(MsgEmpty)
		return
	}
	resp.Show(contents.Table())
}

func (p *Processor) handleShop(ctx context.Context, resp *Response, cmd *Command, args []string) error {
	usage := &UsageError{Usage: cmd.Usage}
	if len(args) != 4 {
		return usage
	}
	action := strings.ToLower(args[0])
	if action != shop.KindBuy && action != shop.KindSell {
		return usage
	}
	item, err := parseItem(args[1], args[2], args[3])
	if err != nil {
		return err
	}

	var receipt shop.Receipt
	if action == shop.KindBuy {
		receipt, err = p.shop.Buy(ctx, p.player, item)
	} else {
		receipt, err = p.shop.Sell(ctx, p.player, item)
	}
	if err != nil {
		return err
	}
	resp.Say("%s", receipt.Message())
	return nil
}

func parseItem(typeArg, qualityArg, amountArg string) (inventory.Item, error) {
	it, err := inventory.ParseItemType(typeArg)
	if err != nil {
		return inventory.Item{}, err
	}
	q, err := inventory.ParseQuality(qualityArg)
	if err != nil {
		return inventory.Item{}, err
	}
	n, err := strconv.Atoi(amountArg)
	if err != nil {
		return inventory.Item{}, &inventory.ValidationError{Field: "amount", Value: amountArg, Allowed: "a positive whole number"}
	}
	item := inventory.Item{Quality: q, Type: it, Amount: n}
	if err := item.Validate(); err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

// fail records err on resp with its player-facing message. Domain
// rejections show their own text; anything else is a store failure.
func (p *Processor) fail(resp *Response, command string, err error) {
	resp.Err = err
	outcome := observability.OutcomeRejected
	switch {
	case errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrUsage),
		errors.Is(err, inventory.ErrInvalidItem),
		errors.Is(err, inventory.ErrInsufficientQuantity),
		errors.Is(err, player.ErrInsufficientFunds):
		resp.Say("%s", err.Error())
	case errors.Is(err, pricing.ErrOverflow):
		resp.Say(MsgTooLarge)
	default:
		outcome = observability.OutcomeError
		resp.Say(MsgStoreFailure)
		p.logger.Error("command failed",
			zap.String("command", command),
			zap.String("player", p.player.Name()),
			zap.Error(err),
		)
	}
	observability.CommandsTotal.WithLabelValues(command, outcome).Inc()
}
