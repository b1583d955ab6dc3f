package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
	"github.com/cory-johannsen/quartermaster/internal/storage"
)

// MaxNameLength is the longest accepted account name, in runes.
const MaxNameLength = 64

// ErrPlayerNotFound is returned by Load when no record exists for a name.
var ErrPlayerNotFound = errors.New("player not found")

// ErrInvalidName is matched by every name validation failure.
var ErrInvalidName = errors.New("invalid player name")

// Defaults are the starting stats for newly created players.
type Defaults struct {
	Level int
	Gold  int
}

// Repository loads and creates players in a store.
type Repository struct {
	store    storage.Store
	defaults Defaults
	logger   *zap.Logger
}

// NewRepository creates a Repository backed by store.
//
// Precondition: store and logger must be non-nil; defaults.Gold >= 0.
func NewRepository(store storage.Store, defaults Defaults, logger *zap.Logger) *Repository {
	return &Repository{store: store, defaults: defaults, logger: logger}
}

// ValidateName trims name and checks it can be used as a store key.
//
// Postcondition: Returns the trimmed name, or an error matching ErrInvalidName.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	case utf8.RuneCountInString(name) > MaxNameLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	case strings.HasPrefix(name, inventory.KeyPrefix):
		return "", fmt.Errorf("%w: reserved prefix %q", ErrInvalidName, inventory.KeyPrefix)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return "", fmt.Errorf("%w: control characters", ErrInvalidName)
	}
	return name, nil
}

// Load reconstructs the named player and its inventory.
//
// Postcondition: Returns ErrPlayerNotFound when no record exists.
func (r *Repository) Load(ctx context.Context, name string) (*Player, error) {
	data, err := r.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("loading player %q: %w", name, err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decoding player %q: %w", name, err)
	}
	inv, err := inventory.Load(ctx, name, r.store)
	if err != nil {
		return nil, err
	}
	if dropped := inv.Dropped(); len(dropped) > 0 {
		r.logger.Warn("skipped unreadable inventory entries",
			zap.String("player", name),
			zap.Strings("entries", dropped),
		)
	}
	return &Player{name: name, level: rec.Level, gold: rec.Gold, inv: inv, store: r.store}, nil
}

// Create stores a new player with default stats and an empty inventory.
//
// Postcondition: Returns the saved player or a store error.
func (r *Repository) Create(ctx context.Context, name string) (*Player, error) {
	p := &Player{
		name:  name,
		level: r.defaults.Level,
		gold:  r.defaults.Gold,
		inv:   inventory.New(name, r.store),
		store: r.store,
	}
	if err := p.Save(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("player created", zap.String("player", name), zap.Int("gold", p.gold))
	return p, nil
}

// LoadOrCreate returns the named player, creating it when absent.
//
// Postcondition: created reports whether a new record was written.
func (r *Repository) LoadOrCreate(ctx context.Context, name string) (p *Player, created bool, err error) {
	name, err = ValidateName(name)
	if err != nil {
		return nil, false, err
	}
	p, err = r.Load(ctx, name)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrPlayerNotFound) {
		return nil, false, err
	}
	p, err = r.Create(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
