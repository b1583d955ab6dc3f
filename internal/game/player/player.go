// Package player holds a player's gold, level, and inventory, and persists
// them through a storage.Store.
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
	"github.com/cory-johannsen/quartermaster/internal/game/view"
	"github.com/cory-johannsen/quartermaster/internal/storage"
)

// ErrInsufficientFunds is matched when a debit exceeds the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAmount is matched when a gold amount is negative or overflows.
var ErrInvalidAmount = errors.New("invalid gold amount")

// FundsError reports a debit the balance cannot cover.
type FundsError struct {
	Balance int
	Needed  int
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("Not enough gold. You have %d gold and need %d.", e.Balance, e.Needed)
}

// Is makes FundsError match ErrInsufficientFunds.
func (e *FundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// Profile is a point-in-time view of a player's stats.
type Profile struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Gold  int    `json:"gold"`
}

// Table renders the profile as a single-row table.
func (p Profile) Table() view.Table {
	return view.Table{
		Title:  "Profile",
		Header: []string{"Account Name", "Level", "Gold"},
		Rows:   [][]string{{p.Name, strconv.Itoa(p.Level), strconv.Itoa(p.Gold)}},
	}
}

// Player is a named account with a gold balance and an inventory.
// Player is not safe for concurrent use; one session drives it.
type Player struct {
	name     string
	level    int
	gold     int
	inv      *inventory.Inventory
	store    storage.Store
	onChange func(Profile)
}

// Name returns the account name.
func (p *Player) Name() string { return p.name }

// Level returns the player's level.
func (p *Player) Level() int { return p.level }

// Gold returns the current balance.
func (p *Player) Gold() int { return p.gold }

// Inventory returns the bound inventory.
func (p *Player) Inventory() *inventory.Inventory { return p.inv }

// Profile returns a snapshot of name, level, and gold.
func (p *Player) Profile() Profile {
	return Profile{Name: p.name, Level: p.level, Gold: p.gold}
}

// OnChange registers fn to receive a Profile after every committed change.
// A nil fn disables notification.
func (p *Player) OnChange(fn func(Profile)) { p.onChange = fn }

func (p *Player) notify() {
	if p.onChange != nil {
		p.onChange(p.Profile())
	}
}

// AddGold credits amount and persists.
//
// Precondition: amount >= 0.
// Postcondition: Returns the new balance; on error the balance is unchanged.
func (p *Player) AddGold(ctx context.Context, amount int) (int, error) {
	err := p.Transact(ctx, func(tx *Tx) error { return tx.Credit(amount) })
	if err != nil {
		return p.gold, err
	}
	return p.gold, nil
}

// SubtractGold debits amount and persists.
//
// Postcondition: Returns an error matching ErrInsufficientFunds, and leaves
// the balance unchanged, when amount exceeds the balance.
func (p *Player) SubtractGold(ctx context.Context, amount int) error {
	return p.Transact(ctx, func(tx *Tx) error { return tx.Debit(amount) })
}

// Tx is a scratch copy of a player's gold and inventory.
type Tx struct {
	gold  int
	items *inventory.Contents
}

// Gold returns the scratch balance.
func (tx *Tx) Gold() int { return tx.gold }

// Items returns the scratch inventory.
func (tx *Tx) Items() *inventory.Contents { return tx.items }

// Credit adds amount to the scratch balance.
func (tx *Tx) Credit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: credit of %d", ErrInvalidAmount, amount)
	}
	if tx.gold > math.MaxInt-amount {
		return fmt.Errorf("%w: balance would overflow", ErrInvalidAmount)
	}
	tx.gold += amount
	return nil
}

// Debit removes amount from the scratch balance.
func (tx *Tx) Debit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: debit of %d", ErrInvalidAmount, amount)
	}
	if amount > tx.gold {
		return &FundsError{Balance: tx.gold, Needed: amount}
	}
	tx.gold -= amount
	return nil
}

// Transact runs fn against a scratch copy of gold and inventory. When fn
// succeeds both are written in one SetMany batch and then swapped in.
//
// Postcondition: on any error from fn or the store, the player is unchanged.
func (p *Player) Transact(ctx context.Context, fn func(*Tx) error) error {
	tx := &Tx{gold: p.gold, items: p.inv.Snapshot()}
	if err := fn(tx); err != nil {
		return err
	}
	rec := record{Name: p.name, Level: p.level, Gold: tx.gold}
	err := p.store.SetMany(ctx,
		storage.Entry{Key: p.name, Value: rec.marshal()},
		p.inv.Entry(tx.items),
	)
	if err != nil {
		return fmt.Errorf("saving player %q: %w", p.name, err)
	}
	p.gold = tx.gold
	p.inv.Replace(tx.items)
	p.notify()
	return nil
}

// Save writes the player record and inventory in one batch.
func (p *Player) Save(ctx context.Context) error {
	rec := record{Name: p.name, Level: p.level, Gold: p.gold}
	err := p.store.SetMany(ctx,
		storage.Entry{Key: p.name, Value: rec.marshal()},
		p.inv.Entry(p.inv.Snapshot()),
	)
	if err != nil {
		return fmt.Errorf("saving player %q: %w", p.name, err)
	}
	return nil
}
