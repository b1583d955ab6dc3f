// Package shop buys and sells items against a player's gold and inventory.
package shop

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
	"github.com/cory-johannsen/quartermaster/internal/game/player"
	"github.com/cory-johannsen/quartermaster/internal/game/pricing"
	"github.com/cory-johannsen/quartermaster/internal/observability"
)

// Transaction kinds.
const (
	KindBuy  = "buy"
	KindSell = "sell"
)

// Receipt describes a completed transaction.
type Receipt struct {
	Kind      string
	Item      inventory.Item
	UnitPrice int
	Total     int
	Balance   int
}

// Message renders the player-facing confirmation.
func (r Receipt) Message() string {
	if r.Kind == KindSell {
		return fmt.Sprintf("You sold %d %s for %d gold.", r.Item.Amount, r.Item.Label(), r.Total)
	}
	return fmt.Sprintf("You bought %d %s for %d gold.", r.Item.Amount, r.Item.Label(), r.Total)
}

// FundsError reports a purchase the player cannot afford.
type FundsError struct {
	Item  inventory.Item
	Total int
	Gold  int
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("Not enough gold. %d %s costs %d gold.", e.Item.Amount, e.Item.Label(), e.Total)
}

// Unwrap exposes player.ErrInsufficientFunds.
func (e *FundsError) Unwrap() error { return player.ErrInsufficientFunds }

// StockError reports a sale of items the player does not hold.
type StockError struct {
	Item inventory.Item
	Held int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("You don't have %d %s to sell.", e.Item.Amount, e.Item.Label())
}

// Unwrap exposes inventory.ErrInsufficientQuantity.
func (e *StockError) Unwrap() error { return inventory.ErrInsufficientQuantity }

// Shop prices and executes transactions. A Shop is stateless beyond its
// price table and is safe for concurrent use across players.
type Shop struct {
	prices *pricing.Table
	logger *zap.Logger
}

// New creates a Shop.
//
// Precondition: prices and logger must be non-nil.
func New(prices *pricing.Table, logger *zap.Logger) *Shop {
	return &Shop{prices: prices, logger: logger}
}

// Prices returns the price table.
func (s *Shop) Prices() *pricing.Table { return s.prices }

// Buy charges p for item and adds it to p's inventory in one transaction.
//
// Precondition: item.Amount >= 1.
// Postcondition: on any error p's gold and inventory are unchanged. An
// unaffordable purchase returns *FundsError.
func (s *Shop) Buy(ctx context.Context, p *player.Player, item inventory.Item) (Receipt, error) {
	unit, total, err := s.prices.BuyTotal(item)
	if err != nil {
		s.record(KindBuy, err)
		return Receipt{}, err
	}
	if total > p.Gold() {
		err := &FundsError{Item: item, Total: total, Gold: p.Gold()}
		s.record(KindBuy, err)
		return Receipt{}, err
	}
	err = p.Transact(ctx, func(tx *player.Tx) error {
		if err := tx.Debit(total); err != nil {
			return err
		}
		return tx.Items().Add(item)
	})
	if err != nil {
		if errors.Is(err, player.ErrInsufficientFunds) {
			err = &FundsError{Item: item, Total: total, Gold: p.Gold()}
		}
		s.record(KindBuy, err)
		return Receipt{}, err
	}
	s.record(KindBuy, nil)
	observability.ItemsTraded.WithLabelValues(KindBuy, string(item.Type), string(item.Quality)).Add(float64(item.Amount))
	observability.GoldFlow.WithLabelValues("spent").Add(float64(total))
	s.logger.Info("item bought",
		zap.String("player", p.Name()),
		zap.String("item", item.String()),
		zap.Int("total", total),
		zap.Int("balance", p.Gold()),
	)
	return Receipt{Kind: KindBuy, Item: item, UnitPrice: unit, Total: total, Balance: p.Gold()}, nil
}

// Sell removes item from p's inventory and credits the sell price in one
// transaction.
//
// Precondition: item.Amount >= 1.
// Postcondition: on any error p's gold and inventory are unchanged. Selling
// more than is held returns *StockError.
func (s *Shop) Sell(ctx context.Context, p *player.Player, item inventory.Item) (Receipt, error) {
	unit, total, err := s.prices.SellTotal(item)
	if err != nil {
		s.record(KindSell, err)
		return Receipt{}, err
	}
	err = p.Transact(ctx, func(tx *player.Tx) error {
		if err := tx.Items().Remove(item, item.Amount); err != nil {
			if errors.Is(err, inventory.ErrInsufficientQuantity) {
				return &StockError{Item: item, Held: tx.Items().Amount(item.Quality, item.Type)}
			}
			return err
		}
		return tx.Credit(total)
	})
	if err != nil {
		s.record(KindSell, err)
		return Receipt{}, err
	}
	s.record(KindSell, nil)
	observability.ItemsTraded.WithLabelValues(KindSell, string(item.Type), string(item.Quality)).Add(float64(item.Amount))
	observability.GoldFlow.WithLabelValues("earned").Add(float64(total))
	s.logger.Info("item sold",
		zap.String("player", p.Name()),
		zap.String("item", item.String()),
		zap.Int("total", total),
		zap.Int("balance", p.Gold()),
	)
	return Receipt{Kind: KindSell, Item: item, UnitPrice: unit, Total: total, Balance: p.Gold()}, nil
}

func (s *Shop) record(kind string, err error) {
	outcome := observability.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, inventory.ErrInvalidItem),
		errors.Is(err, player.ErrInsufficientFunds),
		errors.Is(err, inventory.ErrInsufficientQuantity),
		errors.Is(err, pricing.ErrOverflow):
		outcome = observability.OutcomeRejected
	default:
		outcome = observability.OutcomeError
		s.logger.Error("shop transaction failed", zap.String("kind", kind), zap.Error(err))
	}
	observability.ShopTransactions.WithLabelValues(kind, outcome).Inc()
}
