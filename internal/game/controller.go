/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package game runs the round lifecycle of one session: loading enough
// quotes, presenting a round, taking exactly one selection, and the timed
// transition to the next round.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Seednode/whosaid/internal/quotes"
	"github.com/Seednode/whosaid/internal/round"
	"github.com/Seednode/whosaid/internal/source"
)

var ErrLoadExhausted = errors.New("could not load enough quotes")

const (
	// MaxLoadAttempts bounds Options.LoadAttempts.
	MaxLoadAttempts = 20

	// MaxLoadBackoff caps the wait between failed fetches.
	MaxLoadBackoff = 30 * time.Second
)

// Phase is where the controller is in the round cycle.
type Phase int

const (
	Loading Phase = iota
	AwaitingInput
	Resolving
	Transitioning
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case AwaitingInput:
		return "awaiting_input"
	case Resolving:
		return "resolving"
	case Transitioning:
		return "transitioning"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Options holds the loading policy and transition timings.
type Options struct {
	BatchSize    int
	LoadAttempts int
	LoadBackoff  time.Duration
	RevealDelay  time.Duration
	ExitStagger  time.Duration
	ExitSettle   time.Duration
}

func DefaultOptions() Options {
	return Options{
		BatchSize:    source.MaxBatch,
		LoadAttempts: 5,
		LoadBackoff:  500 * time.Millisecond,
		RevealDelay:  400 * time.Millisecond,
		ExitStagger:  100 * time.Millisecond,
		ExitSettle:   200 * time.Millisecond,
	}
}

// Config wires a controller to its collaborators. Logf may be nil.
type Config struct {
	Store     *quotes.Store
	Loader    source.Loader
	Generator *round.Generator
	Scheduler Scheduler
	Presenter Presenter
	Options   Options
	Logf      func(format string, args ...any)
}

// Controller is the round state machine:
//
//	Loading -> AwaitingInput -> Resolving -> Transitioning -> AwaitingInput ...
//
// All methods must be called on the session thread that drives Scheduler.
type Controller struct {
	store *quotes.Store
	src   source.Loader
	gen   *round.Generator
	sched Scheduler
	view  Presenter
	opts  Options
	logf  func(format string, args ...any)

	// ctx bounds fetches for the lifetime of the session.
	ctx   context.Context
	state *State
	phase Phase
	cards []Card

	// result is the current round's resolved selection, if any.
	result   Result
	resolved bool

	fetches  int
	failures int
}

func NewController(cfg Config) *Controller {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	gen := cfg.Generator
	if gen == nil {
		gen = round.NewGenerator(nil)
	}

	return &Controller{
		store: cfg.Store,
		src:   cfg.Loader,
		gen:   gen,
		sched: cfg.Scheduler,
		view:  cfg.Presenter,
		opts:  cfg.Options,
		logf:  logf,
		ctx:   context.Background(),
		state: NewState(),
		phase: Loading,
	}
}

// Start begins loading. The first round is rendered once the store holds
// enough characters.
func (c *Controller) Start(ctx context.Context) {
	c.ctx = ctx
	c.phase = Loading
	c.loadUntilReady()
}

func (c *Controller) Phase() Phase {
	return c.phase
}

// Snapshot is everything a late-joining view needs to catch up.
type Snapshot struct {
	Phase    Phase
	Round    round.Round
	HasRound bool
	Cards    []Card
	Score    int
	Asked    int

	// Result is set once the current round has been answered.
	Result   Result
	Resolved bool
}

func (c *Controller) Snapshot() Snapshot {
	r, ok := c.state.Current()

	return Snapshot{
		Phase:    c.phase,
		Round:    r,
		HasRound: ok,
		Cards:    c.cards,
		Score:    c.state.Score(),
		Asked:    c.state.Asked(),
		Result:   c.result,
		Resolved: c.resolved,
	}
}

func (c *Controller) fetch(done func(records []quotes.Record, err error)) {
	var (
		records []quotes.Record
		err     error
	)

	c.fetches++
	c.sched.Do(func() {
		records, err = c.src.FetchBatch(c.ctx, c.opts.BatchSize)
	}, func() {
		done(records, err)
	})
}

func (c *Controller) loadUntilReady() {
	if c.store.Size() >= round.Options {
		c.nextRound()
		return
	}

	if c.fetches >= c.opts.LoadAttempts {
		c.fail(fmt.Errorf("%w: %d characters after %d fetches", ErrLoadExhausted, c.store.Size(), c.fetches))
		return
	}

	c.fetch(func(records []quotes.Record, err error) {
		if err != nil {
			c.failures++
			wait := loadBackoff(c.opts.LoadBackoff, c.failures)
			c.logf("QUOTES: Fetch %d/%d failed, retrying in %s: %v", c.fetches, c.opts.LoadAttempts, wait, err)
			c.sched.After(wait, c.loadUntilReady)
			return
		}

		added := c.store.Append(records)
		c.logf("QUOTES: Loaded %d new quotes, %d characters known", added, c.store.Size())
		c.loadUntilReady()
	})
}

// loadBackoff doubles base for every failure after the first, up to
// MaxLoadBackoff.
func loadBackoff(base time.Duration, failures int) time.Duration {
	wait := min(max(base, 0), MaxLoadBackoff)
	for range failures - 1 {
		if wait >= MaxLoadBackoff/2 {
			return MaxLoadBackoff
		}
		wait *= 2
	}

	return wait
}

// Select hands the player's pick to the controller. It reports whether the
// pick was taken; picks outside AwaitingInput, or naming a character that is
// not on screen, are ignored.
func (c *Controller) Select(character string) bool {
	if c.phase != AwaitingInput {
		return false
	}

	cur, ok := c.state.Current()
	if !ok || !cur.Has(character) {
		c.logf("GAMES: Ignoring selection %q, not an option", character)
		return false
	}

	res, ok := c.state.RecordSelection(character)
	if !ok {
		return false
	}

	c.phase = Resolving
	c.result, c.resolved = res, true
	c.view.Highlight(res.Correct, res.Selected)
	c.view.UpdateScore(c.state.Score(), c.state.Asked())

	c.sched.After(c.opts.RevealDelay, c.transition)

	return true
}

func (c *Controller) transition() {
	c.phase = Transitioning

	order := c.gen.ExitOrder()
	c.view.AnimateExit(order)

	last := len(order) - 1
	for i, slot := range order {
		c.sched.After(time.Duration(i)*c.opts.ExitStagger, func() {
			c.view.ExitSlot(slot)

			if i == last {
				c.sched.After(c.opts.ExitSettle, c.reload)
			}
		})
	}
}

// reload fetches one more batch on a best-effort basis before the next round.
func (c *Controller) reload() {
	c.fetch(func(records []quotes.Record, err error) {
		if err != nil {
			c.logf("QUOTES: Reload failed, continuing with %d characters: %v", c.store.Size(), err)
		} else {
			c.store.Append(records)
		}

		c.nextRound()
	})
}

func (c *Controller) nextRound() {
	r, err := c.gen.NextRound(c.store)
	if err != nil {
		c.fail(err)
		return
	}

	cards := make([]Card, 0, len(r.Options))
	for _, name := range r.Options {
		ch, err := c.store.Character(name)
		if err != nil {
			c.fail(fmt.Errorf("inconsistent quote store: %w", err))
			return
		}
		cards = append(cards, Card{Name: ch.Name, Image: ch.Image, Direction: ch.Direction})
	}

	c.cards = cards
	c.result, c.resolved = Result{}, false
	c.state.AdvanceRound(r)
	c.phase = AwaitingInput
	c.view.Render(r, cards)
}

func (c *Controller) fail(err error) {
	c.phase = Failed
	c.logf("ERROR: %v", err)
	c.view.Fail(err)
}
