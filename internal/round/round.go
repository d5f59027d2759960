// Package round builds quote-guessing questions from the quote store.
package round

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/Seednode/whosaid/internal/quotes"
)

// Options is how many characters every round offers.
const Options = 4

// Round is one question. Correct is decided by name, never by position.
type Round struct {
	Quote   string   `json:"quote"`
	Correct string   `json:"-"`
	Options []string `json:"options"`
}

// Has reports whether name is one of the round's options.
func (r Round) Has(name string) bool {
	return slices.Contains(r.Options, name)
}

// Generator owns the randomness used to lay out rounds.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator. A nil rng uses the package-level source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

func (g *Generator) shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	g.rng.Shuffle(n, swap)
}

// NextRound draws Options distinct characters, takes the first as the answer,
// shuffles the options for display and picks one of the answer's quotes.
// It fails with quotes.ErrInsufficientData when the store is too small.
func (g *Generator) NextRound(store *quotes.Store) (Round, error) {
	names, err := store.RandomDistinctCharacters(Options)
	if err != nil {
		return Round{}, fmt.Errorf("next round: %w", err)
	}

	correct := names[0]
	g.shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})

	quote, err := store.RandomQuote(correct)
	if err != nil {
		return Round{}, fmt.Errorf("next round: %w", err)
	}

	return Round{
		Quote:   quote,
		Correct: correct,
		Options: names,
	}, nil
}

// ExitOrder is a random permutation of the option slots, used to stagger
// cards off screen. It has nothing to do with the round's own shuffle.
func (g *Generator) ExitOrder() []int {
	order := make([]int, Options)
	for i := range order {
		order[i] = i
	}
	g.shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	return order
}
