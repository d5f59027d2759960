package round

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/Seednode/whosaid/internal/quotes"
)

func storeWith(t *testing.T, names ...string) *quotes.Store {
	t.Helper()

	s := quotes.NewStore(rand.New(rand.NewPCG(5, 6)))
	for _, name := range names {
		s.Append([]quotes.Record{
			{Quote: name + " one", Character: name, Image: "img", CharacterDirection: quotes.Left},
			{Quote: name + " two", Character: name, Image: "img", CharacterDirection: quotes.Left},
		})
	}
	return s
}

func TestGenerator_NextRound(t *testing.T) {
	s := storeWith(t, "Homer", "Marge", "Bart", "Lisa", "Maggie", "Ned", "Moe")
	g := NewGenerator(rand.New(rand.NewPCG(7, 8)))

	for range 200 {
		r, err := g.NextRound(s)
		if err != nil {
			t.Fatalf("NextRound: %v", err)
		}
		if len(r.Options) != Options {
			t.Fatalf("len(Options) %d, want %d", len(r.Options), Options)
		}
		if !r.Has(r.Correct) {
			t.Fatalf("Correct %q missing from %v", r.Correct, r.Options)
		}

		seen := map[string]bool{}
		for _, name := range r.Options {
			if seen[name] {
				t.Fatalf("duplicate option %q in %v", name, r.Options)
			}
			seen[name] = true
		}

		quotes, err := s.QuotesFor(r.Correct)
		if err != nil {
			t.Fatalf("QuotesFor: %v", err)
		}
		if !slices.Contains(quotes, r.Quote) {
			t.Fatalf("quote %q does not belong to %q", r.Quote, r.Correct)
		}
	}
}

func TestGenerator_NextRoundPositionVaries(t *testing.T) {
	s := storeWith(t, "Homer", "Marge", "Bart", "Lisa")
	g := NewGenerator(rand.New(rand.NewPCG(9, 10)))

	positions := map[int]bool{}
	for range 200 {
		r, err := g.NextRound(s)
		if err != nil {
			t.Fatalf("NextRound: %v", err)
		}
		positions[slices.Index(r.Options, r.Correct)] = true
	}
	if len(positions) != Options {
		t.Errorf("correct answer appeared in %d positions, want %d", len(positions), Options)
	}
}

func TestGenerator_NextRoundInsufficientData(t *testing.T) {
	s := storeWith(t, "Homer", "Marge", "Bart")
	g := NewGenerator(nil)

	if _, err := g.NextRound(s); !errors.Is(err, quotes.ErrInsufficientData) {
		t.Errorf("error %v, want ErrInsufficientData", err)
	}
}

func TestGenerator_ExitOrder(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(11, 12)))

	orders := map[[Options]int]bool{}
	for range 100 {
		order := g.ExitOrder()
		sorted := slices.Sorted(slices.Values(order))
		if !slices.Equal(sorted, []int{0, 1, 2, 3}) {
			t.Fatalf("ExitOrder %v is not a permutation of 0..3", order)
		}
		orders[[Options]int(order)] = true
	}
	if len(orders) < 2 {
		t.Error("ExitOrder never varied")
	}
}
