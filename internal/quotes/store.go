/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package quotes holds the deduplicated quote pool that rounds are drawn from.
//
// The pool only ever grows. Characters are remembered in the order they were
// first seen so they can be indexed uniformly at random, and each character
// keeps a set of unique quote strings alongside the metadata of the most
// recent record seen for it.
package quotes

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

var (
	ErrNotFound         = errors.New("character not found")
	ErrInsufficientData = errors.New("not enough characters")
)

// Character is a read-only view of one character entry.
type Character struct {
	Name      string
	Image     string
	Direction Direction
	Quotes    int
}

type entry struct {
	image     string
	direction Direction

	// quotes holds each unique quote once, seen guards against repeats.
	quotes []string
	seen   map[string]struct{}
}

func (e *entry) add(quote string) bool {
	if _, ok := e.seen[quote]; ok {
		return false
	}
	e.seen[quote] = struct{}{}
	e.quotes = append(e.quotes, quote)
	return true
}

// Store is safe for concurrent use; every session shares one.
type Store struct {
	mu         sync.RWMutex
	characters map[string]*entry
	names      []string
	rng        *rand.Rand
}

// NewStore returns an empty store. A nil rng uses the package-level source.
func NewStore(rng *rand.Rand) *Store {
	return &Store{
		characters: make(map[string]*entry),
		rng:        rng,
	}
}

func (s *Store) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	return s.rng.IntN(n)
}

// Append folds a batch of records into the store and returns how many quotes
// were new. Records are assumed valid.
func (s *Store) Append(records []Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, r := range records {
		e, ok := s.characters[r.Character]
		if !ok {
			e = &entry{seen: make(map[string]struct{})}
			s.characters[r.Character] = e
			if !slices.Contains(s.names, r.Character) {
				s.names = append(s.names, r.Character)
			}
		}

		e.image = r.Image
		e.direction = r.CharacterDirection

		if e.add(r.Quote) {
			added++
		}
	}

	return added
}

// Size is the number of distinct characters known.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.names)
}

// Names returns the known characters in first-seen order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.names)
}

func (s *Store) Character(name string) (Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.characters[name]
	if !ok {
		return Character{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return Character{
		Name:      name,
		Image:     e.image,
		Direction: e.direction,
		Quotes:    len(e.quotes),
	}, nil
}

// QuotesFor returns a copy of the unique quotes known for name.
func (s *Store) QuotesFor(name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.characters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return slices.Clone(e.quotes), nil
}

// RandomQuote picks one of name's quotes uniformly at random.
func (s *Store) RandomQuote(name string) (string, error) {
	// Write lock: the rng is not safe for concurrent use.
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.characters[name]
	if !ok || len(e.quotes) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return e.quotes[s.intN(len(e.quotes))], nil
}

// RandomDistinctCharacters draws n different names without replacement, in
// random order. It runs a partial Fisher-Yates shuffle over a copy of the name
// list, so it always finishes in n steps.
func (s *Store) RandomDistinctCharacters(n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 || len(s.names) < n {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientData, n, len(s.names))
	}

	pool := slices.Clone(s.names)
	for i := range n {
		j := i + s.intN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:n], nil
}
