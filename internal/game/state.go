package game

import "github.com/Seednode/whosaid/internal/round"

// Result describes how a selection resolved, for highlighting both cards.
type Result struct {
	WasCorrect bool
	Correct    string
	Selected   string
}

// State is the score, the round on screen, and whether input is accepted.
// Ready is the only gate on selections; it is false while a round is
// resolving or transitioning.
type State struct {
	score   int
	asked   int
	current round.Round
	started bool
	ready   bool
}

func NewState() *State {
	return &State{}
}

// RecordSelection resolves the current round. It is a no-op returning false
// unless the state is ready.
func (s *State) RecordSelection(selected string) (Result, bool) {
	if !s.ready {
		return Result{}, false
	}
	s.ready = false
	s.asked++

	res := Result{
		WasCorrect: selected == s.current.Correct,
		Correct:    s.current.Correct,
		Selected:   selected,
	}
	if res.WasCorrect {
		s.score++
	}

	return res, true
}

// AdvanceRound puts r on screen and opens input.
func (s *State) AdvanceRound(r round.Round) {
	s.current = r
	s.started = true
	s.ready = true
}

func (s *State) Score() int {
	return s.score
}

// Asked is the number of rounds resolved so far.
func (s *State) Asked() int {
	return s.asked
}

func (s *State) Ready() bool {
	return s.ready
}

// Current returns the round on screen, if any.
func (s *State) Current() (round.Round, bool) {
	return s.current, s.started
}
