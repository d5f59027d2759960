package game

import (
	"testing"

	"github.com/Seednode/whosaid/internal/round"
)

var abcd = round.Round{Quote: "q1", Correct: "A", Options: []string{"C", "A", "D", "B"}}

func TestState_RecordSelectionBeforeReady(t *testing.T) {
	s := NewState()

	if _, ok := s.RecordSelection("A"); ok {
		t.Fatal("RecordSelection accepted input before any round")
	}
	if s.Score() != 0 || s.Asked() != 0 {
		t.Errorf("score %d asked %d, want 0 0", s.Score(), s.Asked())
	}
	if _, ok := s.Current(); ok {
		t.Error("Current reported a round before AdvanceRound")
	}
}

func TestState_RecordSelectionCorrect(t *testing.T) {
	s := NewState()
	s.AdvanceRound(abcd)

	if !s.Ready() {
		t.Fatal("AdvanceRound did not open input")
	}

	res, ok := s.RecordSelection("A")
	if !ok {
		t.Fatal("RecordSelection ignored input while ready")
	}
	if !res.WasCorrect || res.Correct != "A" || res.Selected != "A" {
		t.Errorf("result %+v, want correct A/A", res)
	}
	if s.Score() != 1 {
		t.Errorf("score %d, want 1", s.Score())
	}
	if s.Ready() {
		t.Error("still ready after a selection")
	}
}

func TestState_RecordSelectionWrong(t *testing.T) {
	s := NewState()
	s.AdvanceRound(abcd)

	res, ok := s.RecordSelection("B")
	if !ok {
		t.Fatal("RecordSelection ignored input while ready")
	}
	if res.WasCorrect {
		t.Error("wrong pick reported correct")
	}
	if res.Correct != "A" || res.Selected != "B" {
		t.Errorf("result %+v, want correct A selected B", res)
	}
	if s.Score() != 0 || s.Asked() != 1 {
		t.Errorf("score %d asked %d, want 0 1", s.Score(), s.Asked())
	}
}

func TestState_RecordSelectionWhileNotReadyIsNoop(t *testing.T) {
	s := NewState()
	s.AdvanceRound(abcd)
	s.RecordSelection("A")

	before, _ := s.Current()
	if _, ok := s.RecordSelection("A"); ok {
		t.Fatal("second selection accepted")
	}

	after, _ := s.Current()
	if s.Score() != 1 || s.Asked() != 1 {
		t.Errorf("score %d asked %d, want 1 1", s.Score(), s.Asked())
	}
	if after.Quote != before.Quote || after.Correct != before.Correct {
		t.Errorf("current round changed from %+v to %+v", before, after)
	}
}
