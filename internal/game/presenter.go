package game

import (
	"github.com/Seednode/whosaid/internal/quotes"
	"github.com/Seednode/whosaid/internal/round"
)

// Card is what a player sees for one option slot.
type Card struct {
	Name      string           `json:"name"`
	Image     string           `json:"image"`
	Direction quotes.Direction `json:"direction"`
}

// Presenter draws a session. Every method is called on the session thread;
// selections come back through Controller.Select.
type Presenter interface {
	// Render shows a new round; cards are in option order.
	Render(r round.Round, cards []Card)

	// Highlight marks the correct card and the one the player picked.
	Highlight(correct, selected string)

	// AnimateExit announces the order the option slots will leave in.
	AnimateExit(order []int)

	// ExitSlot moves one slot off screen.
	ExitSlot(slot int)

	UpdateScore(score, asked int)

	// Fail reports that the session cannot continue.
	Fail(err error)
}
