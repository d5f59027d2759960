/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package tty plays a session in a terminal.
package tty

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/Seednode/whosaid/internal/game"
	"github.com/Seednode/whosaid/internal/quotes"
	"github.com/Seednode/whosaid/internal/round"
)

type slotState int

const (
	slotShown slotState = iota
	slotCorrect
	slotIncorrect
	slotGone
)

const (
	titleRow = 0
	quoteRow = 2
	margin   = 2
)

var (
	styleTitle     = tcell.StyleDefault.Bold(true)
	styleQuote     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleCard      = tcell.StyleDefault
	styleCorrect   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
	styleIncorrect = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed)
	styleHint      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// View is a game.Presenter that draws onto a tcell screen.
type View struct {
	screen tcell.Screen

	round       round.Round
	cards       []game.Card
	slots       []slotState
	quoteHidden bool
	score       int
	asked       int
	failure     string
}

var _ game.Presenter = (*View)(nil)

func NewView(screen tcell.Screen) *View {
	return &View{screen: screen}
}

func (v *View) Render(r round.Round, cards []game.Card) {
	v.round = r
	v.cards = cards
	v.slots = make([]slotState, len(cards))
	v.quoteHidden = false
	v.Draw()
}

func (v *View) Highlight(correct, selected string) {
	for i, card := range v.cards {
		if card.Name == correct {
			v.slots[i] = slotCorrect
		} else {
			v.slots[i] = slotIncorrect
		}
	}
	v.Draw()
}

func (v *View) AnimateExit(order []int) {
	v.quoteHidden = true
	v.Draw()
}

func (v *View) ExitSlot(slot int) {
	if slot >= 0 && slot < len(v.slots) {
		v.slots[slot] = slotGone
	}
	v.Draw()
}

func (v *View) UpdateScore(score, asked int) {
	v.score = score
	v.asked = asked
	v.Draw()
}

func (v *View) Fail(err error) {
	v.failure = err.Error()
	v.Draw()
}

// Key maps a key press to a selection, or reports that the player quit.
func (v *View) Key(ev *tcell.EventKey) (selection string, quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return "", true
	case tcell.KeyRune:
		r := ev.Rune()
		if r == 'q' || r == 'Q' {
			return "", true
		}

		i := int(r - '1')
		if i >= 0 && i < len(v.cards) && v.slots[i] == slotShown {
			return v.cards[i].Name, false
		}
	}

	return "", false
}

func (v *View) put(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}

	return x
}

// wrap breaks s into lines no wider than width.
func wrap(s string, width int) []string {
	if width < 1 {
		return []string{s}
	}

	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range strings.Fields(s) {
		if line.Len() > 0 && runewidth.StringWidth(line.String())+1+runewidth.StringWidth(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return lines
}

func facing(d quotes.Direction) string {
	if d == quotes.Right {
		return ">"
	}
	return "<"
}

// Draw repaints the whole screen from the view's model.
func (v *View) Draw() {
	width, height := v.screen.Size()
	v.screen.Clear()

	v.put(margin, titleRow, "Who said it?", styleTitle)
	score := fmt.Sprintf("Score: %d/%d", v.score, v.asked)
	v.put(max(margin, width-margin-runewidth.StringWidth(score)), titleRow, score, styleTitle)

	y := quoteRow
	if !v.quoteHidden && v.round.Quote != "" {
		for _, line := range wrap(`"`+v.round.Quote+`"`, width-2*margin) {
			v.put(margin, y, line, styleQuote)
			y++
		}
	}
	y++

	for i, card := range v.cards {
		row := y + 2*i
		style := styleCard
		switch v.slots[i] {
		case slotGone:
			continue
		case slotCorrect:
			style = styleCorrect
		case slotIncorrect:
			style = styleIncorrect
		}
		v.put(margin, row, fmt.Sprintf(" %d %s %s ", i+1, facing(card.Direction), card.Name), style)
	}

	if v.failure != "" {
		v.put(margin, height-1, v.failure, styleError)
	} else {
		v.put(margin, height-1, "1-4 pick   q quit", styleHint)
	}

	v.screen.Show()
}
