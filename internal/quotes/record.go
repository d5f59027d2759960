/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quotes

import (
	"errors"
	"fmt"
)

// Direction is the way a character portrait faces.
type Direction string

const (
	Left  Direction = "Left"
	Right Direction = "Right"
)

func (d Direction) Valid() bool {
	return d == Left || d == Right
}

// Record is one quote as delivered by a quote source.
type Record struct {
	Quote              string    `json:"quote"`
	Character          string    `json:"character"`
	Image              string    `json:"image"`
	CharacterDirection Direction `json:"characterDirection"`
}

var errInvalidRecord = errors.New("invalid quote record")

// Validate reports whether r carries every field a round needs.
func (r Record) Validate() error {
	switch {
	case r.Character == "":
		return fmt.Errorf("%w: missing character", errInvalidRecord)
	case r.Quote == "":
		return fmt.Errorf("%w: missing quote for %q", errInvalidRecord, r.Character)
	case r.Image == "":
		return fmt.Errorf("%w: missing image for %q", errInvalidRecord, r.Character)
	case !r.CharacterDirection.Valid():
		return fmt.Errorf("%w: direction %q for %q", errInvalidRecord, r.CharacterDirection, r.Character)
	}

	return nil
}
