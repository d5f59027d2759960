/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package source fetches batches of quote records. Loaders never touch the
// quote store; callers append what they get back.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Seednode/whosaid/internal/quotes"
)

const (
	// MaxBatch is the largest count the quote API answers.
	MaxBatch = 9

	DefaultEndpoint = "https://thesimpsonsquoteapi.glitch.me/quotes"
)

var (
	ErrNetwork = errors.New("quote source unreachable")
	ErrParse   = errors.New("malformed quote data")
)

// Loader returns up to count quote records per call. There is no retry; the
// caller decides whether to call again.
type Loader interface {
	FetchBatch(ctx context.Context, count int) ([]quotes.Record, error)
}

// ClampBatch bounds count to what a source can serve.
func ClampBatch(count int) int {
	return max(1, min(count, MaxBatch))
}

// decode reads exactly one JSON array of records and validates every element.
func decode(r io.Reader) ([]quotes.Record, error) {
	var records []quotes.Record

	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	// null decodes without error but leaves the slice nil.
	if records == nil {
		return nil, fmt.Errorf("%w: expected an array", ErrParse)
	}

	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after array", ErrParse)
	}

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrParse, i, err)
		}
	}

	return records, nil
}
