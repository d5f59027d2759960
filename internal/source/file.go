/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/Seednode/whosaid/internal/quotes"
)

// FileLoader serves random samples from a local JSON file in the same format
// the quote API returns. The file is read once.
type FileLoader struct {
	mu      sync.Mutex
	records []quotes.Record
	rng     *rand.Rand
}

// NewFileLoader reads path. A nil rng uses the package-level source.
func NewFileLoader(path string, rng *rand.Rand) (*FileLoader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w: no records", path, ErrParse)
	}

	return &FileLoader{records: records, rng: rng}, nil
}

func (l *FileLoader) FetchBatch(ctx context.Context, count int) ([]quotes.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var perm []int
	if l.rng == nil {
		perm = rand.Perm(len(l.records))
	} else {
		perm = l.rng.Perm(len(l.records))
	}

	n := min(ClampBatch(count), len(l.records))
	out := make([]quotes.Record, 0, n)
	for _, i := range perm[:n] {
		out = append(out, l.records[i])
	}

	return out, nil
}
