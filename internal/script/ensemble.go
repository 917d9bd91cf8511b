package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/renderer"
)

// Ensemble replays one scenario under consecutive seeds.
type Ensemble struct {
	scenario  *Scenario
	numRuns   int
	seedStart int64
}

func NewEnsemble(sc *Scenario, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{scenario: sc, numRuns: numRuns, seedStart: seedStart}
}

// Run replays every seed concurrently, each on its own host. Results are
// ordered by seed.
func (e *Ensemble) Run(ctx context.Context, cfg renderer.Config) ([]*Result, error) {
	if e.numRuns < 1 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run, got %d", field.ErrInvalidConfig, e.numRuns)
	}
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sc := *e.scenario
			sc.Seed = e.seedStart + int64(idx)
			results[idx], errs[idx] = Run(ctx, &sc, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
