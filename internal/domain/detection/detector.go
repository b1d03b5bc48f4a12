package detection

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Detector runs signal extractors against a URL
//
// The Detector coordinates multiple Extractor implementations, each
// responsible for one heuristic (patterns, keywords, homographs, etc.).
// Extractors are independent of each other, so they run concurrently and
// every one is joined before the signals are handed to Aggregate.
type Detector struct {
	extractors []Extractor
}

// NewDetector creates a detector with the standard pure extractors, followed by
// any extra extractors (reputation and domain age, which need I/O, are supplied
// by the caller).
func NewDetector(registry *Registry, extra ...Extractor) *Detector {
	extractors := []Extractor{
		NewTLSStrategy(),
		NewPatternStrategy(registry),
		NewKeywordStrategy(registry),
		NewHomographStrategy(),
		NewStructureStrategy(),
		NewRedirectStrategy(registry),
	}
	extractors = append(extractors, extra...)

	return &Detector{extractors: extractors}
}

// Extractors returns the names of the configured extractors, in run order
func (d *Detector) Extractors() []string {
	names := make([]string, 0, len(d.extractors))
	for _, e := range d.extractors {
		names = append(names, e.Name())
	}
	return names
}

// Collect runs all extractors in parallel and waits for every one of them.
//
// Each extractor owns exactly one slot of the returned Signals. An extractor
// that panics leaves its slot at the neutral value from NewSignals; the panic
// is reported through the returned error while the signals stay usable.
func (d *Detector) Collect(ctx context.Context, target Target) (*Signals, error) {
	signals := NewSignals()

	// A plain Group: one failing extractor must not cancel the others
	var g errgroup.Group
	for _, extractor := range d.extractors {
		extractor := extractor
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("extractor %q panicked: %v", extractor.Name(), r)
				}
			}()
			extractor.Extract(ctx, target, signals)
			return nil
		})
	}

	return signals, g.Wait()
}
