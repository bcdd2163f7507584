package dataset

import (
	"fmt"

	"github.com/motifdet/leitmotif/recording"
)

// SubsetIndices returns the global indices whose recording matches the given
// version and act filters, positives before negatives, each in construction
// order. A nil filter matches everything; two nil filters return every index.
func (d *Dataset) SubsetIndices(versions, acts []string) []int {
	versionSet := toSet(versions)
	actSet := toSet(acts)

	match := func(id recording.ID) bool {
		if versionSet != nil {
			_, ok := versionSet[id.Version]
			if !ok {
				return false
			}
		}

		if actSet != nil {
			_, ok := actSet[id.Act]
			if !ok {
				return false
			}
		}

		return true
	}

	indices := make([]int, 0, d.Len())

	for i, s := range d.samples {
		if match(s.Recording) {
			indices = append(indices, i)
		}
	}

	for i, s := range d.noneSamples {
		if match(s.Recording) {
			indices = append(indices, i+len(d.samples))
		}
	}

	return indices
}

func toSet(values []string) map[string]struct{} {
	if values == nil {
		return nil
	}

	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return set
}

// Subset is an index-remapped, read-only view over a dataset, typically built
// from SubsetIndices to train on a slice of versions or acts.
type Subset struct {
	ds      *Dataset
	indices []int
}

func NewSubset(d *Dataset, indices []int) *Subset {
	return &Subset{ds: d, indices: indices}
}

func (s *Subset) Len() int {
	return len(s.indices)
}

func (s *Subset) Get(idx int) (Item, error) {
	if idx < 0 || idx >= len(s.indices) {
		return Item{}, fmt.Errorf("%w: %d with %d samples", ErrIndexOutOfRange, idx, len(s.indices))
	}

	return s.ds.Get(s.indices[idx])
}
