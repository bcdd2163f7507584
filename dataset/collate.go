package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrShapeMismatch = errors.New("batch windows must share one shape")

// Batch is a collated batch: element i of each slice is the i-th window,
// stacked along the new leading batch dimension.
type Batch struct {
	CQT    []*mat.Dense
	Labels []*mat.Dense
}

func (b *Batch) Len() int {
	return len(b.CQT)
}

// Collate stacks items into a batch. Every window must share the shape of
// the first item; with the dataset-wide fixed window length that holds by
// construction, so a mismatch means caller error and fails loudly.
func Collate(items []Item) (*Batch, error) {
	batch := &Batch{
		CQT:    make([]*mat.Dense, 0, len(items)),
		Labels: make([]*mat.Dense, 0, len(items)),
	}

	if len(items) == 0 {
		return batch, nil
	}

	wantRows, wantCols := items[0].CQT.Dims()
	wantLabelRows, wantLabelCols := items[0].Labels.Dims()

	for i, item := range items {
		rows, cols := item.CQT.Dims()
		labelRows, labelCols := item.Labels.Dims()

		if rows != wantRows || cols != wantCols || labelRows != wantLabelRows || labelCols != wantLabelCols {
			return nil, fmt.Errorf("%w: item %d is (%d, %d)/(%d, %d), want (%d, %d)/(%d, %d)",
				ErrShapeMismatch, i, rows, cols, labelRows, labelCols,
				wantRows, wantCols, wantLabelRows, wantLabelCols)
		}

		batch.CQT = append(batch.CQT, item.CQT)
		batch.Labels = append(batch.Labels, item.Labels)
	}

	return batch, nil
}
