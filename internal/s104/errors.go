package s104

import "errors"

var (
	// ErrInsufficientData indicates a non-empty series table with fewer
	// than two timestamps, which leaves the sampling interval (and the
	// one-hour trend window) underivable.
	ErrInsufficientData = errors.New("insufficient data: at least two timestamps required to derive sampling interval")

	// ErrEmptyDataset indicates that all four series tables are empty.
	// Generation aborts before anything is written.
	ErrEmptyDataset = errors.New("empty dataset: no water level data in any series")
)
