package core

import (
	"errors"
	"math"
)

const (
	// tableScale is the value domain of waveform table entries. Entries
	// are percentages in [-100, 100] and are scaled to [-1, 1] on output.
	tableScale = 100.0

	// indexEpsilon snaps a position that floating-point drift has left
	// marginally off an integer back onto that table row, so the
	// floor/ceil bracket cannot land off by one at exact boundaries.
	indexEpsilon = 1e-9
)

var (
	ErrEmptyTable      = errors.New("waveform table must have at least one entry")
	ErrTableValueRange = errors.New("waveform table entries must be finite values in [-100, 100]")
)

// DefaultStepTable is one discretized electrical cycle for a three-coil
// bipolar actuator, 24 entries of phase percentages. The table is implicitly
// cyclic: entry 24 wraps to entry 0.
var DefaultStepTable = [][3]float64{
	{25, 0, -75},
	{50, 0, -50},
	{75, 0, -25},
	{100, 0, 0},
	{75, 25, 0},
	{50, 50, 0},
	{25, 75, 0},
	{0, 100, 0},
	{0, 75, 25},
	{0, 50, 50},
	{0, 25, 75},
	{0, 0, 100},
	{-25, 0, 75},
	{-50, 0, 50},
	{-75, 0, 25},
	{-100, 0, 0},
	{-75, -25, 0},
	{-50, -50, 0},
	{-25, -75, 0},
	{0, -100, 0},
	{0, -75, -25},
	{0, -50, -50},
	{0, -25, -75},
	{0, 0, -100},
}

// TableWaveform drives the phases from a fixed lookup table, linearly
// interpolating between adjacent rows for fractional positions. Positions
// are fractional indices into the table; the period is the table length.
type TableWaveform struct {
	rows [][3]float64
}

// NewTableWaveform creates a table waveform from one discretized electrical
// cycle of phase percentage triples. The rows are copied.
func NewTableWaveform(rows [][3]float64) (*TableWaveform, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	copied := make([][3]float64, len(rows))
	for i, row := range rows {
		for _, v := range row {
			if math.IsNaN(v) || v < -tableScale || v > tableScale {
				return nil, ErrTableValueRange
			}
		}
		copied[i] = row
	}
	return &TableWaveform{rows: copied}, nil
}

func (w *TableWaveform) Period() float64 {
	return float64(len(w.rows))
}

// Len returns the number of table rows.
func (w *TableWaveform) Len() int {
	return len(w.rows)
}

func (w *TableWaveform) ValuesAt(position float64, dir Direction) (a, b, c float64) {
	a, b, c = w.interpolate(position, dir)
	return a / tableScale, b / tableScale, c / tableScale
}

// interpolate returns the phase values in the table's own [-100, 100]
// domain. The bracket is direction-aware: progress always measures advance
// toward the next table entry in the direction of travel, so interpolation
// behaves the same whether the actuator runs forward or backward.
func (w *TableWaveform) interpolate(position float64, dir Direction) (a, b, c float64) {
	n := len(w.rows)
	pos := Normalize(position, float64(n))
	if nearest := math.Round(pos); math.Abs(pos-nearest) <= indexEpsilon {
		pos = nearest
	}

	var fromIdx, toIdx int
	var progress float64
	if dir == Backward {
		fromIdx = int(math.Ceil(pos))
		toIdx = int(math.Floor(pos))
		progress = 1 - (pos - float64(toIdx))
	} else {
		fromIdx = int(math.Floor(pos))
		toIdx = int(math.Ceil(pos))
		progress = 1 - (float64(toIdx) - pos)
	}

	from := w.rows[wrapIndex(fromIdx, n)]
	to := w.rows[wrapIndex(toIdx, n)]

	a = interpolateValue(from[0], to[0], progress)
	b = interpolateValue(from[1], to[1], progress)
	c = interpolateValue(from[2], to[2], progress)
	return a, b, c
}

// wrapIndex wraps a table index onto [0, n): entry n is entry 0 and
// entry -1 is entry n-1.
func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// interpolateValue returns the value progress of the way from from to to.
// Exact at the boundaries: progress 0 returns from unchanged, progress 1
// returns to unchanged, and a flat segment returns its value regardless of
// progress so no interpolation artifacts appear between equal rows.
func interpolateValue(from, to, progress float64) float64 {
	if from == to {
		return to
	}
	if progress <= 0 {
		return from
	}
	if progress >= 1 {
		return to
	}
	return from + progress*(to-from)
}
