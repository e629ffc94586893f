// Package grid computes square-grid tiling layouts for composing a cycle's
// images onto a fixed-size canvas. It is pure geometry; loading, scaling and
// blitting pixels belong to the display layer.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// Cell places one image tile on the canvas. Index refers back into the
// image list the layout was computed for.
type Cell struct {
	Index int
	X     int
	Y     int
}

// Layout is a computed tiling. Cells holds only the tiles whose rectangle
// fits the canvas entirely; images whose slot falls past an edge are left
// out rather than clipped.
type Layout struct {
	Grid  int // grid dimension, ceil(sqrt(n))
	TileW int
	TileH int
	Cols  int // full tile columns the canvas can hold
	Rows  int // full tile rows the canvas can hold
	Cells []Cell
}

// Compute lays out n images of the reference aspect ratio refW:refH on a
// canvasW x canvasH canvas. The tile size is derived from the grid dimension
// along the image's longer axis and scaled proportionally on the other; a
// tile that would still overrun the canvas is shrunk to fit.
func Compute(canvasW, canvasH, n, refW, refH int) (Layout, error) {
	if canvasW <= 0 || canvasH <= 0 {
		return Layout{}, fmt.Errorf("grid: invalid canvas %dx%d", canvasW, canvasH)
	}
	if n <= 0 {
		return Layout{}, errors.New("grid: no images to lay out")
	}
	if refW <= 0 || refH <= 0 {
		return Layout{}, fmt.Errorf("grid: invalid reference size %dx%d", refW, refH)
	}

	g := int(math.Ceil(math.Sqrt(float64(n))))

	var tileW, tileH int
	if refW >= refH {
		tileW = canvasW / g
		tileH = int(float64(tileW) * float64(refH) / float64(refW))
		if tileH > canvasH {
			tileH = canvasH
			tileW = int(float64(tileH) * float64(refW) / float64(refH))
		}
	} else {
		tileH = canvasH / g
		tileW = int(float64(tileH) * float64(refW) / float64(refH))
		if tileW > canvasW {
			tileW = canvasW
			tileH = int(float64(tileW) * float64(refH) / float64(refW))
		}
	}
	if tileW <= 0 || tileH <= 0 {
		return Layout{}, fmt.Errorf("grid: canvas %dx%d too small for a %d-wide grid", canvasW, canvasH, g)
	}

	lay := Layout{
		Grid:  g,
		TileW: tileW,
		TileH: tileH,
		Cols:  canvasW / tileW,
		Rows:  canvasH / tileH,
	}

	// Slots advance column-first but wrap on the row count, so a canvas
	// holding fewer rows than columns leaves later images without a slot.
	for i := 0; i < n; i++ {
		row := i / lay.Rows
		col := i % lay.Cols
		x := col * tileW
		y := row * tileH
		if x+tileW > canvasW || y+tileH > canvasH {
			continue
		}
		lay.Cells = append(lay.Cells, Cell{Index: i, X: x, Y: y})
	}
	return lay, nil
}
