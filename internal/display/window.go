// Package display composes a cycle's images into one canvas and shows it
// in an OS window until the operator quits or asks for another cycle.
//
// HighGUI is not thread safe; Present must run on the main goroutine.
package display

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/andypayne/cambanzo/internal/cycle"
	"github.com/andypayne/cambanzo/internal/grid"
	"github.com/andypayne/cambanzo/internal/logging"
)

const windowTitle = "cambanzo"

// Window presents image batches on a fixed-size canvas. The OS window is
// created on first use and reused across cycles.
type Window struct {
	width  int
	height int
	win    *gocv.Window
	log    *slog.Logger
}

// NewWindow returns a Window with the given canvas size.
func NewWindow(width, height int) *Window {
	return &Window{
		width:  width,
		height: height,
		log:    logging.New("display"),
	}
}

// Present composes the images onto the canvas, shows it, and blocks until
// the operator reacts: q or ESC quits, r requests a refresh. Closing the
// window or canceling the context counts as quitting. Images that fail to
// load are skipped; a batch with nothing loadable is an error.
func (w *Window) Present(ctx context.Context, images []string) (cycle.Event, error) {
	canvas, err := w.compose(images)
	if err != nil {
		return cycle.Quit, err
	}
	defer canvas.Close()

	if w.win == nil {
		w.win = gocv.NewWindow(windowTitle)
		w.win.ResizeWindow(w.width, w.height)
	}
	w.win.IMShow(canvas)

	for {
		if ctx.Err() != nil {
			return cycle.Quit, nil
		}
		if w.win.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			return cycle.Quit, nil
		}
		switch w.win.WaitKey(50) {
		case 'q', 27:
			return cycle.Quit, nil
		case 'r':
			return cycle.Refresh, nil
		}
	}
}

// Close releases the OS window.
func (w *Window) Close() error {
	if w.win == nil {
		return nil
	}
	err := w.win.Close()
	w.win = nil
	return err
}

// compose loads the batch and blits each image into its grid cell. The
// first loadable image fixes the tile aspect ratio for the whole canvas.
func (w *Window) compose(images []string) (gocv.Mat, error) {
	mats := make([]gocv.Mat, 0, len(images))
	defer func() {
		for i := range mats {
			mats[i].Close()
		}
	}()

	for _, path := range images {
		m := gocv.IMRead(path, gocv.IMReadColor)
		if m.Empty() {
			w.log.Warn("image not loadable, skipped", "path", path)
			m.Close()
			continue
		}
		mats = append(mats, m)
	}
	if len(mats) == 0 {
		return gocv.Mat{}, errors.New("display: no loadable images in batch")
	}

	ref := mats[0]
	lay, err := grid.Compute(w.width, w.height, len(mats), ref.Cols(), ref.Rows())
	if err != nil {
		return gocv.Mat{}, err
	}

	canvas := gocv.NewMatWithSize(w.height, w.width, gocv.MatTypeCV8UC3)
	for _, cell := range lay.Cells {
		tile := gocv.NewMat()
		gocv.Resize(mats[cell.Index], &tile, image.Pt(lay.TileW, lay.TileH), 0, 0, gocv.InterpolationArea)
		view := canvas.Region(image.Rect(cell.X, cell.Y, cell.X+lay.TileW, cell.Y+lay.TileH))
		tile.CopyTo(&view)
		view.Close()
		tile.Close()
	}

	logComposition(w.log, len(images), len(mats), lay)
	return canvas, nil
}

func logComposition(log *slog.Logger, batch, loaded int, lay grid.Layout) {
	log.Info("canvas composed",
		"batch", batch,
		"loaded", loaded,
		"shown", len(lay.Cells),
		"grid", lay.Grid,
		"tile_w", lay.TileW,
		"tile_h", lay.TileH,
	)
}
