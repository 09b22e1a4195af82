// Package render evaluates picasso expressions over pixel grids.
package render

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/picasso"
)

// ErrSize is returned when asked to render an image with no pixels.
var ErrSize = errors.New("render: image dimensions must be positive")

// Render evaluates e at every pixel of a w by h image. The pixel in column i
// and row j is evaluated at x = -1 + 2i/w, y = -1 + 2j/h, so the top left
// pixel is (-1, -1).
//
// Each row is evaluated with its own clone of base, and rows are evaluated
// concurrently. The clones are made in row order before any evaluation, so a
// base with a seeded random source renders the same image every time.
// Bindings made while rendering are visible only within the row that makes
// them; base is never modified except to advance its random source.
//
// Rendering stops at the first evaluation error, such as a variable with no
// value, or when ctx is canceled between rows.
func Render(ctx context.Context, e *picasso.Expr, base *picasso.Context, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrSize
	}
	if base == nil {
		base = picasso.NewContext()
	}
	rows := make([]*picasso.Context, h)
	for j := range rows {
		rows[j] = base.Clone()
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j, rc := range rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return row(img, e, rc, j, w, h)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

// row evaluates one row of the image into img.
func row(img *image.RGBA, e *picasso.Expr, rc *picasso.Context, j, w, h int) error {
	y := -1 + 2*float64(j)/float64(h)
	p := img.Pix[j*img.Stride : j*img.Stride+4*w]
	for i := 0; i < w; i++ {
		x := -1 + 2*float64(i)/float64(w)
		c := rc.Eval(e, x, y)
		if err := rc.Err(); err != nil {
			return err
		}
		// Colors are opaque, so the premultiplied and plain forms agree.
		n := c.NRGBA()
		p[4*i+0] = n.R
		p[4*i+1] = n.G
		p[4*i+2] = n.B
		p[4*i+3] = n.A
	}
	return nil
}

// EncodePNG writes img to w in PNG format.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}
