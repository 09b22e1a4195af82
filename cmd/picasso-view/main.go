package main

import (
	"context"
	"flag"
	"image"
	"log"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/zephyrtronium/picasso"
	"github.com/zephyrtronium/picasso/render"
)

// viewer shows a rendered expression. Renders run in the background so the
// window stays responsive.
type viewer struct {
	expr *picasso.Expr
	w, h int
	seed uint64

	canvas    *ebiten.Image
	rendering bool
	err       error

	mu   sync.Mutex
	done *image.RGBA
	fail error
	ok   bool
}

func (v *viewer) start() {
	v.rendering = true
	seed := v.seed
	go func() {
		img, err := render.Render(context.Background(), v.expr, picasso.NewContext(picasso.Seed(seed)), v.w, v.h)
		v.mu.Lock()
		v.done, v.fail, v.ok = img, err, true
		v.mu.Unlock()
	}()
}

// collect takes a finished render, if there is one.
func (v *viewer) collect() {
	v.mu.Lock()
	img, err, ok := v.done, v.fail, v.ok
	v.done, v.fail, v.ok = nil, nil, false
	v.mu.Unlock()
	if !ok {
		return
	}
	v.rendering = false
	v.err = err
	if img != nil {
		v.canvas.WritePixels(img.Pix)
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	v.collect()
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && !v.rendering {
		v.seed = rand.Uint64()
		v.start()
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.DrawImage(v.canvas, nil)
	switch {
	case v.err != nil:
		ebitenutil.DebugPrint(screen, v.err.Error())
	case v.rendering:
		ebitenutil.DebugPrint(screen, "rendering...")
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.w, v.h
}

func main() {
	var (
		w      = flag.Int("w", 512, "image width")
		h      = flag.Int("h", 512, "image height")
		seed   = flag.Uint64("seed", 0, "random seed")
		images = flag.String("images", "", "directory of images that the expression may sample")
	)
	flag.Parse()
	log.SetFlags(0)
	src := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(src) == "" {
		log.Fatalln("usage: picasso-view [-w width] [-h height] [-seed n] [-images dir] expr...")
	}
	if *w <= 0 || *h <= 0 {
		log.Fatalf("invalid size %dx%d", *w, *h)
	}
	var opts []picasso.ParseOption
	if *images != "" {
		opts = append(opts, picasso.WithImages(picasso.FileImages(*images)))
	}
	e, err := picasso.Parse(src, opts...)
	if err != nil {
		log.Fatal(err)
	}

	v := &viewer{expr: e, w: *w, h: *h, seed: *seed, canvas: ebiten.NewImage(*w, *h)}
	v.start()
	ebiten.SetWindowSize(*w, *h)
	ebiten.SetWindowTitle("picasso: " + src)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
