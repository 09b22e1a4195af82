package picasso

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"

	// Decoders for FileImages.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/segmentio/fasthash/fnv1a"
)

// ErrNoImages is the error wrapped by a ResourceError when an expression
// names an image but parsing has no ImageLoader.
var ErrNoImages = errors.New("no image loader")

// ErrEmptyImage is the error wrapped by a ResourceError when an ImageLoader
// returns a nil Image or one with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Image is a fixed-size grid of colors.
type Image interface {
	Width() int
	Height() int
	// ColorAt returns the color of the pixel at a column in [0, Width()) and a
	// row in [0, Height()).
	ColorAt(col, row int) Color
}

// ImageLoader resolves image names in expressions.
type ImageLoader interface {
	Load(name string) (Image, error)
}

// ImageLoaderFunc adapts a function to an ImageLoader.
type ImageLoaderFunc func(name string) (Image, error)

func (f ImageLoaderFunc) Load(name string) (Image, error) {
	return f(name)
}

// Raster is an Image held in memory.
type Raster struct {
	w, h int
	pix  []Color
}

// NewRaster converts a decoded image to a Raster. Column 0 and row 0 are the
// image's minimum point.
func NewRaster(img image.Image) *Raster {
	b := img.Bounds()
	r := Raster{
		w:   b.Dx(),
		h:   b.Dy(),
		pix: make([]Color, 0, b.Dx()*b.Dy()),
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r.pix = append(r.pix, ColorOf(img.At(x, y)))
		}
	}
	return &r
}

func (r *Raster) Width() int {
	return r.w
}

func (r *Raster) Height() int {
	return r.h
}

func (r *Raster) ColorAt(col, row int) Color {
	return r.pix[row*r.w+col]
}

type cachedImage struct {
	path string
	img  *Raster
}

type fileImages struct {
	dir string

	mu    sync.Mutex
	cache map[uint64][]cachedImage
}

// FileImages returns an ImageLoader that decodes image files named relative
// to dir. PNG, JPEG, GIF, BMP, TIFF, and WebP files are supported. Each file
// is decoded once; later loads of the same path share the result. The loader
// is safe for concurrent use.
func FileImages(dir string) ImageLoader {
	return &fileImages{dir: dir, cache: make(map[uint64][]cachedImage)}
}

func (f *fileImages) Load(name string) (Image, error) {
	path := filepath.FromSlash(name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, path)
	}
	path = filepath.Clean(path)
	h := fnv1a.HashString64(path)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cache[h] {
		if c.path == path {
			return c.img, nil
		}
	}
	r, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	f.cache[h] = append(f.cache[h], cachedImage{path: path, img: r})
	return r, nil
}

func decodeFile(path string) (*Raster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	r := NewRaster(img)
	if r.w == 0 || r.h == 0 {
		return nil, fmt.Errorf("decoding %s: image is empty", path)
	}
	return r, nil
}

// cell maps a coordinate to a cell of a grid of n cells spanning [-1, 1].
// The result may lie outside [0, n).
func cell(v float64, n int) float64 {
	return math.Floor((v + 1) / 2 * float64(n))
}

// clipIndex maps a coordinate to an index in [0, n), saturating at the edges.
// NaN maps to 0.
func clipIndex(v float64, n int) int {
	if math.IsNaN(v) {
		return 0
	}
	c := cell(v, n)
	switch {
	case c < 0:
		return 0
	case c > float64(n-1):
		return n - 1
	default:
		return int(c)
	}
}

// wrapIndex maps a coordinate to an index in [0, n), repeating the grid with
// period 2. Non-finite values map to 0.
func wrapIndex(v float64, n int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	c := math.Mod(cell(v, n), float64(n))
	if c < 0 {
		c += float64(n)
	}
	if c >= float64(n) || math.IsNaN(c) {
		// Rounding, or overflow in cell.
		return 0
	}
	return int(c)
}

func sampleClip(img Image, x, y float64) Color {
	return img.ColorAt(clipIndex(x, img.Width()), clipIndex(y, img.Height()))
}

func sampleWrap(img Image, x, y float64) Color {
	return img.ColorAt(wrapIndex(x, img.Width()), wrapIndex(y, img.Height()))
}
