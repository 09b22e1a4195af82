package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/zephyrtronium/picasso"
	"github.com/zephyrtronium/picasso/render"
)

const usage = `usage: picasso [-e] [-o file] [-s WxH] [-d dir] [-S seed] [-a x,y] expr...
       picasso -i [-s WxH] [-d dir] [-S seed]`

var errColor = color.New(color.FgRed)

func main() {
	log.SetFlags(0)
	opts, optind, err := getopt.Getopts(os.Args, "o:s:d:S:eia:")
	if err != nil {
		log.Fatalf("%v\n%s", err, usage)
	}
	var (
		out    = "picasso.png"
		w, h   = 256, 256
		dir    string
		copts  []picasso.ContextOption
		echo   bool
		repl   bool
		at     bool
		ax, ay float64
	)
	for _, opt := range opts {
		switch opt.Option {
		case 'o':
			out = opt.Value
		case 's':
			w, h, err = parseSize(opt.Value)
			if err != nil {
				log.Fatalln(err)
			}
		case 'd':
			dir = opt.Value
		case 'S':
			seed, err := strconv.ParseUint(opt.Value, 0, 64)
			if err != nil {
				log.Fatalf("invalid -S parameter %q", opt.Value)
			}
			copts = append(copts, picasso.Seed(seed))
		case 'e':
			echo = true
		case 'i':
			repl = true
		case 'a':
			ax, ay, err = parsePoint(opt.Value)
			if err != nil {
				log.Fatalln(err)
			}
			at = true
		}
	}
	var popts []picasso.ParseOption
	if dir != "" {
		popts = append(popts, picasso.WithImages(picasso.FileImages(dir)))
	}
	ctx := picasso.NewContext(copts...)

	if repl {
		s := &session{ctx: ctx, popts: popts, w: w, h: h, out: os.Stdout, errs: os.Stderr}
		os.Exit(s.run())
	}

	src := strings.Join(os.Args[optind:], " ")
	if strings.TrimSpace(src) == "" {
		log.Fatalln(usage)
	}
	e, err := picasso.Parse(src, popts...)
	if err != nil {
		report(os.Stderr, src, err)
		os.Exit(1)
	}
	if echo {
		fmt.Println(e)
	}
	if at {
		c := ctx.Eval(e, ax, ay)
		if err := ctx.Err(); err != nil {
			report(os.Stderr, src, err)
			os.Exit(1)
		}
		fmt.Println(c)
		return
	}
	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := renderFile(sctx, e, ctx, w, h, out); err != nil {
		log.Fatal(err)
	}
}

// renderFile renders e and writes it to a PNG file.
func renderFile(ctx context.Context, e *picasso.Expr, base *picasso.Context, w, h int, name string) error {
	img, err := render.Render(ctx, e, base, w, h)
	if err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := render.EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// report writes an error to w. Input errors are shown under the source with a
// marker at the offending column.
func report(w io.Writer, src string, err error) {
	var ierr picasso.InputError
	if errors.As(err, &ierr) && ierr.Pos() > 0 {
		fmt.Fprintln(w, src)
		fmt.Fprintln(w, strings.Repeat(" ", ierr.Pos()-1)+"^")
	}
	errColor.Fprintln(w, err)
}

// parseSize parses an image size like 640x480.
func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("size must be WxH, not %q", s)
	}
	w, err = strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err = strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

// parsePoint parses a point like 0.5,-0.25.
func parsePoint(s string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("point must be x,y, not %q", s)
	}
	x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x in %q", s)
	}
	y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y in %q", s)
	}
	return x, y, nil
}
