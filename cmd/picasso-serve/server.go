package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/zephyrtronium/picasso"
	"github.com/zephyrtronium/picasso/internal/cache"
	"github.com/zephyrtronium/picasso/internal/gallery"
	"github.com/zephyrtronium/picasso/render"
)

const (
	defaultSize   = 256
	renderTimeout = 30 * time.Second
)

type server struct {
	gallery *gallery.Store
	cache   *cache.Cache
	images  picasso.ImageLoader
	maxSize int
}

func (s *server) handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/render":
		if !ctx.IsGet() {
			ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
			return
		}
		s.render(ctx)
	case "/gallery":
		switch {
		case ctx.IsGet():
			s.list(ctx)
		case ctx.IsPost():
			s.save(ctx)
		case ctx.IsDelete():
			s.delete(ctx)
		default:
			ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		}
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

// render serves GET /render?expr=&w=&h=&seed= as a PNG.
func (s *server) render(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	w, err := sizeArg(args, "w", s.maxSize)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusBadRequest)
		return
	}
	h, err := sizeArg(args, "h", s.maxSize)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusBadRequest)
		return
	}
	var seed uint64
	if v := args.Peek("seed"); len(v) != 0 {
		seed, err = strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			ctx.Error("invalid seed "+strconv.Quote(string(v)), fasthttp.StatusBadRequest)
			return
		}
	}
	e, err := picasso.Parse(string(args.Peek("expr")), picasso.WithImages(s.images))
	if err != nil {
		s.fail(ctx, err)
		return
	}
	key := cache.Key(e.String(), w, h, seed)
	if b, ok := s.cache.Get(key); ok {
		ctx.Success("image/png", b)
		return
	}
	rctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()
	img, err := render.Render(rctx, e, picasso.NewContext(picasso.Seed(seed)), w, h)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		s.fail(ctx, err)
		return
	}
	s.cache.Put(key, buf.Bytes())
	ctx.Success("image/png", buf.Bytes())
}

// list serves GET /gallery?limit= as JSON.
func (s *server) list(ctx *fasthttp.RequestCtx) {
	limit := 0
	if v := ctx.QueryArgs().Peek("limit"); len(v) != 0 {
		n, err := strconv.Atoi(string(v))
		if err != nil {
			ctx.Error("invalid limit "+strconv.Quote(string(v)), fasthttp.StatusBadRequest)
			return
		}
		limit = n
	}
	items, err := s.gallery.List(limit)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if items == nil {
		items = []*gallery.Entry{}
	}
	s.json(ctx, items)
}

// save serves POST /gallery with title and expr form values.
func (s *server) save(ctx *fasthttp.RequestCtx) {
	title := string(ctx.FormValue("title"))
	expr := string(ctx.FormValue("expr"))
	ent, err := s.gallery.Save(title, expr)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.json(ctx, ent)
}

// delete serves DELETE /gallery?id=.
func (s *server) delete(ctx *fasthttp.RequestCtx) {
	v := ctx.QueryArgs().Peek("id")
	id, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		ctx.Error("invalid id "+strconv.Quote(string(v)), fasthttp.StatusBadRequest)
		return
	}
	if err := s.gallery.Delete(id); err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *server) json(ctx *fasthttp.RequestCtx, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.Success("application/json", buf)
}

// fail responds with an error, using 400 for errors in the request's
// expression.
func (s *server) fail(ctx *fasthttp.RequestCtx, err error) {
	var (
		ierr picasso.InputError
		nerr *picasso.NameError
	)
	switch {
	case errors.As(err, &ierr), errors.As(err, &nerr):
		ctx.Error(err.Error(), fasthttp.StatusBadRequest)
	case errors.Is(err, gallery.ErrNotFound):
		ctx.Error(err.Error(), fasthttp.StatusNotFound)
	default:
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
	}
}

// sizeArg reads an image dimension from a query argument.
func sizeArg(args *fasthttp.Args, name string, limit int) (int, error) {
	v := args.Peek(name)
	if len(v) == 0 {
		return min(defaultSize, limit), nil
	}
	n, err := strconv.Atoi(string(v))
	if err != nil || n <= 0 || n > limit {
		return 0, errors.New(name + " must be between 1 and " + strconv.Itoa(limit))
	}
	return n, nil
}
