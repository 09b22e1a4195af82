package picasso

import (
	"math/rand/v2"
	"strconv"
)

// Context is a context for evaluating expressions. It holds the variables that
// bindings write and the random source for random(). It is not safe to use a
// Context concurrently; Clone one per goroutine instead.
type Context struct {
	names map[string]Color
	rng   *rand.Rand
	err   error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Color
	}
	varsopt map[string]Color
	seedopt uint64
)

func (varopt) ctxOption()  {}
func (varsopt) ctxOption() {}
func (seedopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val Color) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]Color) ContextOption {
	return varsopt(vars)
}

// Seed seeds the context's random source, making random() deterministic.
func Seed(seed uint64) ContextOption {
	return seedopt(seed)
}

// NewContext creates a new evaluation context. Without a Seed option, the
// random source is seeded randomly.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. Unless an
// option seeds it, the clone's random source is seeded from ctx's, so clones
// made in the same order from contexts with the same seed draw the same
// values. Clone therefore advances ctx's random source.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{names: make(map[string]Color, len(ctx.names))}
	for name, val := range ctx.names {
		n.names[name] = val
	}
	seeded := false
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = opt.val
		case varsopt:
			for k, v := range opt {
				n.names[k] = v
			}
		case seedopt:
			n.rng = rand.New(rand.NewPCG(uint64(opt), 0))
			seeded = true
		default:
			panic("picasso: unknown option type")
		}
	}
	if !seeded {
		n.rng = rand.New(rand.NewPCG(ctx.rng.Uint64(), ctx.rng.Uint64()))
	}
	return &n
}

// Eval evaluates an expression at (x, y). If evaluation reads a variable that
// has no value, the result is still defined, but ctx.Err returns the error.
func (ctx *Context) Eval(e *Expr, x, y float64) Color {
	ctx.err = nil
	return e.n.eval(ctx, x, y)
}

// Err returns the first error that occurred during the most recent Eval, if
// any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable. Returns ctx for chaining.
func (ctx *Context) Set(name string, value Color) *Context {
	ctx.bind(name, value)
	return ctx
}

// Lookup returns the value of a variable and whether it has one.
func (ctx *Context) Lookup(name string) (Color, bool) {
	v, ok := ctx.names[name]
	return v, ok
}

// Names returns the number of variables that have values.
func (ctx *Context) Names() int {
	return len(ctx.names)
}

// Range calls f for each variable in the context until f returns false. The
// order is unspecified.
func (ctx *Context) Range(f func(name string, val Color) bool) {
	for k, v := range ctx.names {
		if !f(k, v) {
			return
		}
	}
}

func (ctx *Context) bind(name string, val Color) {
	if ctx.names == nil {
		ctx.names = make(map[string]Color)
	}
	ctx.names[name] = val
}

// fail records err if no error has occurred during this evaluation.
func (ctx *Context) fail(err error) {
	if ctx.err == nil {
		ctx.err = err
	}
}

func (ctx *Context) random() Color {
	return Color{
		R: ctx.rng.Float64()*(ColorMax-ColorMin) + ColorMin,
		G: ctx.rng.Float64()*(ColorMax-ColorMin) + ColorMin,
		B: ctx.rng.Float64()*(ColorMax-ColorMin) + ColorMin,
	}
}

// EvalString is a shortcut to parse an expression without images and evaluate
// it once at (x, y).
func EvalString(src string, x, y float64, opts ...ContextOption) (Color, error) {
	e, err := Parse(src)
	if err != nil {
		return Color{}, err
	}
	ctx := NewContext(opts...)
	r := ctx.Eval(e, x, y)
	return r, ctx.Err()
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}
