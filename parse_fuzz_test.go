package picasso_test

import (
	"testing"

	"github.com/zephyrtronium/picasso"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("a = wrap(x * [1, -0.5, .25]) ^ !y")
	f.Add("perlinColor(x, sin(y)) % 0")
	f.Add("1Ã—2")
	f.Fuzz(func(t *testing.T, s string) {
		e, err := picasso.Parse(s)
		if err != nil {
			return
		}
		r := e.String()
		g, err := picasso.Parse(r)
		if err != nil {
			t.Fatalf("%q parsed as %q, which fails: %v", s, r, err)
		}
		if g.String() != r {
			t.Errorf("%q parsed as %q, which reparses as %q", s, r, g.String())
		}
	})
}

func FuzzTokenize(f *testing.F) {
	f.Add("x")
	f.Add(`imageWrap("a.png", x, y)`)
	f.Add("[1,0,-1]")
	f.Fuzz(func(t *testing.T, s string) {
		toks, err := picasso.Tokenize(s)
		if err != nil {
			return
		}
		picasso.ToPostfix(toks)
	})
}
