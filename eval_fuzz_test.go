package picasso_test

import (
	"testing"

	"github.com/zephyrtronium/picasso"
)

func FuzzEval(f *testing.F) {
	f.Add("x", 0.5, -0.5)
	f.Add("y", 1.0, 1.0)
	f.Add("log(x / y) ^ random()", 0.0, 0.0)
	f.Add("1Ã—2", 0.0, 0.0)
	f.Fuzz(func(t *testing.T, s string, x, y float64) {
		picasso.EvalString(s, x, y, picasso.Seed(1))
	})
}
