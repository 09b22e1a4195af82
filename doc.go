// Package picasso implements a small expression language for generating
// images. An expression is a function of the pixel coordinates x and y, each
// in [-1, 1], whose value is a Color: three real channels where -1 is dark and
// 1 is bright.
//
// Expressions use the usual infix arithmetic operators +, -, *, /, % and ^,
// prefix negation !, and calls to a fixed set of functions like sin, wrap, and
// perlinColor. "a = expr" binds a variable for later evaluations in the same
// Context. Color literals are written [r, g, b], and a quoted string names an
// image that can be sampled with imageWrap or imageClip when the expression is
// parsed with WithImages.
//
// Parsing proceeds in three stages: Tokenize splits the source into tokens,
// ToPostfix reorders them by precedence, and Parse builds an evaluation tree.
// Each stage reports invalid input as an InputError with a column.
//
// A parsed Expr is immutable and safe to evaluate from many goroutines, as
// long as each goroutine uses its own Context. Use Context.Clone to share
// variable definitions across goroutines.
package picasso
