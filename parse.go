package picasso

import (
	"strings"
)

// Expr = Assign
// Assign = name '=' Assign | Sum
// Sum = Sum ('+' | '-') Prod | Prod
// Prod = Prod ('*' | '/' | '%') Pow | Pow
// Pow = Pow '^' Unary | Unary
// Unary = '!' Unary | Term
// Term = num | color | string | name | '(' Expr ')' | Call
// Call = func '(' [ Expr { ',' Expr } ] ')'

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the sorted list of variable names the expression reads.
	names []string
	// binds is the sorted list of variable names the expression writes.
	binds []string
}

// Parse parses one line of source so it can be evaluated with a context. The
// given options are applied in order.
func Parse(src string, opts ...ParseOption) (*Expr, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, &EmptyExpressionError{Col: 1}
	}
	post, err := ToPostfix(toks)
	if err != nil {
		return nil, err
	}
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	n, err := p.build(post)
	if err != nil {
		return nil, err
	}
	ex := Expr{
		n:     n,
		names: setstrs(p.names),
		binds: setstrs(p.binds),
	}
	return &ex, nil
}

// MustParse is like Parse but panics if the expression cannot be parsed.
func MustParse(src string, opts ...ParseOption) *Expr {
	e, err := Parse(src, opts...)
	if err != nil {
		panic("picasso: MustParse(" + src + "): " + err.Error())
	}
	return e
}

// setstrs returns the sorted keys of a set.
func setstrs(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k)
	}
	sortstrs(names)
	return names
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// Vars returns the variable names the expression reads when evaluated, other
// than x and y.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// Binds returns the variable names the expression assigns when evaluated.
func (e *Expr) Binds() []string {
	return append(([]string)(nil), e.binds...)
}

// String creates a source representation of the parsed expression with every
// binary operation parenthesized. Parsing the result with the same options
// gives an equivalent expression.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b)
	return b.String()
}
