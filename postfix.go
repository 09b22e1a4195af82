package picasso

import (
	"strings"

	"github.com/edwingeng/deque"
)

// Postfix is a token sequence in postfix order. The last token is the top of
// the stack. Popping from the top yields each operator before its operands,
// and the tokens of an operator's right operand before those of its left.
type Postfix []Token

// String gives the tokens' source text separated by spaces.
func (p Postfix) String() string {
	var b strings.Builder
	for i, tok := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.source())
	}
	return b.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
}

// binds returns whether an operator p already on the stack must be output
// before pushing an operator with precedence than.
func (p operator) binds(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return !than.right
}

// binop gets the operator for a token kind. The second result is false if
// the kind is not a binary operator.
func binop(k TokenKind) (operator, bool) {
	switch k {
	case TokenAssign:
		return operator{1, true}, true
	case TokenPlus, TokenMinus:
		return operator{2, false}, true
	case TokenTimes, TokenDivide, TokenMod:
		return operator{3, false}, true
	case TokenPow:
		// Chains of ^ group from the left: x^y^z is (x^y)^z.
		return operator{4, false}, true
	default:
		return operator{}, false
	}
}

// notprec is the precedence of prefix !.
var notprec = operator{5, true}

// arity gives the number of arguments a function keyword takes.
func arity(k TokenKind) int {
	switch k {
	case TokenRandom:
		return 0
	case TokenPerlinBW, TokenPerlinColor:
		return 2
	case TokenImageWrap, TokenImageClip:
		return 3
	default:
		return 1
	}
}

// isOperand returns whether a token kind is a complete operand by itself.
func isOperand(k TokenKind) bool {
	switch k {
	case TokenNum, TokenColor, TokenString, TokenIdent:
		return true
	}
	return false
}

// group tracks an open parenthesis while converting.
type group struct {
	open Token
	// fn is the function keyword owning the argument list, or a token with
	// kind TokenNone for plain grouping.
	fn   Token
	args int
}

// ToPostfix reorders the tokens of one infix expression into postfix order
// using the shunting-yard algorithm. Parentheses and commas are consumed;
// the result contains only operands, operators, and function keywords.
func ToPostfix(toks []Token) (Postfix, error) {
	if len(toks) == 0 {
		return nil, &EmptyExpressionError{Col: 1}
	}
	out := make(Postfix, 0, len(toks))
	ops := deque.NewDeque()
	var groups []group
	// operand is whether the next token must start an operand.
	operand := true
	for i, tok := range toks {
		switch {
		case isOperand(tok.Kind):
			if !operand {
				return nil, &OperandError{Col: tok.Pos, Token: tok.source()}
			}
			out = append(out, tok)
			operand = false
		case tok.Kind == TokenNot:
			if !operand {
				return nil, &OperandError{Col: tok.Pos, Token: tok.Text}
			}
			ops.PushBack(tok)
		case tok.Kind.IsFunc():
			if !operand {
				return nil, &OperandError{Col: tok.Pos, Token: tok.Text}
			}
			if i+1 >= len(toks) || toks[i+1].Kind != TokenOpen {
				return nil, &CallError{Col: tok.Pos, Func: tok.Text, Len: -1}
			}
			ops.PushBack(tok)
		case tok.Kind == TokenOpen:
			if !operand {
				return nil, &OperandError{Col: tok.Pos, Token: tok.Text}
			}
			g := group{open: tok}
			if i > 0 && toks[i-1].Kind.IsFunc() && toks[i-1].Kind != TokenNot {
				g.fn = toks[i-1]
			}
			groups = append(groups, g)
			ops.PushBack(tok)
		case tok.Kind == TokenComma:
			if len(groups) == 0 || groups[len(groups)-1].fn.Kind == TokenNone {
				return nil, &SeparatorError{Col: tok.Pos, Sep: tok.Text}
			}
			if operand {
				return nil, &EmptyExpressionError{Col: tok.Pos, End: tok.Text}
			}
			out = unwind(out, ops)
			groups[len(groups)-1].args++
			operand = true
		case tok.Kind == TokenClose:
			if len(groups) == 0 {
				return nil, &BracketError{Col: tok.Pos, Right: tok.Text}
			}
			g := groups[len(groups)-1]
			groups = groups[:len(groups)-1]
			n := g.args
			if operand {
				// Only a call with no arguments may be empty.
				if g.fn.Kind == TokenNone || n > 0 {
					return nil, &EmptyExpressionError{Col: tok.Pos, End: tok.Text}
				}
			} else {
				n++
			}
			out = unwind(out, ops)
			ops.PopBack() // (
			if g.fn.Kind != TokenNone {
				if n != arity(g.fn.Kind) {
					return nil, &CallError{Col: g.fn.Pos, Func: g.fn.Text, Len: n}
				}
				out = append(out, ops.PopBack().(Token))
			}
			operand = false
		default:
			op, ok := binop(tok.Kind)
			if !ok {
				panic("picasso: unknown token: " + tok.String())
			}
			if operand {
				return nil, &OperandError{Col: tok.Pos, Token: tok.Text, Missing: true}
			}
			for !ops.Empty() {
				top := ops.Back().(Token)
				if top.Kind == TokenOpen || !precof(top).binds(op) {
					break
				}
				out = append(out, ops.PopBack().(Token))
			}
			ops.PushBack(tok)
			operand = true
		}
	}
	if operand {
		last := toks[len(toks)-1]
		return nil, &OperandError{Col: last.Pos, Token: last.source(), Missing: true}
	}
	if len(groups) > 0 {
		g := groups[len(groups)-1]
		return nil, &BracketError{Col: g.open.Pos, Left: g.open.Text}
	}
	for !ops.Empty() {
		out = append(out, ops.PopBack().(Token))
	}
	return out, nil
}

// unwind moves operators from ops to out until the innermost open
// parenthesis, which stays on ops.
func unwind(out Postfix, ops deque.Deque) Postfix {
	for !ops.Empty() {
		top := ops.Back().(Token)
		if top.Kind == TokenOpen {
			break
		}
		out = append(out, ops.PopBack().(Token))
	}
	return out
}

// precof gives the precedence of an operator token on the operator stack.
func precof(tok Token) operator {
	if op, ok := binop(tok.Kind); ok {
		return op
	}
	// Function keywords sit below their open parenthesis, so the only
	// prefix operator reachable here is !.
	return notprec
}
