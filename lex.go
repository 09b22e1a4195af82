package picasso

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// Token is a lexical token of an expression. Tokens are produced by Tokenize
// and consumed by ToPostfix; they are never modified.
type Token struct {
	// Kind is the kind of the token.
	Kind TokenKind
	// Text is the source text of the token. For string literals it is the
	// contents without the quotes.
	Text string
	// Num is the value of a number literal.
	Num float64
	// Color is the value of a color literal.
	Color Color
	// Pos is the 1-based rune column at which the token starts.
	Pos int
}

// Equal returns whether two tokens have the same kind and payload,
// regardless of position.
func (t Token) Equal(u Token) bool {
	return t.Kind == u.Kind && t.Text == u.Text && t.Num == u.Num && t.Color == u.Color
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// source gives text which lexes back to an equal token.
func (t Token) source() string {
	switch t.Kind {
	case TokenString:
		return `"` + t.Text + `"`
	default:
		return t.Text
	}
}

// TokenKind identifies the kind of a token. Every operator and function
// keyword has its own kind.
type TokenKind int8

const (
	TokenNone TokenKind = iota

	TokenNum    // number literal
	TokenColor  // [r, g, b] literal
	TokenString // "name" literal
	TokenIdent  // variable name

	TokenPlus   // +
	TokenMinus  // -
	TokenTimes  // *
	TokenDivide // /
	TokenMod    // %
	TokenPow    // ^
	TokenAssign // =
	TokenOpen   // (
	TokenClose  // )
	TokenComma  // ,

	TokenNot // !
	TokenFloor
	TokenCeil
	TokenSin
	TokenCos
	TokenTan
	TokenAtan
	TokenAbs
	TokenClamp
	TokenExp
	TokenLog
	TokenWrap
	TokenRGBToYCrCb
	TokenYCrCbToRGB
	TokenPerlinBW
	TokenPerlinColor
	TokenImageWrap
	TokenImageClip
	TokenRandom

	tokenKinds
)

var kindNames = [tokenKinds]string{
	TokenNone:        "None",
	TokenNum:         "Num",
	TokenColor:       "Color",
	TokenString:      "String",
	TokenIdent:       "Ident",
	TokenPlus:        "Plus",
	TokenMinus:       "Minus",
	TokenTimes:       "Times",
	TokenDivide:      "Divide",
	TokenMod:         "Mod",
	TokenPow:         "Pow",
	TokenAssign:      "Assign",
	TokenOpen:        "Open",
	TokenClose:       "Close",
	TokenComma:       "Comma",
	TokenNot:         "Not",
	TokenFloor:       "Floor",
	TokenCeil:        "Ceil",
	TokenSin:         "Sin",
	TokenCos:         "Cos",
	TokenTan:         "Tan",
	TokenAtan:        "Atan",
	TokenAbs:         "Abs",
	TokenClamp:       "Clamp",
	TokenExp:         "Exp",
	TokenLog:         "Log",
	TokenWrap:        "Wrap",
	TokenRGBToYCrCb:  "RGBToYCrCb",
	TokenYCrCbToRGB:  "YCrCbToRGB",
	TokenPerlinBW:    "PerlinBW",
	TokenPerlinColor: "PerlinColor",
	TokenImageWrap:   "ImageWrap",
	TokenImageClip:   "ImageClip",
	TokenRandom:      "Random",
}

func (k TokenKind) String() string {
	if k < 0 || k >= tokenKinds {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// IsFunc returns whether k is a function keyword, including !.
func (k TokenKind) IsFunc() bool {
	return TokenNot <= k && k < tokenKinds
}

// keywords maps reserved identifiers to their function kinds. The colorspace
// and noise functions accept a capitalized first letter as well.
var keywords = map[string]TokenKind{
	"floor":       TokenFloor,
	"ceil":        TokenCeil,
	"sin":         TokenSin,
	"cos":         TokenCos,
	"tan":         TokenTan,
	"atan":        TokenAtan,
	"abs":         TokenAbs,
	"clamp":       TokenClamp,
	"exp":         TokenExp,
	"log":         TokenLog,
	"wrap":        TokenWrap,
	"rgbToYCrCb":  TokenRGBToYCrCb,
	"RgbToYCrCb":  TokenRGBToYCrCb,
	"yCrCbToRGB":  TokenYCrCbToRGB,
	"YCrCbToRGB":  TokenYCrCbToRGB,
	"perlinBW":    TokenPerlinBW,
	"PerlinBW":    TokenPerlinBW,
	"perlinColor": TokenPerlinColor,
	"PerlinColor": TokenPerlinColor,
	"imageWrap":   TokenImageWrap,
	"imageClip":   TokenImageClip,
	"random":      TokenRandom,
}

// Operators contains the runes which lex directly to operator tokens.
const Operators = "+-*/%^!="

var operkinds = [...]TokenKind{TokenPlus, TokenMinus, TokenTimes, TokenDivide, TokenMod, TokenPow, TokenNot, TokenAssign}

// ColorMin and ColorMax bound each channel of a color literal. They are also
// the range of clamp.
const (
	ColorMin = -1.0
	ColorMax = 1.0
)

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	// start is the column of the token being scanned.
	start int
	// prev is the kind of the last token scanned, used to decide whether a
	// sign belongs to a number.
	prev TokenKind
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// Tokenize converts one line of source into tokens. Comments and whitespace
// are discarded, so the result is empty for a blank or comment-only line.
func Tokenize(src string) ([]Token, error) {
	scan := lex(strings.NewReader(src))
	var toks []Token
	for {
		tok, err := scan.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return toks, nil
			}
			return nil, err
		}
		toks = append(toks, tok)
	}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// peekRune returns the next rune without consuming it. The result is -1 at
// the end of the input.
func (l *lexer) peekRune() rune {
	r, sz, err := l.src.ReadRune()
	if err != nil || sz == 0 {
		return -1
	}
	l.src.UnreadRune()
	return r
}

// operandNext reports whether the previous token leaves the lexer where an
// operand is expected.
func (l *lexer) operandNext() bool {
	switch l.prev {
	case TokenNum, TokenColor, TokenString, TokenIdent, TokenClose:
		return false
	}
	return true
}

// next scans the next token from the input. At the end of the input, the
// result is io.EOF.
func (l *lexer) next() (Token, error) {
	tok, err := l.scan()
	if err == nil {
		l.prev = tok.Kind
	}
	return tok, err
}

func (l *lexer) scan() (Token, error) {
	defer l.buf.Reset()
	tok := Token{Pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			return tok, err
		}
		l.start = tok.Pos
		switch {
		case r == ' ', r == '\t', r == '\r', r == '\n', r == '\v', r == '\f':
			tok.Pos++
			continue
		case r == '/' && l.peekRune() == '/':
			// Comment to end of line.
			for r != '\n' {
				if r, err = l.readRune(); err != nil {
					return tok, err
				}
			}
			tok.Pos = l.rune
			continue
		case isDigit(r), r == '.':
			l.unreadRune()
			v, err := l.scanNum(0)
			if err != nil {
				return tok, err
			}
			tok.Text, tok.Num, tok.Kind = l.buf.String(), v, TokenNum
			return tok, nil
		case (r == '-' || r == '+') && l.operandNext():
			if p := l.peekRune(); isDigit(p) || p == '.' {
				l.buf.WriteRune(r)
				v, err := l.scanNum(0)
				if err != nil {
					return tok, err
				}
				tok.Text, tok.Num, tok.Kind = l.buf.String(), v, TokenNum
				return tok, nil
			}
			return l.oper(tok, r), nil
		case isLetter(r):
			l.unreadRune()
			l.scanIdent()
			tok.Text = l.buf.String()
			tok.Kind = TokenIdent
			if k, ok := keywords[tok.Text]; ok {
				tok.Kind = k
			}
			return tok, nil
		case r == '[':
			l.buf.WriteRune(r)
			c, err := l.scanColor()
			if err != nil {
				return tok, err
			}
			tok.Text, tok.Color, tok.Kind = l.buf.String(), c, TokenColor
			return tok, nil
		case r == '"':
			if err := l.scanString(); err != nil {
				return tok, err
			}
			tok.Text, tok.Kind = l.buf.String(), TokenString
			return tok, nil
		case r == '(':
			tok.Text, tok.Kind = "(", TokenOpen
			return tok, nil
		case r == ')':
			tok.Text, tok.Kind = ")", TokenClose
			return tok, nil
		case r == ',':
			tok.Text, tok.Kind = ",", TokenComma
			return tok, nil
		default:
			if strings.ContainsRune(Operators, r) {
				return l.oper(tok, r), nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

func (l *lexer) oper(tok Token, r rune) Token {
	k := strings.IndexRune(Operators, r)
	tok.Text = string(r)
	tok.Kind = operkinds[k]
	return tok
}

// scanNum scans the digits of a number literal and returns its value. The
// literal's text, including any sign, begins at start in the buffer. The
// accepted form is d+(.d+)? or .d+.
func (l *lexer) scanNum(start int) (float64, error) {
	var dig, dot, frac bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		switch {
		case isDigit(r):
			l.buf.WriteRune(r)
			if dot {
				frac = true
			} else {
				dig = true
			}
			continue
		case r == '.':
			l.buf.WriteRune(r)
			if dot {
				return 0, l.error("number")
			}
			dot = true
			continue
		case isLetter(r), r == '_':
			l.buf.WriteRune(r)
			return 0, l.error("number")
		}
		l.unreadRune()
		break
	}
	if dot && !frac || !dig && !frac {
		return 0, l.error("number")
	}
	v, err := strconv.ParseFloat(l.buf.String()[start:], 64)
	if err != nil {
		return 0, l.error("number")
	}
	return v, nil
}

// scanColor scans the remainder of a color literal after its open bracket.
func (l *lexer) scanColor() (Color, error) {
	var ch [3]float64
	for i := range ch {
		l.skipSpace()
		start := l.buf.Len()
		r, err := l.readRune()
		if err != nil {
			return Color{}, l.error("color")
		}
		switch {
		case r == '-' || r == '+':
			l.buf.WriteRune(r)
		case isDigit(r), r == '.':
			l.unreadRune()
		default:
			l.buf.WriteRune(r)
			return Color{}, l.error("color")
		}
		v, err := l.scanNum(start)
		if err != nil || v < ColorMin || v > ColorMax {
			return Color{}, l.error("color")
		}
		ch[i] = v
		l.skipSpace()
		r, err = l.readRune()
		if err != nil {
			return Color{}, l.error("color")
		}
		want := ','
		if i == len(ch)-1 {
			want = ']'
		}
		l.buf.WriteRune(r)
		if r != want {
			return Color{}, l.error("color")
		}
		if r == ',' {
			l.buf.WriteRune(' ')
		}
	}
	return Color{ch[0], ch[1], ch[2]}, nil
}

// scanString scans a string literal after its open quote. The buffer receives
// only the contents.
func (l *lexer) scanString() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return l.error("string")
			}
			return err
		}
		switch r {
		case '"':
			return nil
		case '\n':
			return l.error("string")
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) scanIdent() {
	for {
		r, err := l.readRune()
		if err != nil {
			// next unreads the rune that decides ident scanning before
			// calling scanIdent, so we have scanned at least one rune.
			return
		}
		if !isLetter(r) {
			l.unreadRune()
			return
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) skipSpace() {
	for {
		switch l.peekRune() {
		case ' ', '\t', '\r', '\v', '\f':
			l.readRune()
		default:
			return
		}
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.start,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "color", "string", or the empty string (if a token kind hadn't been
	// decided).
	Kind string
	// Col is the 1-based rune column at which the invalid token starts.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
