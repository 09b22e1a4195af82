package picasso

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		src    string
		tokens []Token
	}{
		// spaces and comments
		{"", nil},
		{" \t \r\n ", nil},
		{"// just a comment", nil},
		{"  // indented comment", nil},
		{"x // trailing", []Token{{Kind: TokenIdent, Text: "x", Pos: 1}}},
		// numbers
		{"0", []Token{{Kind: TokenNum, Text: "0", Pos: 1}}},
		{"9876543210", []Token{{Kind: TokenNum, Text: "9876543210", Num: 9876543210, Pos: 1}}},
		{"1.25", []Token{{Kind: TokenNum, Text: "1.25", Num: 1.25, Pos: 1}}},
		{".5", []Token{{Kind: TokenNum, Text: ".5", Num: 0.5, Pos: 1}}},
		{"-1", []Token{{Kind: TokenNum, Text: "-1", Num: -1, Pos: 1}}},
		{"+2", []Token{{Kind: TokenNum, Text: "+2", Num: 2, Pos: 1}}},
		{"(-0.5)", []Token{
			{Kind: TokenOpen, Text: "(", Pos: 1},
			{Kind: TokenNum, Text: "-0.5", Num: -0.5, Pos: 2},
			{Kind: TokenClose, Text: ")", Pos: 6},
		}},
		{"x-1", []Token{
			{Kind: TokenIdent, Text: "x", Pos: 1},
			{Kind: TokenMinus, Text: "-", Pos: 2},
			{Kind: TokenNum, Text: "1", Num: 1, Pos: 3},
		}},
		{"x*-1", []Token{
			{Kind: TokenIdent, Text: "x", Pos: 1},
			{Kind: TokenTimes, Text: "*", Pos: 2},
			{Kind: TokenNum, Text: "-1", Num: -1, Pos: 3},
		}},
		{"1 0", []Token{
			{Kind: TokenNum, Text: "1", Num: 1, Pos: 1},
			{Kind: TokenNum, Text: "0", Pos: 3},
		}},
		// colors
		{"[1,-1, 1]", []Token{{Kind: TokenColor, Text: "[1, -1, 1]", Color: Color{1, -1, 1}, Pos: 1}}},
		{"[ 0.5 , .25,-1 ]", []Token{{Kind: TokenColor, Text: "[0.5, .25, -1]", Color: Color{0.5, 0.25, -1}, Pos: 1}}},
		// strings
		{`"vortex.jpg"`, []Token{{Kind: TokenString, Text: "vortex.jpg", Pos: 1}}},
		{`"has space"`, []Token{{Kind: TokenString, Text: "has space", Pos: 1}}},
		// identifiers and keywords
		{"image", []Token{{Kind: TokenIdent, Text: "image", Pos: 1}}},
		{"sine", []Token{{Kind: TokenIdent, Text: "sine", Pos: 1}}},
		{"Sin", []Token{{Kind: TokenIdent, Text: "Sin", Pos: 1}}},
		{"sin", []Token{{Kind: TokenSin, Text: "sin", Pos: 1}}},
		{"PerlinBW", []Token{{Kind: TokenPerlinBW, Text: "PerlinBW", Pos: 1}}},
		{"perlinBW", []Token{{Kind: TokenPerlinBW, Text: "perlinBW", Pos: 1}}},
		{"RgbToYCrCb", []Token{{Kind: TokenRGBToYCrCb, Text: "RgbToYCrCb", Pos: 1}}},
		{"yCrCbToRGB", []Token{{Kind: TokenYCrCbToRGB, Text: "yCrCbToRGB", Pos: 1}}},
		{"random()", []Token{
			{Kind: TokenRandom, Text: "random", Pos: 1},
			{Kind: TokenOpen, Text: "(", Pos: 7},
			{Kind: TokenClose, Text: ")", Pos: 8},
		}},
		// operators
		{"!x", []Token{
			{Kind: TokenNot, Text: "!", Pos: 1},
			{Kind: TokenIdent, Text: "x", Pos: 2},
		}},
		{"a = x + y", []Token{
			{Kind: TokenIdent, Text: "a", Pos: 1},
			{Kind: TokenAssign, Text: "=", Pos: 3},
			{Kind: TokenIdent, Text: "x", Pos: 5},
			{Kind: TokenPlus, Text: "+", Pos: 7},
			{Kind: TokenIdent, Text: "y", Pos: 9},
		}},
		{"x%y^x/y", []Token{
			{Kind: TokenIdent, Text: "x", Pos: 1},
			{Kind: TokenMod, Text: "%", Pos: 2},
			{Kind: TokenIdent, Text: "y", Pos: 3},
			{Kind: TokenPow, Text: "^", Pos: 4},
			{Kind: TokenIdent, Text: "x", Pos: 5},
			{Kind: TokenDivide, Text: "/", Pos: 6},
			{Kind: TokenIdent, Text: "y", Pos: 7},
		}},
		{`imageWrap("vortex.jpg",x+x,y)`, []Token{
			{Kind: TokenImageWrap, Text: "imageWrap", Pos: 1},
			{Kind: TokenOpen, Text: "(", Pos: 10},
			{Kind: TokenString, Text: "vortex.jpg", Pos: 11},
			{Kind: TokenComma, Text: ",", Pos: 23},
			{Kind: TokenIdent, Text: "x", Pos: 24},
			{Kind: TokenPlus, Text: "+", Pos: 25},
			{Kind: TokenIdent, Text: "x", Pos: 26},
			{Kind: TokenComma, Text: ",", Pos: 27},
			{Kind: TokenIdent, Text: "y", Pos: 28},
			{Kind: TokenClose, Text: ")", Pos: 29},
		}},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			toks, err := Tokenize(c.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(toks) != len(c.tokens) {
				t.Fatalf("wrong number of tokens: want %v, got %v", c.tokens, toks)
			}
			for i, want := range c.tokens {
				got := toks[i]
				if want.Kind == TokenNum && want.Num == 0 && want.Text != "0" {
					t.Fatalf("bad test: number %q needs a value", want.Text)
				}
				if !got.Equal(want) || got.Pos != want.Pos {
					t.Errorf("token %d: want %v (%v), got %v (%v)", i, want, want.Num, got, got.Num)
				}
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		src  string
		kind string
		col  int
	}{
		{"$", "", 1},
		{"x $", "", 3},
		{"1.", "number", 1},
		{"1.2.3", "number", 1},
		{"1a", "number", 1},
		{"x + 1a", "number", 5},
		{".", "number", 1},
		{"- .", "number", 3},
		{"x // c\n  $", "", 10},
		{"[1, 1.0001, 1]", "color", 1},
		{"x * [1, 1]", "color", 5},
		{"[1, 1]", "color", 0},
		{"[1, 1, 1, 1]", "color", 0},
		{"[x, 1, 1]", "color", 0},
		{"[-2, 0, 0]", "color", 0},
		{"[1, 0, 0", "color", 0},
		{`"unterminated`, "string", 1},
		{`x + "open`, "string", 5},
		{`"broken` + "\n" + `line"`, "string", 0},
		{"x_y", "", 0},
		{"#", "", 0},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			toks, err := Tokenize(c.src)
			if err == nil {
				t.Fatalf("no error; got %v", toks)
			}
			if toks != nil {
				t.Errorf("got tokens %v along with error", toks)
			}
			var lerr *LexError
			if !errors.As(err, &lerr) {
				t.Fatalf("wrong error type %T: %v", err, err)
			}
			if lerr.Kind != c.kind {
				t.Errorf("wrong kind: want %q, got %q", c.kind, lerr.Kind)
			}
			if c.col != 0 && lerr.Pos() != c.col {
				t.Errorf("wrong position: want %d, got %d", c.col, lerr.Pos())
			}
		})
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	cases := []string{
		"x + y",
		"x-1",
		"x*-1",
		"a = [1,-1, 1] % .5",
		`imageWrap("vortex.jpg",x+x,y)`,
		`"vortex.jpg"`,
		"!sin(x)^2 // comment",
		"perlinColor(x, y) / random()",
		"-.25 + (y - -3)",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			first, err := Tokenize(src)
			if err != nil {
				t.Fatal(err)
			}
			texts := make([]string, len(first))
			for i, tok := range first {
				texts[i] = tok.source()
			}
			second, err := Tokenize(strings.Join(texts, " "))
			if err != nil {
				t.Fatalf("relexing %q: %v", strings.Join(texts, " "), err)
			}
			if len(first) != len(second) {
				t.Fatalf("different tokens: %v then %v", first, second)
			}
			for i := range first {
				if !first[i].Equal(second[i]) {
					t.Errorf("token %d: %v then %v", i, first[i], second[i])
				}
			}
		})
	}
}

func TestKeywordsAreFuncs(t *testing.T) {
	for name, k := range keywords {
		if !k.IsFunc() {
			t.Errorf("keyword %s has non-function kind %v", name, k)
		}
	}
	for k := TokenKind(0); k < tokenKinds; k++ {
		if kindNames[k] == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestOperatorKinds(t *testing.T) {
	if len(Operators) != len(operkinds) {
		t.Fatalf("%d operators but %d kinds", len(Operators), len(operkinds))
	}
	for i, r := range Operators {
		toks, err := Tokenize("x" + string(r) + "y")
		if err != nil {
			t.Errorf("lexing %c: %v", r, err)
			continue
		}
		if len(toks) != 3 || toks[1].Kind != operkinds[i] {
			t.Errorf("lexing %c: got %v", r, toks)
		}
	}
}
