package picasso

// cursor consumes a Postfix from the top. The token buffer is never modified;
// only the index moves.
type cursor struct {
	toks Postfix
	// top is the number of unconsumed tokens. toks[top-1] is the next token.
	top int
}

func newCursor(p Postfix) *cursor {
	return &cursor{toks: p, top: len(p)}
}

func (c *cursor) empty() bool {
	return c.top == 0
}

func (c *cursor) peek() Token {
	return c.toks[c.top-1]
}

func (c *cursor) pop() Token {
	c.top--
	return c.toks[c.top]
}

// analyzer builds the subtree whose root token is at the top of the cursor,
// consuming exactly the tokens the subtree owns.
type analyzer func(p *parsectx, c *cursor) (*node, error)

// analyzers maps each token kind that can appear in a Postfix to its
// analyzer. Adding a construct means adding one entry.
var analyzers [tokenKinds]analyzer

func init() {
	// Assigned in init because analyzers refer back to the table.
	analyzers = [tokenKinds]analyzer{
		TokenNum:    numLeaf,
		TokenColor:  colorLeaf,
		TokenString: imageLeaf,
		TokenIdent:  identLeaf,

		TokenPlus:   binary(nodeAdd),
		TokenMinus:  binary(nodeSub),
		TokenTimes:  binary(nodeMul),
		TokenDivide: binary(nodeDiv),
		TokenMod:    binary(nodeMod),
		TokenPow:    binary(nodePow),
		TokenAssign: binding,

		TokenNot:        unary(nodeNot),
		TokenFloor:      unary(nodeFloor),
		TokenCeil:       unary(nodeCeil),
		TokenSin:        unary(nodeSin),
		TokenCos:        unary(nodeCos),
		TokenTan:        unary(nodeTan),
		TokenAtan:       unary(nodeAtan),
		TokenAbs:        unary(nodeAbs),
		TokenClamp:      unary(nodeClamp),
		TokenExp:        unary(nodeExp),
		TokenLog:        unary(nodeLog),
		TokenWrap:       unary(nodeWrap),
		TokenRGBToYCrCb: unary(nodeRGBToYCrCb),
		TokenYCrCbToRGB: unary(nodeYCrCbToRGB),

		TokenPerlinBW:    binary(nodePerlinBW),
		TokenPerlinColor: binary(nodePerlinColor),
		TokenImageWrap:   sample(nodeImageWrap),
		TokenImageClip:   sample(nodeImageClip),
		TokenRandom:      random,
	}
}

// build consumes an entire Postfix and returns the root of its tree.
func (p *parsectx) build(post Postfix) (*node, error) {
	if len(post) == 0 {
		return nil, &EmptyExpressionError{Col: 1}
	}
	c := newCursor(post)
	n, err := p.analyze(c, post[len(post)-1])
	if err != nil {
		return nil, err
	}
	if !c.empty() {
		tok := c.peek()
		return nil, &TrailingError{Col: tok.Pos, Text: tok.source()}
	}
	return n, nil
}

// analyze builds one operand of owner.
func (p *parsectx) analyze(c *cursor, owner Token) (*node, error) {
	if c.empty() {
		return nil, &OperandError{Col: owner.Pos, Token: owner.source(), Missing: true}
	}
	tok := c.peek()
	if tok.Kind < 0 || tok.Kind >= tokenKinds || analyzers[tok.Kind] == nil {
		panic("picasso: no analyzer for token " + tok.String())
	}
	return analyzers[tok.Kind](p, c)
}

func numLeaf(p *parsectx, c *cursor) (*node, error) {
	tok := c.pop()
	return &node{kind: nodeConst, name: tok.Text, val: Gray(tok.Num)}, nil
}

func colorLeaf(p *parsectx, c *cursor) (*node, error) {
	tok := c.pop()
	return &node{kind: nodeConst, name: tok.Text, val: tok.Color}, nil
}

func identLeaf(p *parsectx, c *cursor) (*node, error) {
	tok := c.pop()
	switch tok.Text {
	case "x":
		return &node{kind: nodeX}, nil
	case "y":
		return &node{kind: nodeY}, nil
	}
	if p.names == nil {
		p.names = make(map[string]bool)
	}
	p.names[tok.Text] = true
	return &node{kind: nodeVar, name: tok.Text}, nil
}

func imageLeaf(p *parsectx, c *cursor) (*node, error) {
	tok := c.pop()
	img, err := p.image(tok)
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeImage, name: tok.Text, img: img}, nil
}

func random(p *parsectx, c *cursor) (*node, error) {
	c.pop()
	return &node{kind: nodeRandom}, nil
}

func unary(kind nodeKind) analyzer {
	return func(p *parsectx, c *cursor) (*node, error) {
		fn := c.pop()
		l, err := p.analyze(c, fn)
		if err != nil {
			return nil, err
		}
		return &node{kind: kind, left: l}, nil
	}
}

// binary builds a two-operand node. The right operand is nearer the top, so
// it is built first.
func binary(kind nodeKind) analyzer {
	return func(p *parsectx, c *cursor) (*node, error) {
		op := c.pop()
		r, err := p.analyze(c, op)
		if err != nil {
			return nil, err
		}
		l, err := p.analyze(c, op)
		if err != nil {
			return nil, err
		}
		return &node{kind: kind, left: l, right: r}, nil
	}
}

func binding(p *parsectx, c *cursor) (*node, error) {
	op := c.pop()
	v, err := p.analyze(c, op)
	if err != nil {
		return nil, err
	}
	if c.empty() {
		return nil, &OperandError{Col: op.Pos, Token: op.Text, Missing: true}
	}
	if tok := c.peek(); tok.Kind != TokenIdent || tok.Text == "x" || tok.Text == "y" {
		// Build the target anyway to report it.
		t, err := p.analyze(c, op)
		if err != nil {
			return nil, err
		}
		return nil, &BindError{Col: op.Pos, Target: t.String()}
	}
	name := c.pop().Text
	if p.binds == nil {
		p.binds = make(map[string]bool)
	}
	p.binds[name] = true
	return &node{kind: nodeBind, name: name, left: v}, nil
}

// sample builds an image sampling call. The image name must be a string
// literal in the first argument.
func sample(kind nodeKind) analyzer {
	return func(p *parsectx, c *cursor) (*node, error) {
		fn := c.pop()
		row, err := p.analyze(c, fn)
		if err != nil {
			return nil, err
		}
		col, err := p.analyze(c, fn)
		if err != nil {
			return nil, err
		}
		if c.empty() {
			return nil, &OperandError{Col: fn.Pos, Token: fn.Text, Missing: true}
		}
		ref := c.peek()
		if ref.Kind != TokenString {
			return nil, &ArgumentError{Col: ref.Pos, Func: fn.Text, Arg: 1, Want: "an image name"}
		}
		c.pop()
		img, err := p.image(ref)
		if err != nil {
			return nil, err
		}
		return &node{kind: kind, name: ref.Text, img: img, left: col, right: row}, nil
	}
}

// image resolves the image named by a string token.
func (p *parsectx) image(tok Token) (Image, error) {
	if p.images == nil {
		return nil, &ResourceError{Col: tok.Pos, Name: tok.Text, Err: ErrNoImages}
	}
	img, err := p.images.Load(tok.Text)
	if err != nil {
		return nil, &ResourceError{Col: tok.Pos, Name: tok.Text, Err: err}
	}
	if img == nil || img.Width() <= 0 || img.Height() <= 0 {
		return nil, &ResourceError{Col: tok.Pos, Name: tok.Text, Err: ErrEmptyImage}
	}
	return img, nil
}
