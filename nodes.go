package picasso

import (
	"math"
	"strconv"
	"strings"
)

// node is a node in the expression tree. Nodes are never modified after the
// analyzer builds them.
type node struct {
	kind nodeKind

	// name is the variable name for variables and bindings, the image name
	// for image leaves and samples, and the source text of constants.
	name string
	// val is the value of a constant.
	val Color
	// img is the image of an image leaf or sample.
	img Image

	// left is the operand of unary nodes and bindings, the left operand of
	// binary nodes, and the column coordinate of image samples.
	left *node
	// right is the right operand of binary nodes and the row coordinate of
	// image samples.
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeX      // (x, x, x)
	nodeY      // (y, y, y)
	nodeConst  // val
	nodeVar    // lookup(name)
	nodeImage  // img sampled with clip addressing at (x, y)
	nodeRandom // uniform in [-1, 1) per channel

	nodeNot // -left
	nodeFloor
	nodeCeil
	nodeSin
	nodeCos
	nodeTan
	nodeAtan
	nodeAbs
	nodeClamp
	nodeExp
	nodeLog
	nodeWrap
	nodeRGBToYCrCb
	nodeYCrCbToRGB

	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right; zero divisor gives 0
	nodeMod // evaluate left, mod right; zero divisor gives left
	nodePow // evaluate left, exp by right; zero base gives 0
	nodePerlinBW
	nodePerlinColor

	nodeBind      // evaluate left, record under name
	nodeImageWrap // sample img at (left, right) with wrap addressing
	nodeImageClip // sample img at (left, right) with clip addressing

	nodeKinds
)

// funcNames are the keywords that format each function node.
var funcNames = [nodeKinds]string{
	nodeRandom:      "random",
	nodeFloor:       "floor",
	nodeCeil:        "ceil",
	nodeSin:         "sin",
	nodeCos:         "cos",
	nodeTan:         "tan",
	nodeAtan:        "atan",
	nodeAbs:         "abs",
	nodeClamp:       "clamp",
	nodeExp:         "exp",
	nodeLog:         "log",
	nodeWrap:        "wrap",
	nodeRGBToYCrCb:  "rgbToYCrCb",
	nodeYCrCbToRGB:  "yCrCbToRGB",
	nodePerlinBW:    "perlinBW",
	nodePerlinColor: "perlinColor",
	nodeImageWrap:   "imageWrap",
	nodeImageClip:   "imageClip",
}

// binopText are the operators that format each binary arithmetic node.
var binopText = [nodeKinds]string{
	nodeAdd: " + ",
	nodeSub: " - ",
	nodeMul: " * ",
	nodeDiv: " / ",
	nodeMod: " % ",
	nodePow: " ^ ",
}

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeX:
		return "X"
	case nodeY:
		return "Y"
	case nodeConst:
		return "Const"
	case nodeVar:
		return "Var"
	case nodeImage:
		return "Image"
	case nodeNot:
		return "Not"
	case nodeBind:
		return "Bind"
	}
	if 0 <= k && k < nodeKinds {
		if s := funcNames[k]; s != "" {
			return s
		}
		if s := binopText[k]; s != "" {
			return strings.TrimSpace(s)
		}
	}
	return "nodeKind(" + strconv.Itoa(int(k)) + ")"
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes the node as source text that parses to an equal tree. Binary
// operators are always parenthesized.
func (n *node) fmt(b *strings.Builder) {
	switch n.kind {
	case nodeX:
		b.WriteByte('x')
	case nodeY:
		b.WriteByte('y')
	case nodeConst, nodeVar:
		b.WriteString(n.name)
	case nodeImage:
		b.WriteString(`"` + n.name + `"`)
	case nodeRandom:
		b.WriteString("random()")
	case nodeNot:
		b.WriteString("!(")
		n.left.fmt(b)
		b.WriteByte(')')
	case nodeFloor, nodeCeil, nodeSin, nodeCos, nodeTan, nodeAtan, nodeAbs,
		nodeClamp, nodeExp, nodeLog, nodeWrap, nodeRGBToYCrCb, nodeYCrCbToRGB:
		b.WriteString(funcNames[n.kind])
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteByte(')')
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow:
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteString(binopText[n.kind])
		n.right.fmt(b)
		b.WriteByte(')')
	case nodePerlinBW, nodePerlinColor:
		b.WriteString(funcNames[n.kind])
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteString(", ")
		n.right.fmt(b)
		b.WriteByte(')')
	case nodeBind:
		b.WriteByte('(')
		b.WriteString(n.name)
		b.WriteString(" = ")
		n.left.fmt(b)
		b.WriteByte(')')
	case nodeImageWrap, nodeImageClip:
		b.WriteString(funcNames[n.kind])
		b.WriteString(`("` + n.name + `", `)
		n.left.fmt(b)
		b.WriteString(", ")
		n.right.fmt(b)
		b.WriteByte(')')
	default:
		panic("picasso: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// logEpsilon replaces a zero coordinate in the operand of log.
const logEpsilon = 1e-9

// eval computes the node's color at (x, y). Binary nodes evaluate their left
// operand first, so a binding on the left is visible on the right.
func (n *node) eval(ctx *Context, x, y float64) Color {
	switch n.kind {
	case nodeX:
		return Gray(x)
	case nodeY:
		return Gray(y)
	case nodeConst:
		return n.val
	case nodeVar:
		v, ok := ctx.names[n.name]
		if !ok {
			ctx.fail(&NameError{Name: n.name})
		}
		return v
	case nodeImage:
		return sampleClip(n.img, x, y)
	case nodeRandom:
		return ctx.random()

	case nodeNot:
		return n.left.eval(ctx, x, y).Map(neg)
	case nodeFloor:
		return n.left.eval(ctx, x, y).Map(math.Floor)
	case nodeCeil:
		return n.left.eval(ctx, x, y).Map(math.Ceil)
	case nodeSin:
		return n.left.eval(ctx, x, y).Map(math.Sin)
	case nodeCos:
		return n.left.eval(ctx, x, y).Map(math.Cos)
	case nodeTan:
		return n.left.eval(ctx, x, y).Map(math.Tan)
	case nodeAtan:
		return n.left.eval(ctx, x, y).Map(math.Atan)
	case nodeAbs:
		return n.left.eval(ctx, x, y).Map(math.Abs)
	case nodeClamp:
		return n.left.eval(ctx, x, y).Map(clamp)
	case nodeExp:
		return n.left.eval(ctx, x, y).Map(math.Exp)
	case nodeLog:
		if x == 0 {
			x = logEpsilon
		}
		if y == 0 {
			y = logEpsilon
		}
		return n.left.eval(ctx, x, y).Map(logabs)
	case nodeWrap:
		return n.left.eval(ctx, x, y).Map(wrap)
	case nodeRGBToYCrCb:
		return rgbToYCrCb(n.left.eval(ctx, x, y))
	case nodeYCrCbToRGB:
		return yCrCbToRGB(n.left.eval(ctx, x, y))

	case nodeAdd:
		return n.left.eval(ctx, x, y).Zip(n.right.eval(ctx, x, y), add)
	case nodeSub:
		return n.left.eval(ctx, x, y).Zip(n.right.eval(ctx, x, y), sub)
	case nodeMul:
		return n.left.eval(ctx, x, y).Zip(n.right.eval(ctx, x, y), mul)
	case nodeDiv:
		return n.left.eval(ctx, x, y).Zip(n.right.eval(ctx, x, y), div)
	case nodeMod:
		return n.left.eval(ctx, x, y).Zip(n.right.eval(ctx, x, y), mod)
	case nodePow:
		return n.left.eval(ctx, x, y).Zip(n.right.eval(ctx, x, y), pow)
	case nodePerlinBW:
		l, r := n.left.eval(ctx, x, y), n.right.eval(ctx, x, y)
		return Gray(Noise(l.R+r.R, l.G+r.G, l.B+r.B))
	case nodePerlinColor:
		l, r := n.left.eval(ctx, x, y), n.right.eval(ctx, x, y)
		return Color{
			R: Noise(l.R+0.3, r.R+0.3, 0),
			G: Noise(l.G-0.8, r.G-0.8, 0),
			B: Noise(l.B+0.1, r.B+0.1, 0),
		}

	case nodeBind:
		v := n.left.eval(ctx, x, y)
		ctx.bind(n.name, v)
		return v
	case nodeImageWrap:
		return sampleWrap(n.img, n.left.eval(ctx, x, y).R, n.right.eval(ctx, x, y).R)
	case nodeImageClip:
		return sampleClip(n.img, n.left.eval(ctx, x, y).R, n.right.eval(ctx, x, y).R)
	default:
		panic("picasso: invalid node kind " + n.kind.String())
	}
}

func neg(a float64) float64    { return -a }
func add(a, b float64) float64 { return a + b }
func sub(a, b float64) float64 { return a - b }
func mul(a, b float64) float64 { return a * b }

func div(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// mod is the truncated remainder, with sign following the dividend.
func mod(a, b float64) float64 {
	if b == 0 {
		return a
	}
	return math.Mod(a, b)
}

// pow is a^b, except that a zero base gives 0 and a negative base with a
// non-integer exponent gives -(|a|^b).
func pow(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	if a < 0 && b != math.Trunc(b) {
		return -math.Pow(-a, b)
	}
	return math.Pow(a, b)
}

func clamp(v float64) float64 {
	switch {
	case v < ColorMin:
		return ColorMin
	case v > ColorMax:
		return ColorMax
	default:
		return v
	}
}

func logabs(v float64) float64 {
	if v == 0 {
		return 0
	}
	return math.Log(math.Abs(v))
}

// wrap maps v into [-1, 1) with period 2. Non-finite values map to 0.
func wrap(v float64) float64 {
	m := math.Mod(v+3, 2)
	if m < 0 {
		m += 2
	}
	if m >= 2 {
		// A tiny negative remainder rounds up to 2 when shifted.
		m = 0
	}
	if math.IsNaN(m) {
		return 0
	}
	return m - 1
}

func rgbToYCrCb(c Color) Color {
	return Color{
		R: c.R*0.2989 + c.G*0.5866 + c.B*0.1145,
		G: c.R*-0.1687 + c.G*-0.3312 + c.B*0.5,
		B: c.R*0.5 + c.G*-0.4183 + c.B*-0.0816,
	}
}

func yCrCbToRGB(c Color) Color {
	return Color{
		R: c.R + c.B*1.4022,
		G: c.R + c.G*-0.3456 + c.B*-0.7145,
		B: c.R + c.G*1.7710,
	}
}
