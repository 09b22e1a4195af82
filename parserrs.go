package picasso

import "strconv"

// OperandError is an error indicating an operator or function that is missing
// an operand, or an operand in a position where an operator was expected. It
// implements InputError.
type OperandError struct {
	// Col is the position of the token.
	Col int
	// Token is the text of the token.
	Token string
	// Missing is true if Token is an operator that lacks an operand and false
	// if Token is an operand that follows another operand.
	Missing bool
}

func (err *OperandError) Error() string {
	if err.Missing {
		return errpos(err.Col, "operator "+strconv.Quote(err.Token)+" is missing an operand")
	}
	return errpos(err.Col, "unexpected operand "+strconv.Quote(err.Token))
}

func (err *OperandError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched parentheses in the input. It
// implements InputError.
type BracketError struct {
	// Col is the position of the unmatched parenthesis.
	Col int
	// Left is the opening parenthesis, or empty if there is none.
	Left string
	// Right is the closing parenthesis, or empty if there is none.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating a comma outside a function argument
// list. It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments, or a function keyword not followed by an argument list. It
// implements InputError.
type CallError struct {
	// Col is the position of the function keyword.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments the call supplied, or -1 if the keyword
	// was not followed by an argument list.
	Len int
}

func (err *CallError) Error() string {
	if err.Len < 0 {
		return errpos(err.Col, err.Func+" must be followed by an argument list")
	}
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *CallError) Pos() int {
	return err.Col
}

// ArgumentError is an error indicating a function argument of the wrong form.
// It implements InputError.
type ArgumentError struct {
	// Col is the position of the argument.
	Col int
	// Func is the function name.
	Func string
	// Arg is the 1-based index of the argument.
	Arg int
	// Want describes what the argument must be.
	Want string
}

func (err *ArgumentError) Error() string {
	return errpos(err.Col, "argument "+strconv.Itoa(err.Arg)+" of "+err.Func+" must be "+err.Want)
}

func (err *ArgumentError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// TrailingError is an error indicating tokens left over after a complete
// expression was built. It implements InputError.
type TrailingError struct {
	// Col is the position of the first unconsumed token.
	Col int
	// Text is the text of that token.
	Text string
}

func (err *TrailingError) Error() string {
	return errpos(err.Col, "unconsumed input starting at "+strconv.Quote(err.Text))
}

func (err *TrailingError) Pos() int {
	return err.Col
}

// BindError is an error indicating an assignment to something other than a
// variable name. It implements InputError.
type BindError struct {
	// Col is the position of the assignment operator.
	Col int
	// Target is the text of the assignment's left operand.
	Target string
}

func (err *BindError) Error() string {
	return errpos(err.Col, "cannot assign to "+strconv.Quote(err.Target))
}

func (err *BindError) Pos() int {
	return err.Col
}

// ResourceError is an error indicating that an image named in an expression
// could not be loaded. It implements InputError.
type ResourceError struct {
	// Col is the position of the image name.
	Col int
	// Name is the image name.
	Name string
	// Err is the error from the image loader.
	Err error
}

func (err *ResourceError) Error() string {
	return errpos(err.Col, "loading image "+strconv.Quote(err.Name)+": "+err.Err.Error())
}

func (err *ResourceError) Pos() int {
	return err.Col
}

func (err *ResourceError) Unwrap() error {
	return err.Err
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperandError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*ArgumentError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*TrailingError)(nil)
	_ InputError = (*BindError)(nil)
	_ InputError = (*ResourceError)(nil)
	_ InputError = (*LexError)(nil)
)
