package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrArityMismatch is matched by every *ArityError.
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrInvalidCast is matched by every *CastError.
	ErrInvalidCast = errors.New("invalid cast")
	// ErrMissingOperand reports a required operand given as nil.
	ErrMissingOperand = errors.New("missing operand")
)

// ArityError reports two parallel lists of different lengths passed to a
// constructor.
type ArityError struct {
	What     string
	Left     string
	LeftLen  int
	Right    string
	RightLen int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s has %d elements but %s has %d", e.What, e.Left, e.LeftLen, e.Right, e.RightLen)
}

func (e *ArityError) Is(target error) bool {
	return target == ErrArityMismatch
}

func arity(what, left string, leftLen int, right string, rightLen int) *ArityError {
	return &ArityError{What: what, Left: left, LeftLen: leftLen, Right: right, RightLen: rightLen}
}

// CastError reports a cast kind that does not fit its source and target types.
type CastError struct {
	Kind   CastKind
	From   Type
	To     Type
	Reason string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("%s %s to %s: %s", e.Kind, typeString(e.From), typeString(e.To), e.Reason)
}

func (e *CastError) Is(target error) bool {
	return target == ErrInvalidCast
}
