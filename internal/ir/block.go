package ir

import "strings"

// BasicBlock is a straight-line instruction sequence. A well-formed block has
// at most one terminator, as its last instruction.
type BasicBlock struct {
	Name         string
	Instructions []Instr
}

func NewBasicBlock(name string, instrs ...Instr) *BasicBlock {
	return &BasicBlock{Name: name, Instructions: instrs}
}

// Append adds instructions to the end of the block.
func (b *BasicBlock) Append(instrs ...Instr) {
	b.Instructions = append(b.Instructions, instrs...)
}

// Terminator returns the last instruction if it transfers control.
func (b *BasicBlock) Terminator() Instr {
	if b == nil || len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	if IsTerminator(last) {
		return last
	}
	return nil
}

// FallsThrough reports whether control may continue into the next block.
func (b *BasicBlock) FallsThrough() bool {
	switch b.Terminator().(type) {
	case *Goto, *Return:
		return false
	}
	return true
}

func (b *BasicBlock) String() string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	sb.WriteString(":")
	for _, ins := range b.Instructions {
		sb.WriteString("\n  ")
		sb.WriteString(instrString(ins))
	}
	return sb.String()
}

func instrString(ins Instr) string {
	if ins == nil {
		return "<instr?>"
	}
	return ins.String()
}
