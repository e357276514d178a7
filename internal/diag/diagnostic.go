package diag

import (
	"fmt"
	"strings"
)

// NoInstr marks a position that does not point at a single instruction.
const NoInstr = -1

// Position locates a finding inside a module. Function and Block are names;
// Instr is the index of the instruction inside Block, or NoInstr. Object names
// a module-level item (a structure, a global) when the finding is not inside
// a function.
type Position struct {
	Object   string
	Function string
	Block    string
	Instr    int
}

// AtModule points at the module as a whole.
func AtModule() Position {
	return Position{Instr: NoInstr}
}

// AtObject points at a module-level item such as "structure S".
func AtObject(object string) Position {
	return Position{Object: object, Instr: NoInstr}
}

// AtFunction points at a function without a specific block.
func AtFunction(fn string) Position {
	return Position{Function: fn, Instr: NoInstr}
}

// AtBlock points at a block of a function.
func AtBlock(fn, block string) Position {
	return Position{Function: fn, Block: block, Instr: NoInstr}
}

// AtInstr points at one instruction.
func AtInstr(fn, block string, instr int) Position {
	return Position{Function: fn, Block: block, Instr: instr}
}

// String renders the position the way validation messages show it, e.g.
// "function add, block entry, instr 1".
func (p Position) String() string {
	var parts []string
	if p.Object != "" {
		parts = append(parts, p.Object)
	}
	if p.Function != "" {
		parts = append(parts, "function "+p.Function)
	}
	if p.Block != "" {
		parts = append(parts, "block "+p.Block)
		if p.Instr >= 0 {
			parts = append(parts, fmt.Sprintf("instr %d", p.Instr))
		}
	}
	if len(parts) == 0 {
		return "module"
	}
	return strings.Join(parts, ", ")
}

// Short is the compact golden form: "add/entry#1".
func (p Position) Short() string {
	var sb strings.Builder
	switch {
	case p.Function != "":
		sb.WriteString(p.Function)
	case p.Object != "":
		sb.WriteString(strings.ReplaceAll(p.Object, " ", ":"))
	default:
		sb.WriteString("<module>")
	}
	if p.Block != "" {
		sb.WriteString("/")
		sb.WriteString(p.Block)
		if p.Instr >= 0 {
			fmt.Fprintf(&sb, "#%d", p.Instr)
		}
	}
	return sb.String()
}

// Less orders positions by object, function, block, then instruction.
func (p Position) Less(q Position) bool {
	if p.Object != q.Object {
		return p.Object < q.Object
	}
	if p.Function != q.Function {
		return p.Function < q.Function
	}
	if p.Block != q.Block {
		return p.Block < q.Block
	}
	return p.Instr < q.Instr
}

type Note struct {
	Pos Position
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Position
	Notes    []Note
}

func New(sev Severity, code Code, primary Position, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Position, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary Position, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func (d Diagnostic) WithNote(pos Position, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: msg})
	return d
}

// Error makes an error-severity diagnostic usable as an error value.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Primary, d.Message)
}
